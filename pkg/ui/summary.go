package ui

import (
	"fmt"
	"sort"
	"strconv"

	"tgscraper/pkg/models"
)

// PrintRecord prints one collected file as it arrives
func PrintRecord(record models.FileRecord, count int) {
	if quietMode {
		return
	}
	fmt.Printf("%s %s %s\n",
		Green(fmt.Sprintf("[%d]", count)),
		record.Filename,
		Dim(fmt.Sprintf("(%s MB)", formatMB(record.FileSizeMB))))
}

// PrintSummary prints the end-of-run report: totals, a per-extension
// breakdown and the largest files collected
func PrintSummary(summary models.ScrapeSummary) {
	if quietMode {
		return
	}
	fmt.Println()
	PrintHighlight("══════════════ SCRAPE SUMMARY ══════════════")
	PrintInfo("Messages scanned", strconv.Itoa(summary.MessagesScanned))
	PrintInfo("Files detected", strconv.Itoa(summary.FilesDetected))
	PrintInfo("Files collected", strconv.Itoa(summary.FilesCollected))
	PrintInfo("Total size", formatMB(summary.TotalSizeMB)+" MB")
	if !summary.OldestDate.IsZero() {
		PrintInfo("Date range", summary.OldestDate.Format("2006-01-02")+" to "+summary.NewestDate.Format("2006-01-02"))
	}

	if len(summary.ByExtension) > 0 {
		fmt.Println()
		PrintHighlight("Files by extension:")
		for _, ext := range sortedExtensions(summary.ByExtension) {
			fmt.Printf("  %s: %d\n", Cyan(ext), summary.ByExtension[ext])
		}
	}

	if len(summary.Largest) > 0 {
		fmt.Println()
		PrintHighlight("Largest files:")
		for i, record := range summary.Largest {
			fmt.Printf("  %2d. %s %s\n", i+1, record.Filename,
				Dim(fmt.Sprintf("(%s MB)", formatMB(record.FileSizeMB))))
		}
	}
	fmt.Println()
}

// sortedExtensions orders extensions by count descending, ties by name
func sortedExtensions(byExt map[string]int) []string {
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if byExt[exts[i]] != byExt[exts[j]] {
			return byExt[exts[i]] > byExt[exts[j]]
		}
		return exts[i] < exts[j]
	})
	return exts
}

func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'f', 2, 64)
}
