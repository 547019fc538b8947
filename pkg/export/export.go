package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/models"
)

// Header is the fixed CSV column order. The JSON export carries the same
// field set in the same record order.
var Header = []string{"filename", "message_id", "date", "sender", "caption", "file_size_mb", "message_url"}

// WriteCSV writes one row per record in collection order, header included.
// A zero-record export still produces the header line.
func WriteCSV(path string, records []models.FileRecord) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(Header); err != nil {
			return err
		}
		for _, r := range records {
			row := []string{
				r.Filename,
				strconv.FormatInt(r.MessageID, 10),
				r.FormattedDate(),
				r.Sender,
				r.Caption,
				formatSize(r.FileSizeMB),
				r.MessageURL,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// jsonRecord mirrors FileRecord with the date serialized as the fixed
// export string rather than RFC 3339.
type jsonRecord struct {
	Filename   string  `json:"filename"`
	MessageID  int64   `json:"message_id"`
	Date       string  `json:"date"`
	Sender     string  `json:"sender"`
	Caption    string  `json:"caption"`
	FileSizeMB float64 `json:"file_size_mb"`
	MessageURL string  `json:"message_url"`
}

// WriteJSON writes the records as a top-level array, order preserved.
func WriteJSON(path string, records []models.FileRecord) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{
			Filename:   r.Filename,
			MessageID:  r.MessageID,
			Date:       r.FormattedDate(),
			Sender:     r.Sender,
			Caption:    r.Caption,
			FileSizeMB: r.FileSizeMB,
			MessageURL: r.MessageURL,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrorTypePersistence, "cannot encode records", err)
	}
	data = append(data, '\n')

	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// JSONPath derives the structured-output sibling for a tabular output path.
func JSONPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	return csvPath[:len(csvPath)-len(ext)] + ".json"
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place, so a failed export never clobbers a previous
// successful one.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errs.Wrap(errs.ErrorTypePersistence,
			fmt.Sprintf("cannot create temporary file in %s", dir), err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypePersistence,
			fmt.Sprintf("cannot write %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypePersistence,
			fmt.Sprintf("cannot finish writing %s", path), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypePersistence,
			fmt.Sprintf("cannot replace %s", path), err)
	}
	return nil
}

// formatSize renders the size column without a trailing exponent and with
// at most two decimals, matching the stored rounding.
func formatSize(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}
