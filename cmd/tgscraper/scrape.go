package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tgscraper/pkg/auth"
	"tgscraper/pkg/config"
	"tgscraper/pkg/export"
	"tgscraper/pkg/logger"
	"tgscraper/pkg/scraper"
	"tgscraper/pkg/telegram"
	"tgscraper/pkg/ui"
)

var (
	// Scrape command flags
	messageLimit int
	outputPath   string
	fileTypes    []string
	emitJSON     bool
	rateLimit    int
	accountName  string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <group>",
	Short: "Collect file metadata from a Telegram group",
	Long: `Scan a Telegram group's message history and collect metadata about
every file attachment into a CSV report.

The group can be identified by username, t.me link, invite link or
numeric ID. This command requires Telegram API credentials configured
either through:
  - Stored credentials (use 'tgscraper auth login' to store)
  - Environment variables (TGSCRAPER_API_ID and TGSCRAPER_API_HASH)
  - Configuration file

Only metadata is collected; no file contents are downloaded.`,
	Example: `  # Scan a public group with default settings
  tgscraper scrape mygroup

  # Scan via link, only PDFs and archives, custom output
  tgscraper scrape https://t.me/mygroup --types pdf,zip --output files.csv

  # Scan more history and also write JSON
  tgscraper scrape mygroup --limit 50000 --json

  # Use a specific stored account
  tgscraper scrape mygroup --account work`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Local flags for scrape command
	scrapeCmd.Flags().IntVarP(&messageLimit, "limit", "l", 10000, "maximum number of messages to scan")
	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default: scraped_files.csv)")
	scrapeCmd.Flags().StringSliceVarP(&fileTypes, "types", "t", nil, "file extensions to collect (e.g. pdf,zip,docx); empty collects all")
	scrapeCmd.Flags().BoolVar(&emitJSON, "json", false, "also write a JSON report next to the CSV")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")

	// Also add these flags to root command for backward compatibility
	rootCmd.Flags().IntVarP(&messageLimit, "limit", "l", 10000, "maximum number of messages to scan")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default: scraped_files.csv)")
	rootCmd.Flags().StringSliceVarP(&fileTypes, "types", "t", nil, "file extensions to collect; empty collects all")
	rootCmd.Flags().BoolVar(&emitJSON, "json", false, "also write a JSON report next to the CSV")
	rootCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute")
	rootCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
}

func runScrape(cmd *cobra.Command, args []string) {
	identifier := strings.TrimSpace(args[0])
	ui.PrintInfo("Target Group", identifier)

	// Build flags map from command line
	flags := make(map[string]interface{})
	if messageLimit != 10000 {
		flags["limit"] = messageLimit
	}
	if outputPath != "" {
		flags["output"] = outputPath
	}
	if len(fileTypes) > 0 {
		flags["types"] = normalizeTypes(fileTypes)
	}
	if emitJSON {
		flags["json"] = true
	}
	if rateLimit != 60 {
		flags["rate-limit"] = rateLimit
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Telegram Scraper starting")

	// Handle credentials
	resolveCredentials(cfg)

	log.WithField("group", identifier).Info("Starting scrape operation")
	ui.PrintHighlight("[INITIATING SCAN SEQUENCE]")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *scraper.Result

	err = telegram.Run(ctx, cfg.Telegram, log, func(ctx context.Context, client *telegram.Client) error {
		s := scraper.New(client, cfg)
		s.SetProgress(ui.PrintRecord)

		result, err = s.ScrapeGroup(ctx, identifier)
		return err
	})
	if err != nil && result == nil {
		// A cancelled session teardown is not a failure if the scrape
		// itself never started producing results.
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).WithField("group", identifier).Error("Scan failed")
			ui.PrintError("SCAN FAILED", err.Error())
			os.Exit(1)
		}
		os.Exit(0)
	}
	if result == nil {
		ui.PrintError("SCAN FAILED", "no results produced")
		os.Exit(1)
	}

	if result.Cancelled {
		ui.PrintWarning("Scan interrupted, exporting partial results")
	}

	// Export
	if err := export.WriteCSV(cfg.Output.Path, result.Records); err != nil {
		log.WithError(err).Error("CSV export failed")
		ui.PrintError("EXPORT FAILED", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("CSV report", cfg.Output.Path)

	if cfg.Output.JSON {
		jsonPath := export.JSONPath(cfg.Output.Path)
		if err := export.WriteJSON(jsonPath, result.Records); err != nil {
			log.WithError(err).Error("JSON export failed")
			ui.PrintError("EXPORT FAILED", err.Error())
			os.Exit(1)
		}
		ui.PrintInfo("JSON report", jsonPath)
	}

	ui.PrintSummary(result.Summary)

	log.WithFields(map[string]interface{}{
		"group":     identifier,
		"collected": len(result.Records),
		"cancelled": result.Cancelled,
	}).Info("Scan completed")
	ui.PrintSuccess("[SCAN COMPLETED SUCCESSFULLY]")
}

// resolveCredentials fills in API credentials from the credential manager
// when the config does not already carry them.
func resolveCredentials(cfg *config.Config) {
	log := logger.GetLogger()

	if accountName == "" && cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" {
		log.Info("Using credentials from configuration")
		return
	}

	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account
	if accountName != "" {
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'tgscraper auth list' to see stored accounts")
			os.Exit(1)
		}
	} else {
		account, err = credManager.RetrieveDefault()
		if err != nil {
			log.Error("No credentials found")
			ui.PrintError("No Telegram API credentials found", "")
			fmt.Println("\nTo store credentials securely, run:")
			fmt.Println("  tgscraper auth login")
			fmt.Println("\nAlternatively, set environment variables:")
			fmt.Println("  export TGSCRAPER_API_ID=your_api_id")
			fmt.Println("  export TGSCRAPER_API_HASH=your_api_hash")
			os.Exit(1)
		}
	}

	cfg.Telegram.APIID = account.APIID
	cfg.Telegram.APIHash = account.APIHash
	if account.Phone != "" {
		cfg.Telegram.Phone = account.Phone
	}
	log.WithField("account", account.Name).Info("Using stored credentials")
	ui.PrintInfo("Using account", account.Name)
}

// normalizeTypes trims whitespace and ensures every --types value carries
// a leading dot, matching the stored extension format.
func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		out = append(out, t)
	}
	return out
}

// Make scrape the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// Treat a bare first argument as a group identifier
			return scrapeCmd.RunE(scrapeCmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
