package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tgscraper/pkg/config"
	"tgscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Telegram Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'tgscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like credentials will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "tgscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Telegram Scraper Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with TGSCRAPER_
# For example: TGSCRAPER_API_ID, TGSCRAPER_API_HASH

# Telegram API credentials
telegram:
  # API ID from https://my.telegram.org (required)
  api_id: 0

  # API hash from https://my.telegram.org (required)
  api_hash: ""

  # Phone number in international format, used for the first login code
  phone: ""

  # Path to the MTProto session file
  # Default: ~/.config/tgscraper/tgscraper.session
  session_file: ""

# Scrape configuration
scrape:
  # Maximum number of messages to scan per run
  message_limit: 10000

  # Messages requested per history page
  # Range: 1-100
  page_size: 100

  # File extensions to collect, with leading dots
  # Empty list collects all file attachments
  file_types: []
  # file_types: [".pdf", ".zip", ".docx"]

# Rate limiting configuration
rate_limit:
  # Requests per minute
  requests_per_minute: 60

  # Consecutive flood waits tolerated before giving up
  max_flood_waits: 3

  # Longest single flood pause honored
  flood_wait_ceiling: 5m

  # Pause used when the server does not say how long to wait
  default_flood_wait: 30s

# Retry configuration for transient network errors
retry:
  # Maximum number of retry attempts
  max_attempts: 3

  # Initial backoff duration
  base_delay: 1s

  # Maximum backoff duration
  max_delay: 60s

  # Backoff multiplier
  multiplier: 2.0

  # Jitter factor applied to each delay
  jitter_factor: 0.1

# Output configuration
output:
  # CSV report path
  path: "scraped_files.csv"

  # Also write a JSON report next to the CSV
  json: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your Telegram API credentials")
	fmt.Println("2. Run 'tgscraper config validate' to check the configuration")
	fmt.Println("3. Start scanning with 'tgscraper scrape <group>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	if displayCfg.Telegram.APIHash != "" {
		if len(displayCfg.Telegram.APIHash) > 8 {
			displayCfg.Telegram.APIHash = displayCfg.Telegram.APIHash[:4] + "..." + displayCfg.Telegram.APIHash[len(displayCfg.Telegram.APIHash)-4:]
		} else {
			displayCfg.Telegram.APIHash = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TGSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"tgscraper.yaml",
			"tgscraper.yml",
			".tgscraper.yaml",
			".tgscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".tgscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "tgscraper", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	// Check credentials
	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		warnings = append(warnings, "Telegram API credentials not configured; stored accounts or env vars will be used")
	}

	// Check output path
	if dir := filepath.Dir(cfg.Output.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Check value ranges beyond what Load already enforces
	if cfg.RateLimit.RequestsPerMinute > 120 {
		warnings = append(warnings, "requests_per_minute above 120 is likely to trigger flood waits")
	}
	if cfg.Retry.MaxAttempts > 10 {
		errors = append(errors, "max_attempts must be between 1 and 10")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output path: %s\n", cfg.Output.Path)
	fmt.Printf("  Message limit: %d\n", cfg.Scrape.MessageLimit)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
