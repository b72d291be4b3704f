// ProcFlow - Process mining analytics for SAP event logs
// Discovers process models, analyzes variants, performance and resources.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/procflow/procflow/pkg/catalog"
	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/defaults/logging"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/interfaces"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	inputFile  string
	outputFile string
	formatFlag string
	configFile string
	jsonOutput bool
	verbose    bool

	// CSV column mapping flags
	csvCaseIDColumn    string
	csvActivityColumn  string
	csvTimestampColumn string
	csvResourceColumn  string

	// Process context flags
	processFlag string
	s4Flag      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "procflow",
	Short: "ProcFlow - Process mining analytics for SAP event logs",
	Long: `ProcFlow analyzes SAP event logs: process discovery with the Heuristic
Miner, variant and deviation analysis, performance and SLA tracking,
resource networks and KPI reports.

Supported input formats: XES, CSV, JSON.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an event log between XES, CSV and JSON",
	Long: `Convert an event log between the supported formats. The target format
is taken from the output file extension.

Examples:
  procflow convert -i events.csv -o events.xes
  procflow convert -i trace.xes -o trace.json
  procflow convert -i events.csv -o events.xes --case-id ORDER_ID --activity STEP`,
	RunE: runConvert,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about an event log",
	RunE:  runInfo,
}

var processesCmd = &cobra.Command{
	Use:   "processes",
	Short: "List supported SAP process configurations",
	RunE:  runProcesses,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (YAML)")

	convertCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	convertCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (xes, csv, json) - auto-detected if not specified")
	convertCmd.Flags().StringVar(&csvCaseIDColumn, "case-id", "", "CSV case ID column name")
	convertCmd.Flags().StringVar(&csvActivityColumn, "activity", "", "CSV activity column name")
	convertCmd.Flags().StringVar(&csvTimestampColumn, "timestamp", "", "CSV timestamp column name")
	convertCmd.Flags().StringVar(&csvResourceColumn, "resource", "", "CSV resource column name")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")

	infoCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	infoCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (xes, csv, json)")
	infoCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(processesCmd)
}

// loadConfig loads defaults, config files and environment overrides.
func loadConfig() (*config.Config, error) {
	mgr := config.NewManager()
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := mgr.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return mgr.Get(), nil
}

// buildLogger constructs the zap-backed logger from config and flags.
func buildLogger(cfg *config.Config) (interfaces.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Logging.Level); err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Logging.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logging.NewZapLogger(l), nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	log, err := loadEventLog(cfg, logger)
	if err != nil {
		return err
	}

	var data []byte
	switch detectFormat(outputFile, "") {
	case "xes":
		data = []byte(log.ToXES())
	case "csv":
		data = []byte(log.ToCSV())
	case "json":
		data, err = log.ToJSON()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unable to detect output format for %s, use .xes, .csv or .json", outputFile)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Converted %s -> %s (%d cases, %d events)\n",
		inputFile, outputFile, log.CaseCount(), log.EventCount())
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	stat, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	log, err := loadEventLog(cfg, logger)
	if err != nil {
		return err
	}

	tr := log.TimeRange()
	fmt.Printf("File:       %s\n", inputFile)
	fmt.Printf("Size:       %s\n", humanSize(stat.Size()))
	fmt.Printf("Format:     %s\n", detectFormat(inputFile, formatFlag))
	fmt.Printf("Cases:      %d\n", log.CaseCount())
	fmt.Printf("Events:     %d\n", log.EventCount())
	fmt.Printf("Activities: %d\n", len(log.ActivitySet()))
	fmt.Printf("Resources:  %d\n", len(log.ResourceSet()))
	fmt.Printf("Variants:   %d\n", len(log.Variants()))
	if !tr.Start.IsZero() {
		fmt.Printf("Range:      %s -> %s\n",
			tr.Start.Format("2006-01-02 15:04"), tr.End.Format("2006-01-02 15:04"))
	}
	return nil
}

func runProcesses(cmd *cobra.Command, args []string) error {
	fmt.Println("Supported SAP processes:")
	for _, id := range catalog.ProcessIDs() {
		cfg, err := catalog.GetConfig(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %-4s %s (%d tables, %d KPIs)\n", id, cfg.Name, len(cfg.Tables), len(cfg.KPIs))
	}
	return nil
}

// loadEventLog reads and parses the input file per format.
func loadEventLog(cfg *config.Config, logger interfaces.Logger) (*eventlog.EventLog, error) {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", inputFile)
	}

	format := detectFormat(inputFile, formatFlag)
	if format == "" && cfg.Input.Format != "" {
		format = cfg.Input.Format
	}
	if format == "" {
		return nil, fmt.Errorf("unable to detect input format, please specify with --format")
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "xes":
		return eventlog.FromXES(f, logger)
	case "csv":
		reader, err := remapCSVHeader(f, csvColumnMapping(cfg))
		if err != nil {
			return nil, err
		}
		return eventlog.FromCSV(reader, logger)
	case "json":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, err
		}
		return eventlog.FromJSON(data, logger)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// csvColumnMapping builds source-to-canonical column renames from flags and
// config. Flags win.
func csvColumnMapping(cfg *config.Config) map[string]string {
	mapping := make(map[string]string)
	add := func(source, canonical string) {
		if source != "" && !strings.EqualFold(source, canonical) {
			mapping[strings.ToLower(source)] = canonical
		}
	}
	add(cfg.Input.CaseIDColumn, "caseId")
	add(cfg.Input.ActivityColumn, "activity")
	add(cfg.Input.TimestampColumn, "timestamp")
	add(cfg.Input.ResourceColumn, "resource")
	add(csvCaseIDColumn, "caseId")
	add(csvActivityColumn, "activity")
	add(csvTimestampColumn, "timestamp")
	add(csvResourceColumn, "resource")
	return mapping
}

// detectFormat determines the format from file extension or flag.
func detectFormat(path, formatStr string) string {
	if formatStr != "" {
		return strings.ToLower(formatStr)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xes":
		return "xes"
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// humanSize formats a byte size in human-readable form.
func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
