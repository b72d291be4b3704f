package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	procflow "github.com/procflow/procflow/pkg"
	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/export"
	"github.com/procflow/procflow/pkg/interfaces"
	"github.com/procflow/procflow/pkg/tui"
)

var dotFile string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover a process model with the Heuristic Miner",
	Long: `Mine a dependency net from an event log: directly-follows relations,
dependency measures, loops and gateway semantics.

Examples:
  procflow discover -i events.xes
  procflow discover -i events.csv --json > model.json
  procflow discover -i events.csv --dot model.dot`,
	RunE: runDiscover,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run variant, performance and resource analysis",
	Long: `Run the full analysis suite over an event log. The three analyzers
run concurrently.

Examples:
  procflow analyze -i events.xes
  procflow analyze -i events.csv --json > analysis.json`,
	RunE: runAnalyze,
}

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Compute the KPI report",
	Long: `Compute time, quality, volume, resource and process KPIs. With
--process, process-specific KPI definitions from the SAP catalog are
evaluated too.

Examples:
  procflow kpi -i events.xes
  procflow kpi -i events.csv --process o2c
  procflow kpi -i events.csv --process p2p --s4`,
	RunE: runKPI,
}

func init() {
	for _, cmd := range []*cobra.Command{discoverCmd, analyzeCmd, kpiCmd} {
		cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
		cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (xes, csv, json)")
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of formatted output")
		cmd.MarkFlagRequired("input")
	}
	discoverCmd.Flags().StringVar(&dotFile, "dot", "", "Write the model as a Graphviz digraph to this file")
	kpiCmd.Flags().StringVar(&processFlag, "process", "", "SAP process context (o2c, p2p, r2r, a2r, h2r, p2m, m2s)")
	kpiCmd.Flags().BoolVar(&s4Flag, "s4", false, "Adapt the process configuration for S/4HANA")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(kpiCmd)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()
	return ctx, cancel
}

// buildEngine assembles the analysis engine from config and logger.
func buildEngine(cfg *config.Config, logger interfaces.Logger) *procflow.Engine {
	return procflow.NewEngine(
		procflow.WithConfig(cfg),
		procflow.WithLogger(logger),
	)
}

func runDiscover(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := signalContext()
	defer cancel()

	model, err := buildEngine(cfg, logger).Discover(ctx, log)
	if err != nil {
		return err
	}

	if dotFile != "" {
		dot := export.ToDOT(model, export.DefaultDOTOptions())
		if err := os.WriteFile(dotFile, []byte(dot), 0644); err != nil {
			return err
		}
		tui.PrintSuccess(fmt.Sprintf("Wrote %s", dotFile))
	}

	if jsonOutput {
		return emitJSON(model)
	}
	tui.PrintHeader(version)
	tui.PrintModel(model)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := signalContext()
	defer cancel()

	result, err := buildEngine(cfg, logger).Analyze(ctx, log)
	if err != nil {
		return err
	}

	if jsonOutput {
		return emitJSON(result)
	}
	tui.PrintHeader(version)
	tui.PrintVariants(result.Variants)
	tui.PrintPerformance(result.Performance)
	tui.PrintSocial(result.Social)
	return nil
}

func runKPI(cmd *cobra.Command, args []string) error {
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

	processID := processFlag
	if processID == "" {
		processID = cfg.Process.ID
	}
	s4 := s4Flag || cfg.Process.S4System

	ctx, cancel := signalContext()
	defer cancel()

	report, err := buildEngine(cfg, logger).KPIReport(ctx, log, processID, s4)
	if err != nil {
		return err
	}

	if jsonOutput {
		return emitJSON(report)
	}
	tui.PrintHeader(version)
	tui.PrintKPIReport(report)
	return nil
}

func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
