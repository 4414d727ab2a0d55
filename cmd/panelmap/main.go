package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"panelmap/adapters/excel"
	"panelmap/adapters/export"
	"panelmap/adapters/render"
	"panelmap/adapters/report"
	"panelmap/app"
	"panelmap/domain/run"
	"panelmap/internal"
	"panelmap/internal/config"
)

const version = "1.0.0"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "panelmap",
		Short: "Standardize, cluster and plot measurement panels from a spreadsheet workbook",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newSheetsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var cfgFile string
	var outputDir string
	var parallel int

	cmd := &cobra.Command{
		Use:   "run [workbook.xlsx]",
		Short: "Run the analysis pipeline over every sheet in a workbook",
		Long: `Standardize, quality-filter, classify and project every sheet in the
workbook, writing per-sheet CSV and SVG artifacts plus a run report.

Example: panelmap run measurements.xlsx --parallel 4 --output results`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), args[0], cfgFile, outputDir, parallel)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "Configuration file (default panelmap.yaml if present)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides configuration)")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Number of sheets processed concurrently")

	return cmd
}

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [workbook.xlsx]",
		Short: "List sheet names and dimensions without running the pipeline",
		Long: `Read the workbook and print each sheet with its raw row and column
counts, before any filtering.

Example: panelmap sheets measurements.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSheets(cmd.Context(), args[0])
		},
	}

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Printf("Default configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "panelmap.yaml", "Where to write the configuration file")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the panelmap version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("panelmap %s\n", version)
		},
	}
}

func runAnalysis(ctx context.Context, workbook, cfgFile, outputDir string, parallel int) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	source, err := excel.OpenSource(workbook, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	exporter := export.NewCSVExporter(cfg.OutputDir, logger)
	heatmaps := render.NewHeatmapSVG(cfg.OutputDir, cfg, logger)
	scatters := render.NewScatterPlot(cfg.OutputDir, cfg, logger)
	reporter := report.NewFileReporter(cfg.OutputDir, logger)

	pipeline := app.NewPipeline(cfg, exporter, heatmaps, scatters, logger)
	runner := app.NewRunner(cfg, source, pipeline, reporter, logger)

	fmt.Printf("Analyzing %s...\n", workbook)
	result, err := runner.Execute(ctx, app.RunRequest{
		Workbook:    workbook,
		Parallel:    parallel,
		CodeVersion: version,
	})
	if err != nil {
		return err
	}

	completed, skipped, failed := result.Manifest.Counts()
	fmt.Printf("\n=== RUN SUMMARY ===\n")
	fmt.Printf("Run ID: %s\n", result.Manifest.RunID)
	fmt.Printf("Sheets: %d completed, %d skipped, %d failed\n", completed, skipped, failed)
	fmt.Printf("Runtime: %d ms\n", result.RuntimeMs)

	for _, outcome := range result.Manifest.Sheets {
		marker := "✅"
		switch outcome.Status {
		case run.StatusSkipped:
			marker = "⚠️"
		case run.StatusFailed:
			marker = "❌"
		}
		fmt.Printf("%s %s (%s)\n", marker, outcome.Sheet, outcome.Status)
		if outcome.Error != "" {
			fmt.Printf("   %s\n", outcome.Error)
		}
		for _, notice := range outcome.Notices {
			fmt.Printf("   %s\n", notice.Message)
		}
	}

	fmt.Printf("\nManifest: %s\n", result.ManifestPath)
	for _, path := range result.ReportPaths {
		fmt.Printf("Report: %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sheets failed", failed, len(result.Manifest.Sheets))
	}
	return nil
}

func listSheets(ctx context.Context, workbook string) error {
	source, err := excel.OpenSource(workbook, internal.DefaultLogger)
	if err != nil {
		return err
	}
	defer source.Close()

	sheets, err := source.ReadAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d sheets\n", workbook, len(sheets))
	for i, sheet := range sheets {
		fmt.Printf("%d. %s (%d rows, %d columns)\n", i+1, sheet.Name, sheet.RowCount(), sheet.ColumnCount())
	}
	return nil
}
