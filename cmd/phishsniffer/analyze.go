package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
	"github.com/Sharawey74/PhishSniffer/internal/heuristic"
	"github.com/Sharawey74/PhishSniffer/internal/model"
	"github.com/Sharawey74/PhishSniffer/internal/pipeline"
	"github.com/Sharawey74/PhishSniffer/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [email-file...]",
		Short: "Analyze email messages for phishing indicators",
		Long: `Analyze inspects email messages (.eml, .txt, .msg) for phishing indicators.

Each message is parsed, checked by rule-based heuristics, and scored by
the classifier:
- Sender checks (spoofed display names, mismatched Reply-To, abused TLDs)
- URL checks (IP-hosted links, shorteners, link-text mismatches)
- Content checks (urgency language, credential requests, threats)
- Special known-phishing patterns from the configuration file

Results are printed as a report and stored in the local history.

Examples:
  # Analyze a single email file
  phishsniffer analyze suspicious.eml

  # Analyze multiple files concurrently
  phishsniffer analyze inbox/*.eml

  # Analyze raw email text
  phishsniffer analyze --text "From: security@paypa1.xyz ..."

  # Output JSON report to a file
  phishsniffer analyze --json -o report.json suspicious.eml

  # Use a specific trained model and a stricter threshold
  phishsniffer analyze --model model_20250115 --threshold 0.7 suspicious.eml

  # Analyze without saving to history
  phishsniffer analyze --no-save suspicious.eml

Configuration file (.phishsniffer) example:
  trustedDomains:
    - mycompany.com
  patterns:
    - name: fake invoice campaign
      subjectKeywords: ["invoice overdue"]
      domains: ["billing-alerts.top"]`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Classification flags
	cmd.Flags().Float64P("threshold", "t", config.DefaultThreshold,
		"Classification threshold in [0,1]; probabilities at or above are flagged")
	cmd.Flags().String("model-dir", "",
		"Directory containing trained model files (default: XDG data directory)")
	cmd.Flags().String("model", "",
		"Model name to load (default: most recent model in model-dir)")

	// Input flags
	cmd.Flags().String("text", "",
		"Analyze raw email text instead of files")

	// Batch analysis flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .phishsniffer in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Storage flags
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the analysis history")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runAnalysis(ctx, cfg, logger)
}

// buildAnalyzeConfig creates a Config from cobra command flags.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Threshold, err = cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return nil, err
	}

	modelDir, err := cmd.Flags().GetString("model-dir")
	if err != nil {
		return nil, err
	}
	if modelDir != "" {
		cfg.ModelDir = modelDir
	}

	cfg.ModelName, err = cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	cfg.Text, err = cmd.Flags().GetString("text")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadPatternsFile(cfg); err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoSave, err = cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	cfg.Inputs = args

	return cfg, nil
}

// loadPatternsFile loads special patterns and trusted domains.
// If the user explicitly specified a config file path, a missing file is
// an error. Otherwise a missing default file is normal and yields an
// empty configuration.
func loadPatternsFile(cfg *config.Config) error {
	explicitPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.File = file
	case explicitPath:
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.File = &config.File{}
	}

	return nil
}

// runAnalysis executes the analysis.
func runAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", len(cfg.Inputs),
		"threshold", cfg.Threshold,
		"batchSize", cfg.BatchSize,
		"noSave", cfg.NoSave,
	)

	// Open database connection unless saving is disabled
	var db *database.AnalysisDB
	if !cfg.NoSave {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	predictor := classifier.NewPredictor(cfg.ModelDir, cfg.ModelName)
	if err := predictor.SetThreshold(cfg.Threshold); err != nil {
		return err
	}
	if !predictor.HasTrainedModel() {
		logger.Info("no trained model found, using rule-based fallback",
			"modelDir", cfg.ModelDir)
	}

	analyzer := heuristic.NewAnalyzer()

	// Raw text analysis
	if cfg.Text != "" {
		return analyzeText(ctx, cfg, analyzer, predictor, db, logger)
	}

	// Batch analysis for multiple files
	if len(cfg.Inputs) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalysis(ctx, cfg, analyzer, predictor, db, logger)
	}

	return runSequentialAnalysis(ctx, cfg, analyzer, predictor, db, logger)
}

// analyzeText analyzes raw email text from the --text flag.
func analyzeText(ctx context.Context, cfg *config.Config, analyzer *heuristic.Analyzer, predictor *classifier.Predictor, db *database.AnalysisDB, logger *slog.Logger) error {
	p := createAnalysisPipeline(analyzer, predictor, db, cfg, logger,
		pipeline.NewParseRawStep([]byte(cfg.Text)))

	analysisReport := model.NewAnalysisReport("text input")
	if err := p.Execute(ctx, analysisReport); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return outputReport(cfg, analysisReport)
}

// runSequentialAnalysis analyzes inputs one at a time.
func runSequentialAnalysis(ctx context.Context, cfg *config.Config, analyzer *heuristic.Analyzer, predictor *classifier.Predictor, db *database.AnalysisDB, logger *slog.Logger) error {
	for _, input := range cfg.Inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createAnalysisPipeline(analyzer, predictor, db, cfg, logger,
			pipeline.NewParseStep())

		analysisReport := model.NewAnalysisReport(input)

		fmt.Printf("Analyzing %s...\n", input)
		startTime := time.Now()

		if err := p.Execute(ctx, analysisReport); err != nil {
			logger.Error("analysis failed", "input", input, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", input, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, analysisReport); err != nil {
			logger.Error("report failed", "input", input, "error", err)
		}
	}

	return nil
}

// runBatchAnalysis analyzes multiple inputs concurrently using BatchProcessor.
func runBatchAnalysis(ctx context.Context, cfg *config.Config, analyzer *heuristic.Analyzer, predictor *classifier.Predictor, db *database.AnalysisDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch analysis of %d inputs (concurrency: %d)...\n\n",
		len(cfg.Inputs), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createAnalysisPipeline(analyzer, predictor, db, cfg, logger,
				pipeline.NewParseStep())
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(analysisReport *model.AnalysisReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Analysis completed: %s\n", index+1, len(cfg.Inputs), analysisReport.Source)

		if analysisReport.Error != nil {
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n",
				analysisReport.Source, analysisReport.Error)
			return
		}

		if err := outputReport(cfg, analysisReport); err != nil {
			logger.Error("report failed", "input", analysisReport.Source, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch analysis completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createAnalysisPipeline creates a pipeline with the given parse step.
func createAnalysisPipeline(analyzer *heuristic.Analyzer, predictor *classifier.Predictor, db *database.AnalysisDB, cfg *config.Config, logger *slog.Logger, parseStep pipeline.Step) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
	)

	p.AddSteps(
		parseStep,
		pipeline.NewHeuristicStep(analyzer, cfg.File),
		pipeline.NewClassifyStep(predictor),
		pipeline.NewOverrideStep(),
	)

	if db != nil {
		p.AddStep(pipeline.NewStoreStep(db))
	} else {
		p.AddStep(pipeline.NewSummarizeStep())
	}

	return p
}

// outputReport outputs the analysis report in the requested format.
func outputReport(cfg *config.Config, analysisReport *model.AnalysisReport) error {
	// Generate simple report if needed
	if analysisReport.SimpleReport == nil {
		analysisReport.SimpleReport = model.NewSimpleReport(analysisReport)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may quote message content, so keep them owner-readable only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Best effort cleanup
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	if _, err := writer.Write(analysisReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
