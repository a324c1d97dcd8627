package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
	"github.com/Sharawey74/PhishSniffer/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long: `Serve runs the PhishSniffer REST API.

The API exposes the same analysis as the CLI over HTTP:
- POST /api/v1/analyze/text   analyze raw email content
- POST /api/v1/analyze/file   analyze an uploaded email file
- POST /api/v1/urls/analyze   check URLs for suspicious indicators
- GET  /api/v1/models/*       inspect and configure the classifier
- GET  /api/health            health check

Analyses performed through the API are saved to the same local history
as CLI analyses.

Examples:
  # Listen on the default address
  phishsniffer serve

  # Listen on all interfaces on port 9000
  phishsniffer serve --addr 0.0.0.0:9000

  # Serve with a specific model and threshold
  phishsniffer serve --model model_20250115 --threshold 0.7`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddr,
		"Listen address for the API server")
	cmd.Flags().Float64P("threshold", "t", config.DefaultThreshold,
		"Classification threshold in [0,1]")
	cmd.Flags().String("model-dir", "",
		"Directory containing trained model files (default: XDG data directory)")
	cmd.Flags().String("model", "",
		"Model name to load (default: most recent model in model-dir)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .phishsniffer in current or home directory)")
	cmd.Flags().Int64("max-upload", config.DefaultMaxUploadSize,
		"Maximum upload size in bytes for the file analysis endpoint")
	cmd.Flags().Bool("no-save", false,
		"Do not save API analyses to the analysis history")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	// Open database connection unless saving is disabled
	var db *database.AnalysisDB
	if !cfg.NoSave {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
	}

	predictor := classifier.NewPredictor(cfg.ModelDir, cfg.ModelName)
	if err := predictor.SetThreshold(cfg.Threshold); err != nil {
		return err
	}
	if !predictor.HasTrainedModel() {
		logger.Info("no trained model found, using rule-based fallback",
			"modelDir", cfg.ModelDir)
	}

	fmt.Printf("PhishSniffer API listening on http://%s\n", cfg.ServeAddr)
	return server.New(cfg, predictor, db, logger).ListenAndServe(ctx)
}

// buildServeConfig creates a Config from serve command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ServeAddr, err = cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}

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

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadPatternsFile(cfg); err != nil {
		return nil, err
	}

	cfg.MaxUploadSize, err = cmd.Flags().GetInt64("max-upload")
	if err != nil {
		return nil, err
	}

	cfg.NoSave, err = cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
