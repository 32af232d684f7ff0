package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"spendlens/internal/analysis"
	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/inference/providers"
	"spendlens/internal/ingest"
	"spendlens/internal/lifecycle"
	"spendlens/internal/logger"
	"spendlens/internal/service"
)

type options struct {
	rescale    bool
	provider   string
	model      string
	noProgress bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a financial document and print spending insights as JSON",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)
				_ = cmd.Usage()
				return err
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runAnalyze(cmd, args[0], opts)
			if err != nil {
				printFailure(cmd.ErrOrStderr(), err)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.rescale, "rescale", false, "rescale category percentages that do not sum to 100 instead of rejecting")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "inference provider (gemini or claude)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name for the inference provider")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "do not render the progress bar")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline details to stderr")
	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)

	appLogger, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	client, err := providers.Build(&cfg.Inference, appLogger)
	if err != nil {
		return err
	}

	mediaType, err := service.MediaTypeForName(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.NewIngestionError(domain.IngestionUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	tracker := lifecycle.NewTracker(lifecycle.DefaultSteps, cfg.Progress.StepInterval, appLogger)
	svc := service.NewAnalysisService(
		ingest.NewAdapter(&cfg.Ingestion, appLogger),
		client,
		analysis.NewValidator(&cfg.Analysis, appLogger),
		tracker,
		nil,
		service.AnalysisConfig{
			TextThinkingBudget:   cfg.Inference.TextThinkingBudget,
			BinaryThinkingBudget: cfg.Inference.BinaryThinkingBudget,
		},
		appLogger,
	)

	doc := domain.InputDocument{Name: filepath.Base(path), MediaType: mediaType, Body: f}
	progress := cmd.ErrOrStderr()
	if opts.noProgress {
		progress = nil
	}
	return analyze(cmd.Context(), svc, doc, cmd.OutOrStdout(), progress)
}

func applyOverrides(cfg *config.Config, opts *options) {
	if opts.rescale {
		cfg.Analysis.DistributionPolicy = string(domain.DistributionRescale)
	}
	if opts.provider != "" {
		cfg.Inference.Provider = strings.ToLower(opts.provider)
	}
	if opts.model != "" {
		cfg.Inference.DefaultModel = opts.model
	}
	if !opts.verbose {
		cfg.Log.Level = "error"
	}
	cfg.Log.Format = "console"
}

func printFailure(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintln(w, domain.UserMessage(err))
	if kind := domain.ErrorKind(err); kind != "internal" {
		_, _ = color.New(color.Faint).Fprintf(w, "(%s)\n", kind)
	}
}
