package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb"
	"github.com/willbeason/ru-go-emotions/pkg/pipeline"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const (
	FlagConfig     = "config"
	FlagRaw        = "raw"
	FlagMapping    = "mapping"
	FlagOut        = "out"
	FlagTextColumn = "text-column"
	FlagParquet    = "parquet"
	FlagYes        = "yes"
	FlagVerbose    = "verbose"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newCmd().ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode-labels [DATASET_DIR]",
		Short: "encodes one-hot emotion columns as bracketed lists of emotion IDs",
		Long: "Reads " + pipeline.DefaultRawFile + " and " + pipeline.DefaultMappingFile +
			" from DATASET_DIR and writes " + pipeline.DefaultOutputFile + " with the columns " +
			"ru_text, text, labels and id.",
		Args:         cobra.MaximumNArgs(1),
		Version:      "0.1.0",
		SilenceUsage: true,
		RunE:         runE,
	}

	cmd.Flags().String(FlagConfig, "", "YAML config file providing dataset_dir")
	cmd.Flags().String(FlagRaw, "", "raw table file (default "+pipeline.DefaultRawFile+")")
	cmd.Flags().String(FlagMapping, "", "id to label YAML file (default "+pipeline.DefaultMappingFile+")")
	cmd.Flags().String(FlagOut, "", "output table file (default "+pipeline.DefaultOutputFile+")")
	cmd.Flags().String(FlagTextColumn, "", "free-text column never scanned for labels (default ru_text)")
	cmd.Flags().String(FlagParquet, "", "also write the output table to this Parquet file")
	cmd.Flags().BoolP(FlagYes, "y", false, "overwrite an existing output without asking")
	cmd.Flags().BoolP(FlagVerbose, "v", false, "log each step")

	return cmd
}

func runE(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	verbose, err := cmd.Flags().GetBool(FlagVerbose)
	if err != nil {
		return err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	yes, err := cmd.Flags().GetBool(FlagYes)
	if err != nil {
		return err
	}
	confirm := pipeline.PromptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
	if yes {
		confirm = pipeline.AlwaysConfirm
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nA new training table will be created with the columns:\n %s\n",
		strings.Join(cfg.OutputColumns, ", "))

	opts := pipeline.Options{
		Confirm: confirm,
		Logger:  logger,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err == nil {
			opts.Progress = mpb.New(mpb.WithWidth(width))
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := pipeline.Run(ctx, cfg, opts)
	switch {
	case errors.Is(err, pipeline.ErrOverwriteDeclined):
		fmt.Fprintf(out, "\nOperation cancelled by user, nothing was written.\n%v\n", err)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "\nCreated %s (%d rows)\n", result.OutputPath, result.Rows)
	if result.ParquetPath != "" {
		fmt.Fprintf(out, "Created %s\n", result.ParquetPath)
	}
	if result.CleanupWarning != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWarning: %v\n", result.CleanupWarning)
	}
	return nil
}

// buildConfig starts from the config file, if any, then applies DATASET_DIR
// and the file flags.
func buildConfig(cmd *cobra.Command, args []string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig(".")

	configPath, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return pipeline.Config{}, err
	}
	if configPath != "" {
		cfg, err = pipeline.LoadConfig(configPath)
		if err != nil {
			return pipeline.Config{}, err
		}
	}

	if len(args) == 1 {
		cfg.DatasetDir = args[0]
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{FlagRaw, &cfg.RawFile},
		{FlagMapping, &cfg.MappingFile},
		{FlagOut, &cfg.OutputFile},
		{FlagTextColumn, &cfg.TextColumn},
		{FlagParquet, &cfg.ParquetFile},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		value, err := cmd.Flags().GetString(o.flag)
		if err != nil {
			return pipeline.Config{}, err
		}
		*o.target = value
	}

	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
