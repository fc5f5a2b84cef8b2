// Package pipeline encodes a raw emotion dataset into its training table.
package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/vbauerster/mpb"
	"github.com/willbeason/ru-go-emotions/pkg/labels"
	"github.com/willbeason/ru-go-emotions/pkg/tables"
	"go.uber.org/zap"
	"io"
	"io/fs"
	"os"
)

var (
	ErrSourceRead        = errors.New("reading raw table")
	ErrSinkWrite         = errors.New("writing output table")
	ErrCleanup           = errors.New("removing intermediate file")
	ErrOverwriteDeclined = errors.New("overwrite declined")
)

const outputMode = 0o644

type Options struct {
	// Confirm is asked before replacing an existing output. A nil Confirm
	// declines.
	Confirm ConfirmFunc
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Progress, if set, shows a bar while the raw table is read.
	Progress *mpb.Progress
}

type Result struct {
	RunID       string
	Rows        int
	OutputPath  string
	ParquetPath string
	// CleanupWarning is set when the intermediate file existed but could not
	// be removed. It does not fail the run.
	CleanupWarning error
}

// Run reads the mapping and raw table named by cfg and writes the projected
// training table. Nothing is written unless every input was read and encoded,
// and an existing output is only replaced once opts.Confirm agrees.
func Run(ctx context.Context, cfg Config, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(string) bool { return false }
	}

	err := cfg.Validate()
	if err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}

	result := Result{
		RunID:       uuid.NewString(),
		OutputPath:  cfg.OutputPath(),
		ParquetPath: cfg.ParquetPath(),
	}
	logger = logger.With(zap.String("run_id", result.RunID))

	for _, path := range []string{result.OutputPath, result.ParquetPath} {
		if path == "" {
			continue
		}
		exists, err := fileExists(path)
		if err != nil {
			return result, fmt.Errorf("%w: stat %q: %w", ErrSinkWrite, path, err)
		}
		if exists && !confirm(path) {
			logger.Info("overwrite declined", zap.String("path", path))
			return result, fmt.Errorf("%w: %q", ErrOverwriteDeclined, path)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	mapping, err := labels.LoadMapping(cfg.MappingPath())
	if err != nil {
		return result, err
	}
	logger.Info("loaded id to label mapping",
		zap.String("path", cfg.MappingPath()),
		zap.Int("labels", mapping.Len()),
		zap.Ints("ids", mapping.IDs()))

	raw, err := readRaw(cfg.RawPath(), opts.Progress)
	if err != nil {
		return result, fmt.Errorf("%w: %q: %w", ErrSourceRead, cfg.RawPath(), err)
	}
	logger.Info("read raw table",
		zap.String("path", cfg.RawPath()),
		zap.Int("rows", raw.Len()),
		zap.Int("columns", len(raw.Header)))

	encoder := labels.NewEncoder(mapping)
	if cfg.TextColumn != "" {
		encoder.TextColumn = cfg.TextColumn
	}
	labeled := encoder.Encode(raw)

	final, err := labeled.Table.Project(cfg.OutputColumns)
	if err != nil {
		return result, fmt.Errorf("projecting %q: %w", cfg.RawPath(), err)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	err = writeFileAtomic(result.OutputPath, outputMode, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if err := tables.WriteCSV(bw, final); err != nil {
			return err
		}
		return bw.Flush()
	})
	if err != nil {
		return result, fmt.Errorf("%w: %q: %w", ErrSinkWrite, result.OutputPath, err)
	}
	result.Rows = final.Len()
	logger.Info("wrote training table",
		zap.String("path", result.OutputPath),
		zap.Int("rows", result.Rows))

	if result.ParquetPath != "" {
		var buf bytes.Buffer
		err = tables.WriteParquet(&buf, final, labeled.IDs)
		if err == nil {
			err = writeFileAtomic(result.ParquetPath, outputMode, func(w io.Writer) error {
				_, err := buf.WriteTo(w)
				return err
			})
		}
		if err != nil {
			return result, fmt.Errorf("%w: %q: %w", ErrSinkWrite, result.ParquetPath, err)
		}
		logger.Info("wrote parquet table", zap.String("path", result.ParquetPath))
	}

	result.CleanupWarning = removeIntermediate(cfg.IntermediatePath(), logger)
	return result, nil
}

// removeIntermediate deletes a leftover labeled table. A missing file is the
// normal case and only logged.
func removeIntermediate(path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}

	err := os.Remove(path)
	switch {
	case err == nil:
		logger.Info("removed intermediate file", zap.String("path", path))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("intermediate file not found, possibly already removed", zap.String("path", path))
		return nil
	default:
		err = fmt.Errorf("%w: %q: %w", ErrCleanup, path, err)
		logger.Warn("could not remove intermediate file", zap.Error(err))
		return err
	}
}
