package pipeline

import (
	"errors"
	"fmt"
	"github.com/willbeason/ru-go-emotions/pkg/labels"
	"github.com/willbeason/ru-go-emotions/pkg/tables"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"slices"
)

const (
	DefaultRawFile          = "ru-go-emotions-raw.csv"
	DefaultMappingFile      = "id_to_label.yaml"
	DefaultOutputFile       = "ru-go-emotions-raw-train.csv"
	DefaultIntermediateFile = "labels.csv"

	// datasetSubdir is where a config file's dataset_dir keeps the files.
	datasetSubdir = "dataset"
)

// Config locates the files of one run. Relative file names resolve against
// DatasetDir.
type Config struct {
	DatasetDir string `yaml:"dataset_dir"`

	RawFile     string `yaml:"raw_file"`
	MappingFile string `yaml:"mapping_file"`
	OutputFile  string `yaml:"output_file"`
	// IntermediateFile is the labeled table older versions of this tool left
	// next to the output. It is removed after every successful run.
	IntermediateFile string `yaml:"intermediate_file"`
	// ParquetFile optionally receives a Parquet copy of the output.
	ParquetFile string `yaml:"parquet_file"`

	TextColumn    string   `yaml:"text_column"`
	OutputColumns []string `yaml:"output_columns"`
}

// DefaultConfig returns the standard file layout inside datasetDir.
func DefaultConfig(datasetDir string) Config {
	return Config{
		DatasetDir:       datasetDir,
		RawFile:          DefaultRawFile,
		MappingFile:      DefaultMappingFile,
		OutputFile:       DefaultOutputFile,
		IntermediateFile: DefaultIntermediateFile,
		TextColumn:       labels.DefaultTextColumn,
		OutputColumns:    slices.Clone(tables.TrainingColumns),
	}
}

// LoadConfig reads a YAML config file. Its dataset_dir names the directory
// holding a "dataset" folder with the files; a relative dataset_dir is taken
// relative to the config file. Unset fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg := DefaultConfig("")
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if cfg.DatasetDir == "" {
		return Config{}, fmt.Errorf("config %q: missing dataset_dir", path)
	}

	if !filepath.IsAbs(cfg.DatasetDir) {
		cfg.DatasetDir = filepath.Join(filepath.Dir(path), cfg.DatasetDir)
	}
	cfg.DatasetDir = filepath.Join(cfg.DatasetDir, datasetSubdir)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatasetDir == "" {
		return errors.New("missing dataset directory")
	}
	stat, err := os.Stat(c.DatasetDir)
	if err != nil {
		return fmt.Errorf("dataset directory: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("dataset directory %q is not a directory", c.DatasetDir)
	}

	switch {
	case c.RawFile == "":
		return errors.New("missing raw file")
	case c.MappingFile == "":
		return errors.New("missing mapping file")
	case c.OutputFile == "":
		return errors.New("missing output file")
	case len(c.OutputColumns) == 0:
		return errors.New("missing output columns")
	}

	inputs := []string{c.RawPath(), c.MappingPath()}
	for _, output := range []string{c.OutputPath(), c.ParquetPath(), c.IntermediatePath()} {
		if output != "" && slices.Contains(inputs, output) {
			return fmt.Errorf("%q is both an input and an output", output)
		}
	}
	if c.ParquetPath() == c.OutputPath() {
		return fmt.Errorf("parquet file %q is the output file", c.ParquetFile)
	}
	if c.IntermediatePath() != "" &&
		(c.IntermediatePath() == c.OutputPath() || c.IntermediatePath() == c.ParquetPath()) {
		return fmt.Errorf("intermediate file %q would remove the output", c.IntermediateFile)
	}
	return nil
}

// path resolves name against DatasetDir. Empty names stay empty.
func (c Config) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DatasetDir, name)
}

func (c Config) RawPath() string          { return c.path(c.RawFile) }
func (c Config) MappingPath() string      { return c.path(c.MappingFile) }
func (c Config) OutputPath() string       { return c.path(c.OutputFile) }
func (c Config) IntermediatePath() string { return c.path(c.IntermediateFile) }
func (c Config) ParquetPath() string      { return c.path(c.ParquetFile) }
