package main

import (
	"bytes"
	"context"
	"github.com/google/go-cmp/cmp"
	"github.com/willbeason/ru-go-emotions/pkg/pipeline"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	mappingYAML = "0: admiration\n1: amusement\n2: anger\n"
	rawCSV      = "text,id,admiration,amusement,anger,ru_text\n" +
		"Great job,e1,1,0,0,Отличная работа\n" +
		"lol,e2,0,1,1,лол\n"
)

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		pipeline.DefaultMappingFile: mappingYAML,
		pipeline.DefaultRawFile:     rawCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEncodeLabels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataset(t, dir)

	out, err := execute(t, "", dir)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ru_text, text, labels, id") {
		t.Errorf("output does not list the columns:\n%s", out)
	}
	if !strings.Contains(out, "(2 rows)") {
		t.Errorf("output does not report rows:\n%s", out)
	}

	b, err := os.ReadFile(filepath.Join(dir, pipeline.DefaultOutputFile))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "ru_text,text,labels,id\n" +
		"Отличная работа,Great job,[0],e1\n" +
		"лол,lol,[1 2],e2\n"
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeLabels_PromptDecline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataset(t, dir)
	outPath := filepath.Join(dir, pipeline.DefaultOutputFile)
	if err := os.WriteFile(outPath, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "n\n", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Overwrite? (y/n)") {
		t.Errorf("no prompt shown:\n%s", out)
	}
	if !strings.Contains(out, "cancelled") {
		t.Errorf("no cancel message:\n%s", out)
	}

	b, _ := os.ReadFile(outPath)
	if string(b) != "old\n" {
		t.Errorf("output changed to %q", string(b))
	}
}

func TestEncodeLabels_PromptAccept(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataset(t, dir)
	outPath := filepath.Join(dir, pipeline.DefaultOutputFile)
	if err := os.WriteFile(outPath, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := execute(t, "y\n", dir); err != nil {
		t.Fatalf("execute: %v", err)
	}
	b, _ := os.ReadFile(outPath)
	if !strings.HasPrefix(string(b), "ru_text,text,labels,id\n") {
		t.Errorf("output not replaced: %q", string(b))
	}
}

func TestEncodeLabels_YesFlagAndOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataset(t, dir)
	if err := os.Rename(filepath.Join(dir, pipeline.DefaultRawFile), filepath.Join(dir, "raw.csv")); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "train.csv"), []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "", dir, "--yes", "--raw", "raw.csv", "--out", "train.csv", "--parquet", "train.parquet")
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if strings.Contains(out, "Overwrite?") {
		t.Errorf("prompted despite --yes:\n%s", out)
	}
	for _, name := range []string{"train.csv", "train.parquet"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("stat %s: %v", name, err)
		}
	}
}

func TestEncodeLabels_ConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dataset := filepath.Join(root, "dataset")
	if err := os.MkdirAll(dataset, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeDataset(t, dataset)

	configPath := filepath.Join(root, "config.yaml")
	if err := os.WriteFile(configPath, []byte("dataset_dir: .\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if out, err := execute(t, "", "--config", configPath); err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dataset, pipeline.DefaultOutputFile)); err != nil {
		t.Errorf("stat output: %v", err)
	}
}

func TestEncodeLabels_MappingError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDataset(t, dir)
	if err := os.WriteFile(filepath.Join(dir, pipeline.DefaultMappingFile), []byte("abc: anger\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "", dir)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(out, pipeline.DefaultMappingFile) {
		t.Errorf("error does not name the mapping file:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, pipeline.DefaultOutputFile)); !os.IsNotExist(err) {
		t.Errorf("output written despite mapping error")
	}
}

func TestEncodeLabels_TooManyArgs(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "", "a", "b"); err == nil {
		t.Fatalf("expected error for two args")
	}
}
