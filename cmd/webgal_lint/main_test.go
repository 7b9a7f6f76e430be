package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
)

const badScene = "changeBg：bg.png;\njumpLabel:nowhere;\nsay:ok;\n"

func createTestStore(t *testing.T) *data.Store {
	t.Helper()
	store, err := data.Default()
	if err != nil {
		t.Fatalf("Failed to load command tables: %v", err)
	}
	return store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, ".webgal_lint.yaml", "warnings_as_errors: true\nmax_problems: 5\nrules:\n  undefined-label: false\n")
	jsonPath := writeFile(t, dir, "lint.json", `{"rules": {"unknown-command": true}}`)

	config, err := LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !config.WarningsAsErrors || config.MaxProblems != 5 || config.Rules["undefined-label"] {
		t.Errorf("Unexpected yaml config %+v", config)
	}

	config, err = LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !config.Rules["unknown-command"] {
		t.Errorf("Expected unknown-command enabled, got %+v", config.Rules)
	}

	if found := FindConfigFile(dir); found != yamlPath {
		t.Errorf("Expected %s, got %s", yamlPath, found)
	}

	bad := writeFile(t, dir, "bad.yaml", "rules: [")
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected an error for invalid yaml")
	}
}

func TestLintFile(t *testing.T) {
	store := createTestStore(t)

	report := lintFile(store, DefaultLintConfig(), "scene.txt", badScene)
	if len(report.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %+v", report.Diagnostics)
	}
	if report.Status != "warning" {
		t.Errorf("Expected warning status, got %s", report.Status)
	}
	first := report.Diagnostics[0]
	if first.Line != 1 || first.Code != "fullwidth-colon" {
		t.Errorf("Unexpected first diagnostic %+v", first)
	}
	if report.Diagnostics[1].Line != 2 || report.Diagnostics[1].Code != "undefined-label" {
		t.Errorf("Unexpected second diagnostic %+v", report.Diagnostics[1])
	}

	config := DefaultLintConfig()
	config.Disable("undefined-label")
	report = lintFile(store, config, "scene.txt", badScene)
	if len(report.Diagnostics) != 1 {
		t.Errorf("Expected 1 diagnostic with undefined-label disabled, got %d", len(report.Diagnostics))
	}
}

func TestLintFilesSummary(t *testing.T) {
	store := createTestStore(t)
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "bad.txt", badScene),
		writeFile(t, dir, "good.txt", "label:a;\njumpLabel:a;\n"),
		filepath.Join(dir, "missing.txt"),
	}

	report := lintFiles(context.Background(), store, DefaultLintConfig(), files, 2)
	if report.Summary.TotalFiles != 3 || report.Summary.FilesWithIssues != 1 {
		t.Errorf("Unexpected summary %+v", report.Summary)
	}
	if report.Summary.TotalWarnings != 2 || report.Summary.TotalErrors != 1 {
		t.Errorf("Expected 2 warnings and 1 read error, got %+v", report.Summary)
	}
	if report.Summary.Success {
		t.Error("Expected failure because of the unreadable file")
	}

	config := DefaultLintConfig()
	report = lintFiles(context.Background(), store, config, files[:2], 1)
	if !report.Summary.Success {
		t.Error("Expected warnings alone to succeed")
	}
	config.WarningsAsErrors = true
	report = lintFiles(context.Background(), store, config, files[:2], 1)
	if report.Summary.Success {
		t.Error("Expected warnings as errors to fail")
	}
}

func TestRootCommandMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.txt", badScene)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", writeFile(t, dir, "c.yaml", "rules: {}\n"), path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Expected success for warnings only, got %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "# WebGAL Lint Report") || !strings.Contains(text, "`fullwidth-colon`") {
		t.Errorf("Unexpected report:\n%s", text)
	}

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--warnings-as-errors", "--config", filepath.Join(dir, "c.yaml"), path})
	if err := cmd.Execute(); err != errLintFailed {
		t.Errorf("Expected errLintFailed, got %v", err)
	}
}

func TestUniqueFiles(t *testing.T) {
	got := uniqueFiles([]string{"a", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
}

func TestCollectFilesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "scene", "sub"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	start := writeFile(t, dir, filepath.Join("scene", "start.txt"), "say:hi;\n")
	nested := writeFile(t, dir, filepath.Join("scene", "sub", "next.txt"), "say:bye;\n")
	writeFile(t, dir, filepath.Join("scene", "bg.png"), "png")

	files, err := collectFiles([]string{filepath.Join(dir, "scene"), start})
	if err != nil {
		t.Fatalf("collectFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %v", files)
	}
	if files[0] != start || files[1] != nested {
		t.Errorf("Expected [%s %s], got %v", start, nested, files)
	}

	report := lintFiles(context.Background(), createTestStore(t), DefaultLintConfig(), files, 2)
	if !report.Summary.Success {
		t.Errorf("Expected clean scenes to pass, got %+v", report.Summary)
	}
}
