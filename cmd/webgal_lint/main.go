package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaoxustudio/webgal-language-tools/internal/data"
	"github.com/xiaoxustudio/webgal-language-tools/internal/diagnostics"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/internal/vfs"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

var (
	version = "v0.1.0"
	commit  = "unknown"
)

// errLintFailed makes the process exit with code 1 without printing an error
var errLintFailed = errors.New("lint failed")

// JSON Report Structures
type Report struct {
	Summary Summary      `json:"summary"`
	Files   []FileReport `json:"files"`
}

type Summary struct {
	TotalFiles      int  `json:"total_files"`
	FilesWithIssues int  `json:"files_with_issues"`
	TotalErrors     int  `json:"total_errors"`
	TotalWarnings   int  `json:"total_warnings"`
	Success         bool `json:"success"`
}

type FileReport struct {
	Path        string           `json:"path"`
	Status      string           `json:"status"` // "success", "warning", "failure"
	Diagnostics []DiagnosticItem `json:"diagnostics"`
}

type DiagnosticItem struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

type options struct {
	jsonMode         bool
	configFile       string
	warningsAsErrors bool
	disable          []string
	dataPath         string
	jobs             int
	debug            bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errLintFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "webgal_lint [flags] <file-or-pattern>...",
		Short:         "Lint WebGAL scene scripts",
		Long:          "Lints WebGAL scene scripts and reports diagnostics as Markdown or JSON.",
		Version:       fmt.Sprintf("%s (commit %s)", version, commit),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.jsonMode, "json", false, "Output results in JSON format")
	flags.StringVar(&opts.configFile, "config", "", "Path to configuration file (.webgal_lint.yaml or .webgal_lint.json)")
	flags.BoolVar(&opts.warningsAsErrors, "warnings-as-errors", false, "Treat warnings as errors (exit code 1)")
	flags.StringSliceVar(&opts.disable, "disable", nil, "Disable specific rules (repeatable)")
	flags.StringVar(&opts.dataPath, "data", "", "Path to a commands.yaml override")
	flags.IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "Number of files linted in parallel")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(newInitCommand(), newRulesCommand(opts))
	return rootCmd
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "init [yaml|json]",
		Short:     "Create a sample configuration file",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"yaml", "yml", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "yaml"
			if len(args) == 1 {
				format = args[0]
			}
			return createSampleConfig(cmd.OutOrStdout(), format)
		},
	}
}

func newRulesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the diagnostic rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadData(opts.dataPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rule := range diagnostics.DefaultRules(store) {
				state := "on"
				if rule.Enabled != nil && !*rule.Enabled {
					state = "off"
				}
				fmt.Fprintf(out, "%-22s %-3s %s\n", rule.ID, state, rule.Info)
			}
			return nil
		},
	}
}

func loadData(dataPath string) (*data.Store, error) {
	if dataPath == "" {
		return data.Default()
	}
	return data.Load(dataPath)
}

func runLint(ctx context.Context, out io.Writer, opts *options, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.debug {
		if err := logger.InitWriter(os.Stderr, true); err != nil {
			return err
		}
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found matching arguments")
	}

	lintConfig := DefaultLintConfig()
	configPath := opts.configFile
	if configPath == "" {
		if wd, err := os.Getwd(); err == nil {
			configPath = FindConfigFile(wd)
		}
	}
	if configPath != "" {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			lintConfig = loaded
		}
	}
	if opts.warningsAsErrors {
		lintConfig.WarningsAsErrors = true
	}
	lintConfig.Disable(opts.disable...)

	store, err := loadData(opts.dataPath)
	if err != nil {
		return fmt.Errorf("failed to load command tables: %w", err)
	}

	report := lintFiles(ctx, store, lintConfig, files, opts.jobs)

	if opts.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
	} else {
		writeMarkdown(out, report)
	}

	if !report.Summary.Success {
		return errLintFailed
	}
	return nil
}

// sceneExt is the extension of WebGAL scene scripts
const sceneExt = ".txt"

// collectFiles expands glob patterns and directories and removes duplicates.
// Directories are walked for scene files. Unmatched arguments are kept so
// that the read error is reported.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("error expanding pattern '%s': %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				files = append(files, match)
				continue
			}
			scenes, err := walkScenes(match)
			if err != nil {
				return nil, err
			}
			files = append(files, scenes...)
		}
	}
	return uniqueFiles(files), nil
}

// walkScenes returns the scene files under dir in lexical order
func walkScenes(dir string) ([]string, error) {
	var scenes []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), sceneExt) {
			scenes = append(scenes, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory '%s': %w", dir, err)
	}
	return scenes, nil
}

// lintFiles lints every file on a bounded pool of workers and builds the report
func lintFiles(ctx context.Context, store *data.Store, config *LintConfig, files []string, jobs int) Report {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]FileReport, len(files))
	readErrors := make([]bool, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(file)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", file, err)
				mu.Unlock()
				readErrors[i] = true
				return nil
			}
			results[i] = lintFile(store, config, file, string(content))
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Files: []FileReport{}}
	report.Summary.TotalFiles = len(files)
	hasErrors := false

	for i, fileReport := range results {
		if readErrors[i] {
			report.Summary.TotalErrors++
			hasErrors = true
			continue
		}
		for _, d := range fileReport.Diagnostics {
			if d.Severity == "ERROR" {
				report.Summary.TotalErrors++
				hasErrors = true
			} else {
				report.Summary.TotalWarnings++
				if config.WarningsAsErrors {
					hasErrors = true
				}
			}
		}
		if len(fileReport.Diagnostics) > 0 {
			report.Summary.FilesWithIssues++
			report.Files = append(report.Files, fileReport)
		}
	}

	report.Summary.Success = !hasErrors
	return report
}

// lintFile runs the rule engine over one file. Each call owns its engine
// so files can be linted concurrently.
func lintFile(store *data.Store, config *LintConfig, path, content string) FileReport {
	engine := diagnostics.NewEngine(diagnostics.DefaultRules(store))
	engine.SetMaxProblems(config.MaxProblems)
	engine.SetRuleOverrides(config.Rules)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	diags := engine.Lint(vfs.PathToURI(filepath.ToSlash(abs)), content)

	fileReport := FileReport{
		Path:        path,
		Status:      "success",
		Diagnostics: []DiagnosticItem{},
	}

	for _, d := range diags {
		// Only errors and warnings are reported
		if d.Severity != lsp.SeverityError && d.Severity != lsp.SeverityWarning {
			continue
		}

		item := DiagnosticItem{
			Line:    d.Range.Start.Line + 1,
			Column:  d.Range.Start.Character + 1,
			Code:    d.Code,
			Message: d.Message,
		}
		if d.Severity == lsp.SeverityError {
			item.Severity = "ERROR"
			fileReport.Status = "failure"
		} else {
			item.Severity = "WARNING"
			if fileReport.Status == "success" {
				fileReport.Status = "warning"
			}
		}
		fileReport.Diagnostics = append(fileReport.Diagnostics, item)
	}

	sort.SliceStable(fileReport.Diagnostics, func(i, j int) bool {
		a, b := fileReport.Diagnostics[i], fileReport.Diagnostics[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return fileReport
}

func writeMarkdown(out io.Writer, report Report) {
	if len(report.Files) > 0 {
		fmt.Fprintln(out, "# WebGAL Lint Report")
		fmt.Fprintln(out)
		for _, file := range report.Files {
			fmt.Fprintf(out, "## File: `%s`\n", file.Path)
			for _, d := range file.Diagnostics {
				severityIcon := "🔴"
				if d.Severity == "WARNING" {
					severityIcon = "⚠️"
				}

				// Format: - 🔴 **ERROR** `code` (Line X, Col Y): Message
				fmt.Fprintf(out, "- %s **%s** `%s` (Line %d, Col %d): %s\n",
					severityIcon, d.Severity, d.Code, d.Line, d.Column, d.Message)
			}
			fmt.Fprintln(out)
		}
	}

	// Summary Footer
	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "- **Files checked**: %d\n", report.Summary.TotalFiles)

	if report.Summary.Success {
		fmt.Fprintf(out, "- **Result**: ✅ SUCCESS\n")
		if report.Summary.TotalWarnings > 0 {
			fmt.Fprintf(out, "- **Total Warnings**: %d\n", report.Summary.TotalWarnings)
		}
		return
	}
	fmt.Fprintf(out, "- **Files with issues**: %d\n", report.Summary.FilesWithIssues)
	fmt.Fprintf(out, "- **Total Errors**: %d\n", report.Summary.TotalErrors)
	fmt.Fprintf(out, "- **Total Warnings**: %d\n", report.Summary.TotalWarnings)
	fmt.Fprintf(out, "- **Result**: 🔴 FAILURE\n")
}

// uniqueFiles removes duplicate file paths from a slice
func uniqueFiles(files []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(files))
	for _, file := range files {
		if !seen[file] {
			seen[file] = true
			result = append(result, file)
		}
	}
	return result
}

// createSampleConfig writes a sample configuration file to the working directory
func createSampleConfig(out io.Writer, format string) error {
	var filename string
	var content string

	switch strings.ToLower(format) {
	case "yaml", "yml":
		filename = ".webgal_lint.yaml"
		content = `# WebGAL Lint Configuration
# Generated by webgal_lint init yaml

# Treat all warnings as errors (causes exit code 1)
warnings_as_errors: false

# Maximum diagnostics per file (0 uses the default of 1000)
max_problems: 0

# Enable/disable individual rules (true/false)
rules:
  fullwidth-colon: true
  fullwidth-semicolon: true
  empty-choose-option: true
  setvar-assignment: true
  undefined-label: true
  unknown-command: false
  duplicate-argument: true
`
	case "json":
		filename = ".webgal_lint.json"
		content = `{
  "warnings_as_errors": false,
  "max_problems": 0,
  "rules": {
    "fullwidth-colon": true,
    "fullwidth-semicolon": true,
    "empty-choose-option": true,
    "setvar-assignment": true,
    "undefined-label": true,
    "unknown-command": false,
    "duplicate-argument": true
  }
}
`
	default:
		return fmt.Errorf("unknown format '%s' (use 'yaml' or 'json')", format)
	}

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file '%s' already exists", filename)
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s\n", filename)
	return nil
}
