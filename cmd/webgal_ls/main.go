package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/xiaoxustudio/webgal-language-tools/internal/handler"
	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

var version = "0.1.0"

// errNoTransport is returned when --stdio is turned off
var errNoTransport = errors.New("no transport selected: stdio is the only supported transport")

// options are the parsed command line flags
type options struct {
	debug    bool
	version  bool
	dataPath string
	stdio    bool
}

func getDefaultDataPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	if runtime.GOOS == "windows" {
		// %LOCALAPPDATA%\webgal_ls\commands.yaml
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "webgal_ls", "commands.yaml")
		}
		return filepath.Join(homeDir, "AppData", "Local", "webgal_ls", "commands.yaml")
	}

	return filepath.Join(homeDir, ".local", "share", "webgal_ls", "commands.yaml")
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("webgal_ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	fs.StringVar(&opts.dataPath, "data", "", "Path to a commands.yaml override (default: ~/.local/share/webgal_ls/commands.yaml)")
	fs.BoolVar(&opts.stdio, "stdio", true, "Communicate over stdin/stdout")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage of webgal_ls:\n")
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(stderr, "  --%s\n    \t%s\n", f.Name, f.Usage)
		})
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// run serves the language server on in/out until the client disconnects
func run(args []string, in io.Reader, out, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(out, "webgal_ls version %s\n", version)
		return nil
	}
	if !opts.stdio {
		return errNoTransport
	}

	if err := logger.Init(opts.debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Info("webgal_ls version %s starting", version)

	// A missing override file falls back to the built-in tables
	dataPath := opts.dataPath
	if dataPath == "" {
		dataPath = getDefaultDataPath()
	}
	logger.Info("Data file: %s", dataPath)

	h, err := handler.New(version, dataPath)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	server := lsp.NewServer(in, out, h)
	h.SetServer(server)

	logger.Info("LSP server starting on stdio")
	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "webgal_ls: %v\n", err)
		os.Exit(1)
	}
}
