package bootstrap

import (
	"fmt"
	"os"
	"strings"

	folio "github.com/goliatone/go-folio"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Options captures the overrides shared by the folio subcommands. Empty
// values keep what the config file and environment provide.
type Options struct {
	ConfigFile     string
	ContentDir     string
	OutputDir      string
	Addr           string
	StrictSlugs    *bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the folio module and the CLI logger.
type Module struct {
	Module *folio.Module
	Logger interfaces.Logger
}

// BuildModule loads configuration, applies opts and constructs the module.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := folio.LoadConfig(strings.TrimSpace(opts.ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var moduleOpts []folio.Option
	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		// The content directory becomes the filesystem root so absolute
		// paths work.
		moduleOpts = append(moduleOpts, folio.WithFS(os.DirFS(dir)))
		cfg.Content.Root = "."
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Artifacts.OutputDir = dir
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if opts.StrictSlugs != nil {
		cfg.Content.StrictSlugs = *opts.StrictSlugs
	}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, folio.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := folio.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise folio module: %w", err)
	}
	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "folio.cli"),
	}, nil
}
