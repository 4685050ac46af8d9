package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	folio "github.com/goliatone/go-folio"
	"github.com/goliatone/go-folio/cmd/folio/internal/bootstrap"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

const usage = `usage: folio <command> [flags]

commands:
  build   run the content pipeline and publish feed, sitemap, robots and listing artifacts
  serve   build once and serve the collection over HTTP
  token   issue a bearer token for the upload endpoint
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("folio: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:], out)
	case "serve":
		return runServe(ctx, args[1:], out)
	case "token":
		return runToken(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func commonFlags(fs *flag.FlagSet, opts *bootstrap.Options) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a YAML, TOML or JSON config file")
	fs.StringVar(&opts.ContentDir, "content-dir", "", "Content root directory (overrides content.root)")
}

func runBuild(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("folio-build", flag.ContinueOnError)
	var opts bootstrap.Options
	commonFlags(fs, &opts)
	fs.StringVar(&opts.OutputDir, "output", "", "Artifact output directory for the file driver")
	strict := fs.Bool("strict-slugs", false, "Fail the build when two documents share a slug")
	publish := fs.Bool("publish", true, "Write artifacts after a successful build")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if isFlagSet(fs, "strict-slugs") {
		opts.StrictSlugs = strict
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	result, err := module.Module.Build(ctx, folio.TriggerCLI, *publish)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	printReport(out, result)
	return nil
}

func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("folio-serve", flag.ContinueOnError)
	var opts bootstrap.Options
	commonFlags(fs, &opts)
	fs.StringVar(&opts.Addr, "addr", "", "Listen address (overrides http.addr)")
	reload := fs.Duration("reload", 0, "Rebuild the collection at this interval; 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	result, err := module.Module.Build(ctx, folio.TriggerCLI, false)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	printReport(out, result)

	server, err := module.Module.Server()
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	if *reload > 0 {
		go reloadLoop(ctx, module, *reload)
	}
	return server.Run(ctx)
}

// reloadLoop rebuilds on every tick. A failed rebuild keeps serving the
// previous collection.
func reloadLoop(ctx context.Context, module *bootstrap.Module, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := module.Module.Build(ctx, folio.TriggerReload, false); err != nil {
				module.Logger.Error("cli.reload.failed", "error", err)
			}
		}
	}
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("folio-token", flag.ContinueOnError)
	var opts bootstrap.Options
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a YAML, TOML or JSON config file")
	subject := fs.String("subject", "", "Token subject")
	name := fs.String("name", "", "Display name claim")
	email := fs.String("email", "", "Email claim")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("subject is required")
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	issuer, ok := module.Module.Container().Authenticator().(*auth.JWTAuthenticator)
	if !ok {
		return errors.New("http.jwt_secret is not configured")
	}
	token, err := issuer.Issue(interfaces.Identity{Subject: *subject, Name: *name, Email: *email}, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func printReport(out io.Writer, result folio.BuildResult) {
	report := result.Report
	fmt.Fprintf(out, "run %s: %d documents, %d published, %d warnings in %s\n",
		report.RunID, report.Documents, report.Published, report.Warnings(), report.Duration().Round(time.Millisecond))
	for _, excluded := range report.Excluded {
		fmt.Fprintf(out, "  excluded %s: %s\n", excluded.Path, excluded.Reason)
	}
	for _, failure := range report.RenderFailures {
		fmt.Fprintf(out, "  render failed %s: %s\n", failure.SourcePath, failure.Reason)
	}
	for _, dup := range report.DuplicateSlugs {
		fmt.Fprintf(out, "  duplicate slug %q: %v\n", dup.Slug, dup.SourcePaths)
	}
	if result.Published != nil {
		for _, artifact := range result.Published.Artifacts {
			fmt.Fprintf(out, "  wrote %s (%d bytes, sha256 %s)\n", artifact.Path, artifact.Size, artifact.Checksum)
		}
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
