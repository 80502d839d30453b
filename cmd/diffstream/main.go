// Package main is the entry point for the diffstream demo: it streams
// new content into a file through a diff session, rendering progress in
// the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/diffstream/internal/config"
	"github.com/dshills/diffstream/internal/diagnostics"
	"github.com/dshills/diffstream/internal/diffview"
	"github.com/dshills/diffstream/internal/document"
	"github.com/dshills/diffstream/internal/event"
	"github.com/dshills/diffstream/internal/logging"
	"github.com/dshills/diffstream/internal/term"
	"github.com/dshills/diffstream/internal/vfs"
	"github.com/dshills/diffstream/internal/view"
	"github.com/dshills/diffstream/internal/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	chunkSize  int
	interval   time.Duration
	revert     bool
	headless   bool
	logLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, args := parseFlags()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: diffstream [options] TARGET [SOURCE]")
		flag.PrintDefaults()
		return 2
	}

	target := args[0]
	content, err := readSource(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading source: %v\n", err)
		return 1
	}

	settings, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	// The demo has no approval prompt; edits apply directly.
	settings.AutoApprovalEnabled = true

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(opts.logLevel),
		Output: os.Stderr,
		Prefix: "diffstream",
	})

	workdir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	bus := event.NewBus()
	store := document.NewStore(vfs.NewOSFS())
	workspace := view.NewWorkspace(bus)
	diags := diagnostics.NewMemoryProvider()

	ctrl := diffview.NewController(settings, store, workspace, bus, diags, workdir,
		diffview.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	// Surface external writes to the target while the session streams.
	fw, err := watcher.New(bus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating watcher: %v\n", err)
		return 1
	}
	defer fw.Close()
	bus.Subscribe(event.TopicFileChanged, func(e event.Event) {
		if fe, ok := e.Payload.(watcher.FileEvent); ok && !fe.Removed {
			log.Warn("file changed on disk during session: %s", fe.Path)
		}
	})

	var presenter *term.Presenter
	if !opts.headless {
		presenter, err = term.NewPresenter(bus)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: creating terminal: %v\n", err)
			return 1
		}
		if err := presenter.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: initializing terminal: %v\n", err)
			return 1
		}
		defer presenter.Fini()
		log.SetOutput(io.Discard)
	}

	if err := stream(ctx, ctrl, workspace, presenter, fw, target, content, opts); err != nil {
		if presenter != nil {
			presenter.Fini()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.revert {
		if err := ctrl.RevertChanges(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: revert: %v\n", err)
			return 1
		}
		fmt.Println("reverted")
		return 0
	}

	res, err := ctrl.SaveChanges(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: save: %v\n", err)
		return 1
	}
	if res.NewProblemsMessage != "" {
		fmt.Printf("new problems:\n%s\n", res.NewProblemsMessage)
	}
	if res.UserEdits != "" {
		fmt.Printf("user edits:\n%s\n", res.UserEdits)
	}
	fmt.Printf("saved %s (%d bytes)\n", target, len(res.FinalContent))
	return 0
}

// stream opens a session for target and feeds content through it in
// chunks, rendering after each update.
func stream(
	ctx context.Context,
	ctrl *diffview.Controller,
	workspace *view.Workspace,
	presenter *term.Presenter,
	fw *watcher.Watcher,
	target, content string,
	opts options,
) error {
	if err := ctrl.Open(ctx, target, view.ColumnActive); err != nil {
		return err
	}

	if abs, err := filepath.Abs(target); err == nil {
		if err := fw.Watch(abs); err != nil {
			return fmt.Errorf("watching %s: %w", abs, err)
		}
	}

	render := func() {
		if presenter == nil {
			return
		}
		if v, ok := workspace.Active(); ok {
			presenter.Render(v, ctrl.Tracker().Snapshot())
		}
	}
	render()

	for sent := 0; sent < len(content); {
		if err := ctx.Err(); err != nil {
			return err
		}

		sent += opts.chunkSize
		if sent > len(content) {
			sent = len(content)
		}
		final := sent == len(content)

		if err := ctrl.Update(ctx, content[:sent], final); err != nil {
			return err
		}
		render()

		if !final {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.interval):
			}
		}
	}

	if len(content) == 0 {
		if err := ctrl.Update(ctx, "", true); err != nil {
			return err
		}
		render()
	}

	return nil
}

func readSource(args []string) (string, error) {
	if len(args) > 1 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseFlags() (options, []string) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.IntVar(&opts.chunkSize, "chunk", 16, "Bytes delivered per stream update")
	flag.DurationVar(&opts.interval, "interval", 50*time.Millisecond, "Delay between stream updates")
	flag.BoolVar(&opts.revert, "revert", false, "Revert the session instead of saving")
	flag.BoolVar(&opts.headless, "headless", false, "Run without the terminal UI")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Parse()

	if showVersion {
		fmt.Printf("diffstream %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if opts.chunkSize < 1 {
		opts.chunkSize = 1
	}

	return opts, flag.Args()
}
