package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/hiway/sfzmap"
	"github.com/hiway/sfzmap/pkg/config"
	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/httpapi"
	"github.com/hiway/sfzmap/pkg/preview"
	"github.com/hiway/sfzmap/pkg/sfz"
)

const usage = `usage: sfzmap [flags] <command> <file.sfz>

commands:
  inspect   log every region as it is loaded
  preview   play a tone for every mapped region
  serve     load the instrument and serve its key map over HTTP

flags:
`

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: search system, XDG and local paths)")
		logLevel   = flag.String("log-level", "", "override log_level from the config")
		onFailure  = flag.String("on-open-failure", "", "override on_open_failure: skip|abort")
		addr       = flag.String("addr", "", "override server addr for serve")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	command, path := flag.Arg(0), flag.Arg(1)

	log := newLogger(os.Stderr, zerolog.InfoLevel)
	cfg, err := loadConfig(*configPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *onFailure != "" {
		cfg.OnOpenFailure = *onFailure
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log = newLogger(os.Stderr, cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "inspect":
		err = inspect(path, cfg, log)
	case "preview":
		err = runPreview(ctx, path, cfg, log)
	case "serve":
		err = serve(ctx, path, cfg, log)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}

// newLogger writes human-readable output to terminals and JSON otherwise.
func newLogger(w *os.File, level zerolog.Level) zerolog.Logger {
	var out io.Writer = w
	if term.IsTerminal(int(w.Fd())) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func loadConfig(path string, log zerolog.Logger) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path, log)
	}
	return config.Discover(config.SearchPaths(log), log)
}

func inspect(path string, cfg *config.Config, log zerolog.Logger) error {
	stub := engine.NewStub(log)
	res, err := sfz.LoadFile(path, stub,
		sfz.WithLogger(log),
		sfz.WithFailurePolicy(cfg.FailurePolicy()),
	)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d regions, %d loaded, %d unsupported, %d failed\n",
		path, res.Regions, res.Loaded, res.Unsupported, res.Failed)
	return nil
}

func runPreview(ctx context.Context, path string, cfg *config.Config, log zerolog.Logger) error {
	inst, err := sfzmap.Open(path, cfg, log)
	if err != nil {
		return err
	}
	p, err := preview.NewOtoPlayer(log)
	if err != nil {
		return err
	}
	defer p.Close()
	return inst.Audition(ctx, p)
}

func serve(ctx context.Context, path string, cfg *config.Config, log zerolog.Logger) error {
	inst, err := sfzmap.Open(path, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(httpapi.RouterDeps{
			KeyMap: inst.KeyMap,
			Source: inst.Source,
			Log:    log,
		}),
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("Serving key map")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
