package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/abumaher/syncwatch/app/services/syncwatch/handlers"
	"github.com/abumaher/syncwatch/foundation/logger"
	"github.com/abumaher/syncwatch/foundation/monitor/notify"
	"github.com/abumaher/syncwatch/foundation/monitor/rpc"
	"github.com/abumaher/syncwatch/foundation/monitor/state"
	"github.com/abumaher/syncwatch/foundation/monitor/worker"
	"github.com/abumaher/syncwatch/foundation/registry"
	"github.com/abumaher/syncwatch/foundation/registry/storage"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	// Construct app logger.
	log, err := logger.New("SYNCWATCH")
	if err != nil {
		fmt.Fprint(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Configuration
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Monitor struct {
			RegistryFile string        `conf:"default:zarf/nodes.json"`
			PollInterval time.Duration `conf:"default:30s"`
			RPCTimeout   time.Duration `conf:"default:5s"`
			NtfyServer   string        `conf:"default:https://ntfy.sh"`
			NtfyTimeout  time.Duration `conf:"default:5s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "node sync monitor",
		},
	}

	const prefix = "SYNCWATCH"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}

		return fmt.Errorf("parsing config: %w", err)
	}

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Node Registry Support

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
	}

	reg, err := registry.New(storage.NewDisk(cfg.Monitor.RegistryFile), ev)
	if err != nil {
		return fmt.Errorf("loading node registry: %w", err)
	}

	for name, node := range reg.CopyNodes() {
		log.Infow("startup", "status", "monitoring node", "name", name, "url", node.URL, "notified", node.Notified)
	}

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Monitor Support

	st, err := state.New(state.Config{
		Registry:  reg,
		Client:    rpc.New(cfg.Monitor.RPCTimeout),
		Notifier:  notify.New(cfg.Monitor.NtfyServer, reg.Topic(), cfg.Monitor.NtfyTimeout),
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	worker.Run(st, cfg.Monitor.PollInterval, ev)

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminal signal
	// from the OS. Signal package requires a buffered channel.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Use a buffered channel to listen for errors from the listener. A buffered
	// channel is used so the goroutine can exit if the error isn't collected.
	serverErrors := make(chan error, 1)

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Start Status API

	log.Infow("startup", "status", "initializing V1 status API support")

	apiMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "status api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// /////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// Shutdown

	// Block main waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server errors: %w", err)
	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Ask listener to shutdown and shed load.
		log.Infow("shutdown", "status", "shutdown status API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("couldn't stop status API gracefully: %w", err)
		}
	}

	return nil
}
