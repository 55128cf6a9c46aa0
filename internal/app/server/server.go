package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"admin-welcome-modal/internal/api"
	"admin-welcome-modal/internal/config"
	"admin-welcome-modal/internal/engine"
	"admin-welcome-modal/internal/listener"
	"admin-welcome-modal/internal/modal"
	"admin-welcome-modal/internal/storage"
	"admin-welcome-modal/props"
)

// Server wires the options store, the engine and the HTTP routes.
type Server struct {
	Engine  *engine.ModalEngine
	Handler http.Handler
}

// New seeds store on first boot, builds the initial snapshot and mounts the
// routes.
func New(ctx context.Context, cfg config.Config, store engine.OptionsStore) (*Server, error) {
	eng := engine.NewEngine(store, modal.NewPolicy(cfg.Policy.RequirePrivilege))

	seed, ok, err := props.LoadSeed(cfg.Seed.Path)
	if err != nil {
		return nil, err
	}
	if ok {
		wrote, err := eng.Seed(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("seed options: %w", err)
		}
		if wrote {
			log.Info().Str("path", cfg.Seed.Path).Msg("options seeded")
		}
	}

	if err := eng.BuildSnapshot(ctx); err != nil {
		return nil, fmt.Errorf("initial snapshot build: %w", err)
	}

	h := api.NewModalHandler(eng, cfg.Session.SecureCookies)
	return &Server{Engine: eng, Handler: api.Router(h)}, nil
}

func Run(cfg config.Config) {
	config.SetupLogging(cfg.Server.LogLevel)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var store engine.OptionsStore
	var pg *storage.Store
	if cfg.UsePostgres() {
		var err error
		pg, err = storage.New(rootCtx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init storage")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(rootCtx); err != nil {
			log.Fatal().Err(err).Msg("ensure schema")
		}
		store = pg
	} else {
		log.Warn().Msg("no postgres host configured, keeping options in memory")
		store = storage.NewMemory()
	}

	srv, err := New(rootCtx, cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	// Listener (LISTEN/NOTIFY)
	if pg != nil {
		go listener.ListenAndRefresh(rootCtx, pg, srv.Engine, cfg.Listener.Channel, cfg.Backoff())
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	waitForSignal()
	log.Info().Msg("shutdown...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = httpSrv.Shutdown(shCtx)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
