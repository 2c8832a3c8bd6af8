package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campushq/unievents/server/auth"
	"github.com/campushq/unievents/server/ledger"
	"github.com/campushq/unievents/server/store"
	"github.com/campushq/unievents/server/store/memory"
	"github.com/campushq/unievents/server/store/postgres"
)

func New(cfg Config) (*Server, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Storage {
	case StoragePostgres:
		st, err = postgres.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
	case StorageMemory, "":
		st = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	s := &Server{
		Cfg:    cfg,
		Store:  st,
		Ledger: ledger.New(st),
		Auth:   auth.New(cfg.Auth, st),
	}
	return s, nil
}

type Server struct {
	Cfg    Config
	Store  store.Store
	Ledger *ledger.Service
	Auth   *auth.Auth

	server *http.Server
}

func (s *Server) Start(handler http.Handler) {
	s.server = &http.Server{
		Addr:    s.Cfg.Server.Addr,
		Handler: handler,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.Any("err", err))
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown failed", slog.Any("err", err))
		}
	}

	s.Auth.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("Store close failed", slog.Any("err", err))
	}
}
