package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/engine"
	"github.com/dgnsrekt/tabdedup/internal/relay"
	"github.com/dgnsrekt/tabdedup/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	GetSettings(ctx context.Context) dedup.Settings
	UpdateSettings(ctx context.Context, patch dedup.Patch) engine.Ack
	GetStats(ctx context.Context) (dedup.Stats, error)
	ScanDuplicates(ctx context.Context) ([]dedup.DuplicateGroup, error)
	CloseDuplicates(ctx context.Context) (dedup.CloseResult, error)
	ListTabs(ctx context.Context) ([]dedup.TabRef, error)
	Dispatch(ctx context.Context, msg engine.Message) (any, error)
}

// NewServer builds the HTTP API. feed may be nil, in which case the event
// stream is not mounted.
func NewServer(svc Service, feed *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Tab Deduplicator API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	if feed != nil {
		router.Get("/api/v1/events", relay.SSEHandler(feed))
	}

	registerHealthHandlers(api)
	registerSettingsHandlers(api, svc)
	registerTabHandlers(api, svc)
	registerMessageHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeTabNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeCDPUnavailable, types.CodeHostFailure:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
