package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/wrtmon/wrtmon/internal/model"
	"github.com/wrtmon/wrtmon/internal/web"
)

// Monitor runs one synchronous poll cycle.
type Monitor interface {
	Poll(ctx context.Context) model.Snapshot
}

// Journal exposes the debug console's read side.
type Journal interface {
	Recent(ctx context.Context, limit int) ([]model.Event, error)
	Clear(ctx context.Context) error
}

// Refresher nudges the background poller.
type Refresher interface {
	TriggerRefresh()
}

type API struct {
	monitor     Monitor
	refresher   Refresher
	journal     Journal
	hub         *Hub
	logger      *slog.Logger
	gatewayHost string
	startedAt   time.Time
}

func New(monitor Monitor, refresher Refresher, journal Journal, hub *Hub, gatewayHost string, logger *slog.Logger) *API {
	return &API{
		monitor:     monitor,
		refresher:   refresher,
		journal:     journal,
		hub:         hub,
		logger:      logger,
		gatewayHost: gatewayHost,
		startedAt:   time.Now(),
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(20 * time.Second))

	r.Get("/healthz", a.health)
	r.Route("/api", func(api chi.Router) {
		api.Get("/stats", a.stats)
		api.Get("/events", a.events)
		api.Get("/debug", a.debug)
		api.Post("/debug/clear", a.clearDebug)
		api.Post("/refresh", a.refresh)
	})

	r.Get("/", web.Index)
	return r
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"status":     "ok",
		"gateway":    a.gatewayHost,
		"uptime_sec": int(time.Since(a.startedAt).Seconds()),
		"ws_clients": a.hub.ClientCount(),
	}
	if avg, err := load.Avg(); err == nil {
		payload["host_load1"] = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		payload["host_memory_percent"] = vm.UsedPercent
	}
	writeJSON(w, http.StatusOK, payload)
}

// stats runs a poll synchronously and returns its snapshot, the original
// dashboard contract. The websocket stream is the cheaper path; this one
// exists for curl and as a fallback.
func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	snapshot := a.monitor.Poll(r.Context())
	a.hub.Publish(snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

func (a *API) events(w http.ResponseWriter, r *http.Request) {
	a.hub.Serve(w, r)
}

func (a *API) debug(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = value
	}
	events, err := a.journal.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "journal_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": events})
}

func (a *API) clearDebug(w http.ResponseWriter, r *http.Request) {
	if err := a.journal.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "clear_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) refresh(w http.ResponseWriter, _ *http.Request) {
	a.refresher.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func RunServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "err", err)
			return err
		}
		return nil
	}
}
