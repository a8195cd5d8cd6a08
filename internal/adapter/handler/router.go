package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/srgjo27/ticket_marketplace/internal/platform/metrics"
)

type Routes struct {
	Events *EventHandler
	Carts  *CartHandler
	Resale *ResaleHandler
	Auth   *Authenticator
	// Health reports whether the backing store is reachable. Optional.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

func NewRouter(rt Routes) http.Handler {
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	protected := func(h http.HandlerFunc) http.Handler {
		return rt.Auth.Require(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /events", protected(rt.Events.CreateEvent))
	mux.HandleFunc("GET /events/{id}", rt.Events.GetEvent)
	mux.Handle("POST /events/authorize/{id}", protected(rt.Events.AuthorizeEvent))
	mux.Handle("POST /events/reject/{id}", protected(rt.Events.RejectEvent))
	mux.Handle("DELETE /events/{id}", protected(rt.Events.CancelEvent))

	mux.Handle("POST /ticket-types", protected(rt.Events.CreateTicketType))
	mux.Handle("DELETE /ticket-types/{id}", protected(rt.Events.DeleteTicketType))
	mux.HandleFunc("GET /events/{id}/ticket-types", rt.Events.ListTicketTypes)
	mux.HandleFunc("GET /ticket-types/{id}/availability", rt.Events.Availability)

	mux.Handle("GET /cart", protected(rt.Carts.GetCart))
	mux.Handle("POST /cart/items", protected(rt.Carts.AddItem))
	mux.Handle("POST /cart/resale-items", protected(rt.Carts.AddResaleItem))
	mux.Handle("DELETE /cart/items/{id}", protected(rt.Carts.RemoveItem))
	mux.Handle("POST /cart/checkout", protected(rt.Carts.Checkout))

	mux.Handle("GET /tickets", protected(rt.Resale.MyTickets))
	mux.Handle("POST /tickets/{id}/resell", protected(rt.Resale.ListTicket))
	mux.Handle("DELETE /tickets/{id}/resell", protected(rt.Resale.DelistTicket))

	mux.HandleFunc("GET /resale/marketplace", rt.Resale.Marketplace)
	mux.Handle("GET /resale/my-listings", protected(rt.Resale.MyListings))
	mux.Handle("POST /resale/purchase", protected(rt.Resale.Purchase))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if rt.Health != nil {
			if err := rt.Health(r.Context()); err != nil {
				logger.Error("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	return recoverer(logger, requestLogger(logger, mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic serving request", "method", r.Method, "path", r.URL.Path, "panic", v)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
