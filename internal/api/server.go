// Package api exposes the read-only HTTP presentation layer over
// stored pipeline artifacts: a handle's items, shingles, signature and
// similarities, the full similarity table, a refresh trigger, and a
// live websocket notification stream, built on gorilla/mux routing,
// golang.org/x/time/rate IP limiting, and a gorilla/websocket hub fed
// by the in-process event bus.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"styleprint/internal/eventbus"
	"styleprint/internal/queue"
	"styleprint/internal/store"
)

// Server bundles the dependencies the HTTP handlers need.
type Server struct {
	Store          store.Store
	QIn            *queue.Queue
	Bus            *eventbus.Bus
	StaticLocation string

	httpServer *http.Server
	hub        *wsHub
}

// New builds a Server with its router wired: static assets, REST
// handlers under /api, and a websocket stream at /ws.
func New(st store.Store, qIn *queue.Queue, bus *eventbus.Bus, staticLocation string, port int) *Server {
	s := &Server{Store: st, QIn: qIn, Bus: bus, StaticLocation: staticLocation, hub: newWSHub(bus)}

	router := mux.NewRouter()
	router.Use(rateLimitMiddleware(defaultLimiter()))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/similarities", s.handleAllSimilarities).Methods(http.MethodGet)
	api.HandleFunc("/handles/{handle}/items", s.handleItems).Methods(http.MethodGet)
	api.HandleFunc("/handles/{handle}/shingles", s.handleShingles).Methods(http.MethodGet)
	api.HandleFunc("/handles/{handle}/signature", s.handleSignature).Methods(http.MethodGet)
	api.HandleFunc("/handles/{handle}/similarities", s.handleHandleSimilarities).Methods(http.MethodGet)
	api.HandleFunc("/handles/{handle}/refresh", s.handleRefresh).Methods(http.MethodPost)

	router.HandleFunc("/ws", s.hub.serveWS)

	if staticLocation != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticLocation)))
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start launches the HTTP listener in the background, returning
// immediately. Each websocket connection subscribes to the event bus
// directly when it upgrades; there is no separate hub loop to start.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err) // StartupFatal: an unrecoverable listener failure.
		}
	}()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
