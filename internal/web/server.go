// Package web provides the HTTP status surface for the cooksim daemon:
// an HTML status page, JSON views of the status, series, and decision log,
// and a websocket stream of live samples.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/cooksim/internal/declog"
	"github.com/sweeney/cooksim/internal/sim"
	"github.com/sweeney/cooksim/internal/status"
)

// SeriesSource exposes the accumulated sample series.
type SeriesSource interface {
	Series() []sim.Sample
}

// LogSource exposes the decision log entries.
type LogSource interface {
	Entries() []declog.Entry
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	series     SeriesSource
	log        LogSource
	hub        *Hub
}

// New creates a Server reading state from the given sources. hub may be nil
// to disable the live stream.
func New(addr string, tracker *status.Tracker, series SeriesSource, log LogSource, hub *Hub) *Server {
	s := &Server{
		tracker: tracker,
		series:  series,
		log:     log,
		hub:     hub,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleStatusJSON)
	mux.HandleFunc("/series.json", s.handleSeriesJSON)
	mux.HandleFunc("/log.json", s.handleLogJSON)
	if hub != nil {
		mux.HandleFunc("/live", hub.handleLive)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.CloseAll()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSeriesJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatSeriesJSON(s.series.Series()))
}

func (s *Server) handleLogJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatLogJSON(s.log.Entries()))
}
