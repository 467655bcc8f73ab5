// Package server serves a deck live: the navigation page with its PDF
// button, the slide documents, deck metadata, on-demand PDF export and a
// WebSocket navigation channel with one navigator per connection.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"slidedeck/internal/deck"
	"slidedeck/internal/export"
	"slidedeck/internal/logging"
	"slidedeck/internal/shell"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// SlidesPrefix is the URL path slide documents are served under.
const SlidesPrefix = "/slides/"

const defaultShutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Export is the template for POST /generate-pdf. Format is forced to
	// pdf; Title may be overridden per request.
	Export export.Options
}

// Server is the live navigation shell.
type Server struct {
	cfg      Config
	router   *mux.Router
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	deck     *deck.Deck
	index    []byte
	docs     map[string][]byte // slide href -> document
	sessions map[string]*session
	closed   bool

	wg sync.WaitGroup // websocket handlers
}

// New builds a server for d.
func New(d *deck.Deck, cfg Config) (*Server, error) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		cfg:      cfg,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if err := s.SetDeck(d); err != nil {
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/"+deck.IndexFilename, s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/deck", s.handleDeck).Methods(http.MethodGet)
	r.HandleFunc("/generate-pdf", s.handleGeneratePDF).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.PathPrefix(SlidesPrefix).HandlerFunc(s.handleSlide).Methods(http.MethodGet)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Deck returns the deck currently being served.
func (s *Server) Deck() *deck.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// SetDeck swaps the served deck. Open WebSocket sessions keep navigating the
// deck they started with and are told to reload.
func (s *Server) SetDeck(d *deck.Deck) error {
	if d == nil || d.Len() == 0 {
		return &deck.EmptyDeckError{}
	}

	var buf bytes.Buffer
	err := shell.Render(&buf, d, shell.Options{
		BaseHref:    strings.TrimPrefix(SlidesPrefix, "/"),
		PDFButton:   true,
		PDFEndpoint: "/generate-pdf",
	})
	if err != nil {
		return err
	}

	docs := make(map[string][]byte, d.Len())
	for i := 0; i < d.Len(); i++ {
		slide := d.At(i)
		docs[slide.Href()] = slide.Content
	}

	s.mu.Lock()
	replaced := s.deck != nil
	s.deck = d
	s.index = buf.Bytes()
	s.docs = docs
	if replaced {
		for _, sess := range s.sessions {
			sess.notify(reply{Reload: true})
		}
	}
	s.mu.Unlock()

	if replaced {
		logging.Server("deck reloaded: %d slides", d.Len())
	}
	return nil
}

// Sessions reports the number of open WebSocket sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until the context ends, then shuts down
// gracefully and closes open WebSocket sessions.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpServer.RegisterOnShutdown(s.closeSessions)

	serveErr := make(chan error, 1)
	logging.Server("listening on http://%s", ln.Addr())
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		<-serveErr
		s.wg.Wait()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close ends every WebSocket session and waits for their handlers.
func (s *Server) Close() {
	s.closeSessions()
	s.wg.Wait()
}
