package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"slidedeck/internal/deck"
	"slidedeck/internal/export"
	"slidedeck/internal/logging"
)

// handleIndex serves the navigation page.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	page := s.index
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}

// handleSlide serves a slide document from memory, or any other file under
// the slide directory (images, stylesheets) from disk.
// GET /slides/{path}
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean(r.URL.Path), strings.TrimSuffix(SlidesPrefix, "/"))
	rel = strings.TrimPrefix(rel, "/")

	s.mu.RLock()
	doc, ok := s.docs[rel]
	source := s.deck.Source()
	s.mu.RUnlock()

	if ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(doc)
		return
	}
	if source == "" || rel == "" {
		http.NotFound(w, r)
		return
	}

	f, err := http.Dir(source).Open("/" + rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	if ctype := mime.TypeByExtension(path.Ext(rel)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleDeck returns deck metadata.
// GET /api/deck
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	d := s.Deck()
	w.Header().Set("Content-Type", "application/json")
	if err := d.EncodeMetadata(w); err != nil {
		logging.ServerWarn("failed to encode metadata: %v", err)
	}
}

// GeneratePDFRequest is the optional body of POST /generate-pdf.
type GeneratePDFRequest struct {
	Title string `json:"title"`
}

// handleGeneratePDF exports the whole deck and streams the PDF back.
// POST /generate-pdf
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req GeneratePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	opts := s.cfg.Export
	opts.Format = export.FormatPDF
	if req.Title != "" {
		opts.Title = req.Title
	}
	if opts.Renderer == nil {
		http.Error(w, "PDF export is not configured on this server", http.StatusNotImplemented)
		return
	}

	d := s.Deck()
	if opts.Title == "" {
		opts.Title = d.Title()
	}
	data, err := export.Render(r.Context(), d, opts)
	if err != nil {
		logging.ServerWarn("pdf export failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrRender) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	name := deck.ArtifactName(opts.Title, string(export.FormatPDF))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(data)
	logging.Server("served %s (%d bytes)", name, len(data))
}
