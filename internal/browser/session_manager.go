// Package browser drives a headless Chrome through rod to print slide
// documents to PDF.
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"slidedeck/internal/config"
	"slidedeck/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// printJob is one in-flight print page.
type printJob struct {
	paper     string
	createdAt time.Time
	page      *rod.Page
}

// Config holds browser configuration.
type Config struct {
	DebuggerURL       string
	Bin               string
	Headless          bool
	NoSandbox         bool
	NavigationTimeout time.Duration
}

// FromConfig maps the browser section of the slidedeck config.
func FromConfig(c config.BrowserConfig) Config {
	return Config{
		DebuggerURL:       c.DebuggerURL,
		Bin:               c.Bin,
		Headless:          c.Headless,
		NoSandbox:         c.NoSandbox,
		NavigationTimeout: c.GetNavigationTimeout(),
	}
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// SessionManager owns the Chrome instance and tracks open print pages so
// Shutdown can close them.
type SessionManager struct {
	cfg      Config
	mu       sync.RWMutex
	browser  *rod.Browser
	launched *launcher.Launcher // set when we started Chrome
	attached *cdp.WebSocket     // set when we connected to DebuggerURL
	sessions map[string]*printJob
}

// NewSessionManager creates a session manager. Chrome is not started until
// Start or the first RenderPDF.
func NewSessionManager(cfg Config) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		sessions: make(map[string]*printJob),
	}
}

// Start connects to an existing Chrome or launches a new one.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If we already have a browser, verify it's still alive
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("stale browser connection detected, reconnecting")
		_ = m.disconnect()
		m.sessions = make(map[string]*printJob)
	}

	if m.cfg.DebuggerURL != "" {
		return m.attach(ctx, m.cfg.DebuggerURL)
	}

	l := launcher.New().Headless(m.cfg.Headless).NoSandbox(m.cfg.NoSandbox)
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}
	m.launched = l
	logging.BrowserDebug("launched chrome at %s", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		m.cleanupLauncher()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = browser
	logging.Browser("connected to launched chrome")
	return nil
}

// attach connects to a running Chrome over its DevTools WebSocket. The
// socket is kept so the connection can be closed without closing Chrome.
func (m *SessionManager) attach(ctx context.Context, controlURL string) error {
	key := uuid.New()
	header := http.Header{"Sec-WebSocket-Key": {base64.StdEncoding.EncodeToString(key[:])}}
	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, controlURL, header); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	browser := rod.New().Client(cdp.New().Start(ws))
	if err := browser.Connect(); err != nil {
		_ = ws.Close()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = browser
	m.attached = ws
	logging.Browser("attached to chrome at %s", controlURL)
	return nil
}

// disconnect drops the browser connection. A Chrome we launched is closed;
// for one we attached to only the DevTools socket is closed. Callers hold mu.
func (m *SessionManager) disconnect() error {
	var err error
	switch {
	case m.attached != nil:
		err = m.attached.Close()
		m.attached = nil
	case m.browser != nil && m.launched != nil:
		err = m.browser.Close()
	}
	m.browser = nil
	m.cleanupLauncher()
	return err
}

func (m *SessionManager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// openJobs reports how many print pages are open.
func (m *SessionManager) openJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IsConnected returns whether the browser is connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes open pages and the browser. A Chrome we launched is
// killed; one we attached to is left running.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, job := range m.sessions {
		if job.page != nil {
			_ = job.page.Close()
		}
		delete(m.sessions, id)
	}
	return m.disconnect()
}

func (m *SessionManager) cleanupLauncher() {
	if m.launched != nil {
		m.launched.Kill()
		m.launched.Cleanup()
		m.launched = nil
	}
}

// openSession creates an isolated page for one print job.
func (m *SessionManager) openSession(paper string) (string, *rod.Page, error) {
	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return "", nil, errors.New("browser not connected")
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return "", nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", nil, fmt.Errorf("create page: %w", err)
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &printJob{paper: paper, createdAt: time.Now(), page: page}
	m.mu.Unlock()
	return id, page, nil
}

func (m *SessionManager) closeSession(id string) {
	m.mu.Lock()
	job, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok && job.page != nil {
		_ = job.page.Close()
		logging.BrowserDebug("closed %s print page after %s", job.paper, time.Since(job.createdAt).Round(time.Millisecond))
	}
}

// RenderPDF loads document into a fresh page and prints it. pageSize is a
// paper name (A4, Letter); margin is a CSS length applied to all sides.
func (m *SessionManager) RenderPDF(ctx context.Context, document []byte, pageSize, margin string) ([]byte, error) {
	req, err := printRequest(pageSize, margin)
	if err != nil {
		return nil, err
	}
	if err := m.ensureStarted(ctx); err != nil {
		return nil, err
	}

	id, page, err := m.openSession(pageSize)
	if err != nil {
		return nil, err
	}
	defer m.closeSession(id)

	page = page.Context(ctx).Timeout(m.cfg.navigationTimeout())
	if err := page.SetDocumentContent(string(document)); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for document: %w", err)
	}

	stream, err := page.PDF(req)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	logging.BrowserDebug("printed %d bytes (session %s)", len(data), id)
	return data, nil
}
