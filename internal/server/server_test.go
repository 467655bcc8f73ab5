package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidedeck/internal/deck"
	"slidedeck/internal/export"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func slideDoc(title string) []byte {
	return []byte("<!DOCTYPE html><html><head><title>" + title + "</title></head><body><div class=\"slide-container\"><h1>" + title + "</h1></div></body></html>")
}

func testDeck(t *testing.T, opts ...deck.Option) *deck.Deck {
	t.Helper()
	d, err := deck.New("Live Deck", []deck.Slide{
		{ID: "001", Title: "Intro", Filename: "001-intro.html", Content: slideDoc("Intro")},
		{ID: "002", Title: "Setup", Filename: "002-setup.html", Content: slideDoc("Setup")},
		{ID: "011", Title: "Notes", Section: deck.SectionAppendix, Filename: "011-notes.md", Format: deck.FormatMarkdown, Content: slideDoc("Notes")},
	}, opts...)
	require.NoError(t, err)
	return d
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderPDF(_ context.Context, document []byte, _, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("%PDF-1.7\n"), document...), nil
}

func startServer(t *testing.T, d *deck.Deck, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(d, cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_EmptyDeck(t *testing.T) {
	_, err := New(nil, Config{})
	assert.True(t, errors.Is(err, deck.ErrEmptyDeck))
}

func TestIndex(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})

	for _, path := range []string{"/", "/index.html"} {
		resp, body := get(t, ts, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, `id="pdf-btn"`)
		assert.Contains(t, body, `src="slides/001-intro.html"`)
		assert.Contains(t, body, "001. Intro")
	}
}

func TestSlides(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})

	resp, body := get(t, ts, "/slides/002-setup.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Setup</h1>")

	resp, body = get(t, ts, "/slides/_rendered/011-notes.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Notes</h1>")

	resp, _ = get(t, ts, "/slides/999-missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSlides_AssetsFromSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "diagram.svg"), []byte("<svg></svg>"), 0o644))

	_, ts := startServer(t, testDeck(t, deck.WithSource(dir)), Config{})

	resp, body := get(t, ts, "/slides/img/diagram.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<svg></svg>", body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "image/svg+xml")

	resp, _ = get(t, ts, "/slides/img")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeckAPI(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})

	resp, body := get(t, ts, "/api/deck")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var meta deck.Metadata
	require.NoError(t, json.Unmarshal([]byte(body), &meta))
	assert.Equal(t, "Live Deck", meta.Title)
	assert.Equal(t, 3, meta.TotalSlides)
	assert.Len(t, meta.Sections["Appendix"], 1)
}

func postPDF(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+"/generate-pdf", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestGeneratePDF(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{Export: export.Options{Renderer: &fakeRenderer{}}})

	resp, data := postPDF(t, ts, `{"title":"My Talk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "my_talk_slides.pdf")
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, string(data), `id="slide-011"`)

	resp, _ = postPDF(t, ts, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "live_deck_slides.pdf")

	resp, _ = postPDF(t, ts, "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGeneratePDF_Errors(t *testing.T) {
	t.Run("no renderer", func(t *testing.T) {
		_, ts := startServer(t, testDeck(t), Config{})
		resp, _ := postPDF(t, ts, "{}")
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})

	t.Run("render error", func(t *testing.T) {
		d, err := deck.New("Broken", []deck.Slide{{ID: "1", Title: "Empty"}})
		require.NoError(t, err)
		_, ts := startServer(t, d, Config{Export: export.Options{Renderer: &fakeRenderer{}}})
		resp, _ := postPDF(t, ts, "{}")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("renderer failure", func(t *testing.T) {
		_, ts := startServer(t, testDeck(t), Config{Export: export.Options{Renderer: &fakeRenderer{err: errors.New("chrome crashed")}}})
		resp, _ := postPDF(t, ts, "{}")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})
	resp, _ := get(t, ts, "/generate-pdf")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var r reply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func send(t *testing.T, conn *websocket.Conn, msg clientMessage) reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return readReply(t, conn)
}

func TestWebSocket_Navigation(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})
	conn := dial(t, ts)

	hello := readReply(t, conn)
	assert.NotEmpty(t, hello.Session)
	require.NotNil(t, hello.State)
	assert.Equal(t, 0, hello.State.Index)
	assert.Equal(t, 3, hello.State.Total)
	assert.True(t, hello.State.AtFirst)

	r := send(t, conn, clientMessage{Action: "next"})
	require.NotNil(t, r.State)
	assert.Equal(t, "002", r.State.ID)

	r = send(t, conn, clientMessage{Action: "jump", ID: "011"})
	assert.Equal(t, "Notes", r.State.Title)
	assert.Equal(t, "Appendix", r.State.Section)
	assert.True(t, r.State.AtLast)

	r = send(t, conn, clientMessage{Action: "next"})
	assert.Equal(t, 2, r.State.Index, "next saturates at the end")

	r = send(t, conn, clientMessage{Key: "Home"})
	assert.Equal(t, 0, r.State.Index)

	idx := 1
	r = send(t, conn, clientMessage{Action: "goto", Index: &idx})
	assert.Equal(t, 1, r.State.Index)
}

func TestWebSocket_JumpToMissingWarns(t *testing.T) {
	_, ts := startServer(t, testDeck(t), Config{})
	conn := dial(t, ts)
	readReply(t, conn)

	send(t, conn, clientMessage{Action: "next"})
	r := send(t, conn, clientMessage{Action: "jump", ID: "999"})
	assert.Contains(t, r.Warning, "999")
	require.NotNil(t, r.State)
	assert.Equal(t, 1, r.State.Index, "position unchanged")

	// connection stays usable
	r = send(t, conn, clientMessage{Action: "next"})
	assert.Empty(t, r.Warning)
	assert.Equal(t, 2, r.State.Index)

	r = send(t, conn, clientMessage{Action: "fly"})
	assert.NotEmpty(t, r.Error)
	r = send(t, conn, clientMessage{Key: "q"})
	assert.NotEmpty(t, r.Error)
}

func TestWebSocket_IndependentSessions(t *testing.T) {
	s, ts := startServer(t, testDeck(t), Config{})
	a := dial(t, ts)
	b := dial(t, ts)
	first := readReply(t, a)
	second := readReply(t, b)
	assert.NotEqual(t, first.Session, second.Session)

	send(t, a, clientMessage{Action: "last"})
	r := send(t, b, clientMessage{Action: "next"})
	assert.Equal(t, 1, r.State.Index)

	assert.Eventually(t, func() bool { return s.Sessions() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, a.Close())
	assert.Eventually(t, func() bool { return s.Sessions() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSetDeck_NotifiesSessions(t *testing.T) {
	s, ts := startServer(t, testDeck(t), Config{})
	conn := dial(t, ts)
	readReply(t, conn)

	d, err := deck.New("Updated", []deck.Slide{{ID: "1", Title: "Fresh", Filename: "001-fresh.html", Content: slideDoc("Fresh")}})
	require.NoError(t, err)
	require.NoError(t, s.SetDeck(d))

	r := readReply(t, conn)
	assert.True(t, r.Reload)

	_, body := get(t, ts, "/")
	assert.Contains(t, body, "001. Fresh")
	assert.Error(t, s.SetDeck(nil))
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	s, err := New(testDeck(t), Config{ShutdownTimeout: time.Second})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer conn.Close()
	readReply(t, conn)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 0, s.Sessions())
}
