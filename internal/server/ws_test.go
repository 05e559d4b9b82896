package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sashboard/internal/logging"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEventsWebsocket(t *testing.T) {
	events := NewEventHub()
	defer events.Close()

	srv := httptest.NewServer(&EventsHandler{Events: events})
	defer srv.Close()

	conn := dialWS(t, srv, "/")

	// The handler subscribes after the upgrade; rebroadcast until the
	// subscription is live.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			events.Broadcast(Event{Type: EventRefresh})
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != EventRefresh {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestEventsWebsocketUnavailable(t *testing.T) {
	srv := httptest.NewServer(&EventsHandler{})
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestLogStreamWebsocket(t *testing.T) {
	logger := logging.NewLoggerWithOutput(logging.LevelDebug, io.Discard)
	srv := httptest.NewServer(&LogStreamHandler{Logger: logger})
	defer srv.Close()

	conn := dialWS(t, srv, "/")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			logger.Info("session started", map[string]string{"session": "sashboard"})
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var entry logging.Entry
	if err := conn.ReadJSON(&entry); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entry.Message != "session started" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}
