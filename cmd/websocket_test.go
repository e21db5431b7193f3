package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"realtyBack/internal/models"
)

func newWSTestApp() *application {
	app := &application{
		signingKey: "test-signing-key",
		infoLog:    log.New(io.Discard, "", 0),
		errorLog:   log.New(io.Discard, "", 0),
		wsManager:  NewWebSocketManager(),
	}
	go app.wsManager.Run()
	return app
}

func wsTestServer(app *application) (*httptest.Server, string) {
	srv := httptest.NewServer(http.HandlerFunc(app.ProgressSocketHandler))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProgressSocketRejectsMissingToken(t *testing.T) {
	app := newWSTestApp()
	srv, wsURL := wsTestServer(app)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func TestProgressSocketRejectsForgedToken(t *testing.T) {
	app := newWSTestApp()
	srv, wsURL := wsTestServer(app)
	defer srv.Close()

	other := &application{signingKey: "some-other-key"}
	forged, err := other.generateAccessToken(7)
	if err != nil {
		t.Fatalf("generating token failed: %v", err)
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+forged, nil)
	if err == nil {
		t.Fatal("expected handshake to fail with a token signed by another key")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func TestProgressSocketDeliversEventsToTokenUser(t *testing.T) {
	app := newWSTestApp()
	srv, wsURL := wsTestServer(app)
	defer srv.Close()

	token, err := app.generateAccessToken(7)
	if err != nil {
		t.Fatalf("generating token failed: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	event := models.UploadProgressEvent{
		ListingName: "Modern Loft",
		File:        "a.jpg",
		Transferred: 10,
		Total:       20,
	}

	// Registration runs through the hub loop, so publish until the event
	// arrives instead of racing it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				app.wsManager.PublishProgress(7, event)
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.UploadProgressEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading progress event failed: %v", err)
	}
	if got.File != "a.jpg" || got.Transferred != 10 || got.Total != 20 {
		t.Fatalf("unexpected event: %+v", got)
	}
}
