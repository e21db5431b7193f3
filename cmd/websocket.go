package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"realtyBack/internal/models"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

type progressMsg struct {
	userID int
	event  models.UploadProgressEvent
}

type unreg struct {
	userID int
	conn   *websocket.Conn
}

// WebSocketManager delivers upload progress events to the submitting user's
// socket. All operations on clients happen in Run only.
type WebSocketManager struct {
	clients    map[int]*websocket.Conn
	progress   chan progressMsg
	register   chan Client
	unregister chan unreg
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[int]*websocket.Conn),
		progress:   make(chan progressMsg, 64),
		register:   make(chan Client),
		unregister: make(chan unreg),
	}
}

type Client struct {
	ID     int
	Socket *websocket.Conn
}

func (ws *WebSocketManager) Run() {
	for {
		select {
		case client := <-ws.register:
			// A new socket for the same user replaces the old one.
			if old, ok := ws.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.Close()
			}
			ws.clients[client.ID] = client.Socket
			log.Printf("WS register user=%d", client.ID)

		case u := <-ws.unregister:
			if cur, ok := ws.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(ws.clients, u.userID)
				log.Printf("WS unregister user=%d", u.userID)
			}

		case pm := <-ws.progress:
			conn, ok := ws.clients[pm.userID]
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(pm.event); err != nil {
				log.Printf("progress send error to=%d: %v", pm.userID, err)
				_ = conn.Close()
				delete(ws.clients, pm.userID)
			}
		}
	}
}

// PublishProgress is safe to call from upload goroutines; events for users
// without a socket are dropped, and a full channel drops rather than blocks
// an upload.
func (ws *WebSocketManager) PublishProgress(userID int, event models.UploadProgressEvent) {
	select {
	case ws.progress <- progressMsg{userID: userID, event: event}:
	default:
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// ProgressSocketHandler authenticates the access token, then upgrades the
// connection and registers the token's user. The token comes from the `token`
// query parameter (browser websocket clients cannot set headers) or the
// Authorization header. The socket identity is never taken from the client
// payload, so no one can subscribe to another user's progress stream.
func (app *application) ProgressSocketHandler(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("token")
	if accessToken == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			accessToken = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	userID, err := app.parseAccessToken(accessToken)
	if err != nil || userID == 0 {
		http.Error(w, "Invalid or missing access token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	app.wsManager.register <- Client{ID: userID, Socket: conn}

	go pingLoop(app.wsManager, conn, userID)
	go discardReads(app.wsManager, conn, userID)
}

func pingLoop(ws *WebSocketManager, conn *websocket.Conn, uid int) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			_ = writeClose(conn, websocket.CloseGoingAway, "ping error")
			ws.unregister <- unreg{userID: uid, conn: conn}
			return
		}
	}
}

// discardReads drains the connection so pongs and close frames are
// processed; the progress stream is one-way.
func discardReads(ws *WebSocketManager, conn *websocket.Conn, uid int) {
	defer func() {
		ws.unregister <- unreg{userID: uid, conn: conn}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
