package hub

import (
	"chatarchive-backend/internal/snowflake"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types pushed to connected viewers while an export runs.
const (
	ExportStarted   = "ExportStarted"
	ExportProgress  = "ExportProgress"
	ExportCompleted = "ExportCompleted"
	ExportFailed    = "ExportFailed"
)

type Client struct {
	UserID    uint64
	SessionID uint64
	Conn      *websocket.Conn
	mutex     sync.Mutex
}

type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

var clients = make(map[uint64]*Client)
var clientsMutex sync.Mutex

var sugar *zap.SugaredLogger

func Setup(_sugar *zap.SugaredLogger) {
	sugar = _sugar
}

func HandleClient(userID uint64, w http.ResponseWriter, r *http.Request) {
	sugar.Debugf("Connecting user ID [%d] to WebSocket", userID)

	sessionID, err := snowflake.Generate()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	var upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	client := &Client{
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
	}

	setClient(sessionID, client)

	// nothing meaningful comes from the client, reading only detects the close
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			sugar.Debug(err)
			break
		}
	}

	deleteClient(sessionID)
}

func setClient(sessionID uint64, client *Client) {
	sugar.Debugf("Adding user ID [%d] to clients as session ID [%d]", client.UserID, sessionID)
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	clients[sessionID] = client
}

func deleteClient(sessionID uint64) {
	sugar.Debugf("Removing session ID [%d] from clients", sessionID)
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	delete(clients, sessionID)
}

// Broadcast pushes an event to every connected viewer.
func Broadcast(eventType string, data any) {
	payload, err := json.Marshal(event{Type: eventType, Data: data})
	if err != nil {
		sugar.Error(err)
		return
	}

	clientsMutex.Lock()
	targets := make([]*Client, 0, len(clients))
	for _, client := range clients {
		targets = append(targets, client)
	}
	clientsMutex.Unlock()

	for _, client := range targets {
		client.mutex.Lock()
		err := client.Conn.WriteMessage(websocket.TextMessage, payload)
		client.mutex.Unlock()
		if err != nil {
			sugar.Debug(err)
		}
	}
}
