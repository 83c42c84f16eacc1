package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/deaffx/mottu-yard-devops/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans occupancy and gate notifications out to connected
// clients. It implements service.OccupancyNotifier and service.GateNotifier.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.RWMutex
	log        *zap.SugaredLogger
}

func NewWebSocketManager(log *zap.SugaredLogger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		log:        log,
	}
}

func (wsm *WebSocketManager) Start() {
	for {
		select {
		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			wsm.mutex.Unlock()
			wsm.log.Debugw("websocket client connected", "total", len(wsm.clients))

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			wsm.mutex.Unlock()

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

type wsEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (wsm *WebSocketManager) send(envelope wsEnvelope) {
	message, err := json.Marshal(envelope)
	if err != nil {
		wsm.log.Errorw("marshaling websocket message", "error", err)
		return
	}
	select {
	case wsm.broadcast <- message:
	default:
		wsm.log.Warn("websocket broadcast channel full, dropping message")
	}
}

func (wsm *WebSocketManager) BroadcastOccupancy(n domain.OccupancyNotification) {
	wsm.send(wsEnvelope{Type: "occupancy_update", Payload: n})
}

func (wsm *WebSocketManager) BroadcastGate(n domain.GateNotification) {
	wsm.send(wsEnvelope{Type: "gate_event", Payload: n})
}

type WebSocketHandler struct {
	manager *WebSocketManager
}

func NewWebSocketHandler(manager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.manager.register <- conn

	// drain reads so close frames are processed; clients never send data
	go func() {
		defer func() { h.manager.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
