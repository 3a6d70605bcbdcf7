package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

// Client represents a WebSocket client subscribed to one job
type Client struct {
	JobID string
	Conn  *websocket.Conn
	Send  chan []byte
}

// Hub maintains active WebSocket connections grouped by job id and
// fans job envelopes out to them.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	JobID   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.JobID] == nil {
				h.clients[client.JobID] = make(map[*Client]bool)
			}
			h.clients[client.JobID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.JobID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.JobID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.JobID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastEnvelope translates a job envelope into the matching WS
// message for the job's subscribers. Start envelopes are folded into a
// zero-progress update.
func (h *Hub) BroadcastEnvelope(env model.Envelope) {
	var msg interface{}
	switch env.Kind {
	case model.EnvelopeStart:
		msg = model.WSProgressMessage{
			Type:     model.WSMessageTypeProgress,
			JobID:    env.JobID,
			Progress: 0,
			Status:   model.JobStatusRunning,
		}
	case model.EnvelopeProgress:
		msg = model.WSProgressMessage{
			Type:     model.WSMessageTypeProgress,
			JobID:    env.JobID,
			Progress: env.Progress,
			Status:   model.JobStatusRunning,
		}
	case model.EnvelopeComplete:
		msg = model.WSCompleteMessage{
			Type:   model.WSMessageTypeComplete,
			JobID:  env.JobID,
			Result: env.Payload,
		}
	case model.EnvelopeCancelled:
		msg = model.WSCancelledMessage{
			Type:  model.WSMessageTypeCancelled,
			JobID: env.JobID,
		}
	case model.EnvelopeError:
		msg = model.WSErrorMessage{
			Type:  model.WSMessageTypeError,
			JobID: env.JobID,
			Error: model.WSError{Code: "JOB_FAILED", Message: env.Error},
		}
	default:
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", env.Kind, err)
		if !env.Terminal() {
			return
		}
		// Subscribers must always see a terminal message; degrade an
		// unserializable result to an error notification.
		fallback := model.WSErrorMessage{
			Type:  model.WSMessageTypeError,
			JobID: env.JobID,
			Error: model.WSError{Code: "JOB_FAILED", Message: "result not serializable"},
		}
		data, err = json.Marshal(fallback)
		if err != nil {
			return
		}
	}
	h.broadcast <- &BroadcastMessage{JobID: env.JobID, Message: data}
}

// HandleConnection handles a WebSocket connection subscribed to jobID
func (h *Hub) HandleConnection(c *websocket.Conn, jobID string) {
	client := &Client{
		JobID: jobID,
		Conn:  c,
		Send:  make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Writer goroutine with keep-alive pings
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
