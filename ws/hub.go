package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/gorilla/websocket"
)

var HubInstance = NewHub()

func init() {
	go HubInstance.Run()
}

// Event is the refresh notification pushed to connected dashboards when
// server-side state changes under them.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventMetricSaved   = "metric_saved"
	EventMetricDeleted = "metric_deleted"
	EventStaffChanged  = "staff_changed"
)

// Client represents one WebSocket connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub tracks connected clients and fans broadcast messages out to them.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Notify serializes an event and queues it for broadcast. Marshal failures
// are logged and dropped; a bad payload must not take the caller down.
func (h *Hub) Notify(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("event marshal failed")
		return
	}
	h.Broadcast <- data
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			log.Debug().Int("clients", len(h.Clients)).Msg("ws client registered")
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				log.Debug().Int("clients", len(h.Clients)).Msg("ws client unregistered")
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}
