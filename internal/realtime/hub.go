package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans habitat change events out to connected websocket clients.
type Hub struct {
	mu       sync.RWMutex
	habitats map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		habitats: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(habitatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.habitats[habitatID] == nil {
		h.habitats[habitatID] = make(map[*websocket.Conn]bool)
	}
	h.habitats[habitatID][conn] = true
	log.Printf("ws: client connected to habitat %s (total: %d)", habitatID, len(h.habitats[habitatID]))
}

func (h *Hub) RemoveConnection(habitatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.habitats[habitatID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.habitats, habitatID)
		}
		log.Printf("ws: client disconnected from habitat %s", habitatID)
	}
}

func (h *Hub) Broadcast(habitatID string, frame Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.habitats[habitatID]
	if !ok {
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}

// Forward adapts the hub into a bridge sink.
func (h *Hub) Forward(ev Event) {
	h.Broadcast(ev.HabitatID, Frame{Type: ev.Table + "." + ev.Kind, Data: ev})
}
