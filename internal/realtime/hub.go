package realtime

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event names pushed to connected clients.
const (
	EventNewStory         = "newStory"
	EventStoryExpired     = "storyExpired"
	EventPostImageUpdated = "postImageUpdated"
)

// Broadcaster fans one event out to every connected client session. Services
// receive it as an injected dependency so tests can substitute a recording
// implementation.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Hub struct {
	conns map[*websocket.Conn]bool
	mut   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("new websocket connection")

	h.mut.Lock()
	h.conns[conn] = true
	h.mut.Unlock()

	h.readLoop(conn)

	h.mut.Lock()
	delete(h.conns, conn)
	h.mut.Unlock()

	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close connection")
	}
}

// readLoop drains incoming frames so pings are answered; the server never
// acts on client messages.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) Broadcast(event string, payload any) {
	h.mut.Lock()
	defer h.mut.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(frame{Event: event, Data: payload}); err != nil {
			log.Warn().Err(err).Str("event", event).Msg("dropping dead websocket connection")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

var _ Broadcaster = (*Hub)(nil)
