package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"styleprint/internal/eventbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHub upgrades connections and subscribes each one directly to the
// event bus: a client watching a single handle (?handle=alice) gets
// its own handle-scoped subscription and never sees another handle's
// traffic; a client with no handle query parameter gets every
// similarity.updated notification, same as before.
type wsHub struct {
	bus *eventbus.Bus
}

func newWSHub(bus *eventbus.Bus) *wsHub {
	return &wsHub{bus: bus}
}

func (h *wsHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	handle := r.URL.Query().Get("handle")

	ch := make(chan eventbus.Notification, 32)
	unsubscribe := h.bus.Subscribe(eventbus.SimilarityUpdated, handle, ch)
	defer unsubscribe()

	for n := range ch {
		payload, err := json.Marshal(n)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
