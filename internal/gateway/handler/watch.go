package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"redesignstudio/internal/session"
)

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = (watchPongWait * 9) / 10
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWatch streams session-state snapshots over a websocket: one on
// connect, then one after every state-changing request.
func (h *StudioHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates := h.subscribe()
	defer h.unsubscribe(updates)

	if err := conn.SetReadDeadline(time.Now().Add(watchPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})

	// Reader only services control frames; the client never sends data.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPingEvery)
	defer ticker.Stop()

	send := func(st session.State) bool {
		if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
			return false
		}
		return conn.WriteJSON(st) == nil
	}

	if !send(h.session.State()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerDone:
			return
		case st := <-updates:
			if !send(st) {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StudioHandler) subscribe() chan session.State {
	ch := make(chan session.State, 8)
	h.mu.Lock()
	h.watchers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *StudioHandler) unsubscribe(ch chan session.State) {
	h.mu.Lock()
	delete(h.watchers, ch)
	h.mu.Unlock()
}

// broadcast pushes the current state to every watcher. A watcher that has
// fallen behind loses intermediate snapshots, not the stream.
func (h *StudioHandler) broadcast() {
	st := h.session.State()
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers {
		select {
		case ch <- st:
		default:
		}
	}
}
