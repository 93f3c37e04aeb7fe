// internal/httpserver/ws.go
//
// Websocket variant of the host state feed.
//   GET /host/ws?sessionId=<id>
//
// Flow:
//   1. The session must already exist (POST /host/sessions); otherwise 404.
//   2. Each {"type":"state"} frame is handled like POST /host/sessions/{id}/state
//      and answered with an "ack" carrying rowComplete, or an "error" code.
//   3. A writer loop owns the socket's writes and pings every 25s.
//
// Notes:
//   - Closing the socket does not end the session.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordleboard/internal/host"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // host page origin varies
}

// Envelope is the websocket message frame, in both directions.
//   in:  {"type":"state","payload":{...host.State}}
//   out: {"type":"ack","payload":{"rowComplete":true}} | {"type":"error","payload":{"code":"..."}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

func (c *wsConn) reply(typ string, payload any) {
	b, _ := json.Marshal(payload)
	msg, _ := json.Marshal(Envelope{Type: typ, Payload: b})
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("type", typ).Msg("host ws: send buffer full, dropping reply")
	}
}

// handleWS streams state reports for an existing session.
// Closing the socket does not end the session.
func (h *hostServer) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	sess, err := h.srv.deps.Hosts.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &wsConn{ws: ws, send: make(chan []byte, 16)}

	// writer loop
	go func() {
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-c.send:
				if !ok {
					return
				}
				_ = ws.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	// reader loop
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.reply("error", map[string]string{"code": "bad_json"})
			continue
		}
		switch env.Type {
		case "state":
			var st host.State
			if err := json.Unmarshal(env.Payload, &st); err != nil {
				c.reply("error", map[string]string{"code": "bad_input"})
				continue
			}
			c.reply("ack", h.report(sess, st))
		default:
			c.reply("error", map[string]string{"code": "unknown_type"})
		}
	}
	c.close()
}
