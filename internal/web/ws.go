package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 4096
	wsIdleTimeout  = 10 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS answers one selection message at a time: the next message is not
// read until the reply to the previous one has been written.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	if s.Metrics != nil {
		s.Metrics.WSSessions.Inc()
		defer s.Metrics.WSSessions.Dec()
	}
	log.Printf("[INFO] ws session opened from %s", r.RemoteAddr)
	conn.SetReadLimit(wsReadLimit)

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Printf("[WARN] ws read: %v", err)
			}
			log.Printf("[INFO] ws session closed from %s", r.RemoteAddr)
			return
		}

		var resp ChartResponse
		var req SelectionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			resp = ChartResponse{Status: StatusError, Message: "请求格式错误: " + err.Error()}
		} else {
			_, resp, _ = s.evaluate("ws", req)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[WARN] ws write: %v", err)
			return
		}
	}
}
