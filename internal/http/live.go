package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"presupuesto/internal/log"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

// handleLive upgrades to a websocket and pushes a dashboard for every store
// snapshot, starting with the current one. Clients only listen; anything
// they send is discarded.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		log.FromContext(r.Context()).DebugContext(r.Context(), "Websocket upgrade failed", log.FieldError, err.Error())
		return
	}
	defer conn.Close()

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentLive)
	ctx, cancel := context.WithCancel(s.live)
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	logger.Info("Live feed opened", log.FieldClientIP, extractClientIP(r))
	sent := 0
	defer func() {
		logger.Info("Live feed closed", "sent", sent)
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	changes := s.deps.Dashboard.Changes(ctx)
	for {
		select {
		case view, ok := <-changes:
			if !ok {
				closeLive(conn)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(view); err != nil {
				logger.Debug("Live write failed", log.FieldError, err.Error())
				return
			}
			sent++
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			closeLive(conn)
			return
		}
	}
}

func closeLive(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
