package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const pingInterval = 30 * time.Second

// HandleWebSocket upgrades the connection and writes each broadcast event as
// a JSON text message of the form {"event": ..., "data": ...}.
func HandleWebSocket(reg *Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket: accept", "error", err)
			return
		}
		defer conn.CloseNow()

		sub := reg.Add()
		defer reg.Remove(sub)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Incoming messages are ignored. A read error means the peer is gone.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case f := <-sub.Frames():
				msg, err := json.Marshal(f)
				if err != nil {
					logger.Error("websocket: marshal frame", "error", err)
					continue
				}
				if err := conn.Write(ctx, ws.MessageText, msg); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
			case <-sub.Done():
				conn.Close(ws.StatusGoingAway, "")
				return
			case <-ctx.Done():
				return
			}
		}
	}
}
