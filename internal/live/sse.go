package live

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	keepaliveInterval = 30 * time.Second
	maxStreamLifetime = 30 * time.Minute
)

// HandleSSE streams broadcast events as server-sent events until the client
// disconnects or the stream reaches its maximum lifetime.
func HandleSSE(reg *Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The server's WriteTimeout would otherwise cut the stream.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("sse: clear write deadline", "error", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		sub := reg.Add()
		defer reg.Remove(sub)

		fmt.Fprint(w, ": connected\n\n")
		if err := rc.Flush(); err != nil {
			logger.Error("sse: flush unsupported", "error", err)
			return
		}

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()
		lifetime := time.NewTimer(maxStreamLifetime)
		defer lifetime.Stop()

		for {
			select {
			case f := <-sub.Frames():
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-lifetime.C:
				return
			case <-sub.Done():
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
