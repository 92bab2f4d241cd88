package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func TestHandleWebSocket(t *testing.T) {
	reg := NewRegistry(testLogger())
	server := httptest.NewServer(HandleWebSocket(reg, testLogger()))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	waitForSubscribers(t, reg, 1)
	reg.Broadcast(Event{Name: EventOrderUpdated, Data: map[string]any{"id": 9}})

	_, msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Event != EventOrderUpdated || f.Data["id"] != float64(9) {
		t.Errorf("frame = %+v", f)
	}

	conn.Close(ws.StatusNormalClosure, "")
	waitForSubscribers(t, reg, 0)
}
