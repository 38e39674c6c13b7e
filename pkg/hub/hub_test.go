package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// registerTestClient attaches a pump-less client so tests can observe the
// send channel directly.
func registerTestClient(t *testing.T, h *Hub, buffer int) *Client {
	t.Helper()
	client := &Client{hub: h, send: make(chan []byte, buffer)}
	select {
	case h.register <- client:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
	waitClients(t, h, func(n int) bool { return n > 0 })
	return client
}

func waitClients(t *testing.T, h *Hub, ok func(int) bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !ok(h.ClientCount()) {
		if time.Now().After(deadline) {
			t.Fatalf("client count stuck at %d", h.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroadcastJSONReachesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	go h.Run(ctx)
	client := registerTestClient(t, h, 4)

	if err := h.BroadcastJSON(map[string]string{"kind": "queued"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	select {
	case payload := <-client.send:
		var got map[string]string
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("payload not JSON: %v", err)
		}
		if got["kind"] != "queued" {
			t.Errorf("kind = %q, want queued", got["kind"])
		}
	case <-time.After(time.Second):
		t.Fatal("client never received the payload")
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(nil)
	go h.Run(ctx)
	registerTestClient(t, h, 1)

	// The second payload finds the buffer full and evicts the client.
	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	waitClients(t, h, func(n int) bool { return n == 0 })
}

func TestDispatchCommands(t *testing.T) {
	h := New(nil)

	got := make(chan Command, 1)
	h.SetCommandHandler(func(cmd Command) { got <- cmd })

	h.dispatch(Command{Action: "speak", Text: "hello", Language: "hi"})

	select {
	case cmd := <-got:
		if cmd.Action != "speak" || cmd.Text != "hello" {
			t.Errorf("dispatched %+v", cmd)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestRunShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := New(nil)
	go h.Run(ctx)
	client := registerTestClient(t, h, 1)

	cancel()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}
