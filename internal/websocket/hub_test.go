package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/autoagenda/internal/auth"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, ownerID int64) *Client {
	return &Client{
		hub:     hub,
		ownerID: ownerID,
		send:    make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)
	c3 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 clients, got %d", got)
	}
	if got := hub.OwnerClientCount(2); got != 2 {
		t.Fatalf("expected 2 clients for owner 2, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.OwnerClientCount(2); got != 1 {
		t.Fatalf("expected 1 client for owner 2 after unregister, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c3)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesOnlyOwner(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, 1)
	other := mockClient(hub, 2)
	hub.Register(mine)
	hub.Register(other)
	defer hub.Unregister(mine)
	defer hub.Unregister(other)

	hub.Broadcast(1, NewMessage(EntityTask, ActionCreated, 42))

	got := receive(t, mine)
	if got.Type != "task_created" {
		t.Errorf("expected type task_created, got %s", got.Type)
	}
	if got.ID != 42 {
		t.Errorf("expected id 42, got %d", got.ID)
	}

	select {
	case <-other.send:
		t.Error("owner 2 received a message for owner 1")
	default:
	}
}

func TestBroadcastNoClients(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Broadcast(7, NewMessage(EntityEvent, ActionDeleted, 1))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage(EntityTask, ActionUpdated, int64(i)))
	}
	hub.Broadcast(1, NewMessage(EntityTask, ActionUpdated, 999))

	count := 0
	for len(c.send) > 0 {
		<-c.send
		count++
	}
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntityReminder, ActionDue, 5)
	if msg.Type != "reminder_due" {
		t.Errorf("expected type reminder_due, got %s", msg.Type)
	}
	if msg.Entity != "reminder" || msg.Action != "due" || msg.ID != 5 {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			c := mockClient(hub, owner)
			hub.Register(c)
			hub.Broadcast(owner, NewMessage(EntityTask, ActionCreated, 0))
			for len(c.send) > 0 {
				<-c.send
			}
			hub.Unregister(c)
		}(int64(i % 3))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleRequiresIdentity(t *testing.T) {
	hub := NewHub(slog.Default())
	rec := httptest.NewRecorder()
	Handle(hub, nil)(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleDeliversBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	h := Handle(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: 3, Email: "a@example.com"})
		h(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(time.Second)
	for hub.OwnerClientCount(3) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(3, NewMessage(EntityEvent, ActionCreated, 9))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "event_created" || got.ID != 9 {
		t.Errorf("got %+v, want event_created id 9", got)
	}
}
