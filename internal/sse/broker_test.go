package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "workspace.created", Data: map[string]string{"path": "k.modal"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: workspace.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"k.modal"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestPublishChanges_HistoryThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change triggers history.updated; the next two fall inside the window.
	b.PublishProof("abc", false)
	b.PublishWorkspaceEvent("updated", "k.modal")
	b.PublishWorkspaceEvent("deleted", "k.modal")

	time.Sleep(50 * time.Millisecond)
	historyCount, changeCount := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, "event: "+EventHistoryUpdated) {
			historyCount++
		} else {
			changeCount++
		}
	}

	if changeCount != 3 {
		t.Errorf("change events = %d, want 3", changeCount)
	}
	if historyCount != 1 {
		t.Errorf("history events = %d, want 1 (throttled)", historyCount)
	}
}

func TestPublishProof_Payload(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishProof("abc", true)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "id: 1\nevent: proof.completed\n") {
			t.Errorf("unexpected event %q", s)
		}
		if !strings.Contains(s, `"checksum":"abc"`) || !strings.Contains(s, `"verdict":"valid"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishWorkspaceEvent_UnknownKindDropped(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishWorkspaceEvent("renamed", "k.modal")
	time.Sleep(50 * time.Millisecond)
	if got := drain(ch); len(got) != 0 {
		t.Errorf("expected no events, got %q", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: "workspace.updated", Data: map[string]string{"path": "x.modal"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: workspace.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "workspace.updated", Data: map[string]string{"path": "x.modal"}})
	b.PublishWorkspaceEvent("updated", "x.modal")
	b.PublishProof("abc", false)
}

func TestEventIDsIncrease(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "a", Data: nil})
	b.Publish(Event{Type: "b", Data: nil})
	time.Sleep(50 * time.Millisecond)

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if !strings.HasPrefix(got[0], "id: 1\n") || !strings.HasPrefix(got[1], "id: 2\n") {
		t.Errorf("unexpected ids in %q", got)
	}
}

func TestSubscribeFrom_ReplaysNewerEvents(t *testing.T) {
	b := NewBroker(time.Hour, WithReplay(2))
	defer b.Close()

	for _, typ := range []string{"one", "two", "three"} {
		b.Publish(Event{Type: typ, Data: nil})
	}
	// Let the loop consume the publishes before subscribing.
	time.Sleep(50 * time.Millisecond)

	ch := b.SubscribeFrom(1)
	defer b.Unsubscribe(ch)
	time.Sleep(50 * time.Millisecond)

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("replayed %d events, want 2: %q", len(got), got)
	}
	if !strings.Contains(got[0], "event: two") || !strings.Contains(got[1], "event: three") {
		t.Errorf("replayed %q", got)
	}

	fresh := b.Subscribe()
	defer b.Unsubscribe(fresh)
	time.Sleep(50 * time.Millisecond)
	if got := drain(fresh); len(got) != 0 {
		t.Errorf("plain subscriber got replay %q", got)
	}
}

func TestSSEHandler_LastEventIDAndKeepAlive(t *testing.T) {
	b := NewBroker(time.Hour, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	b.Publish(Event{Type: "old", Data: nil})
	b.Publish(Event{Type: "missed", Data: nil})
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", "1")
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if strings.Contains(body, "event: old") {
		t.Errorf("event before Last-Event-ID was replayed: %q", body)
	}
	if !strings.Contains(body, "id: 2\nevent: missed") {
		t.Errorf("missed event not replayed: %q", body)
	}
	if !strings.Contains(body, ": ping\n\n") {
		t.Errorf("no keepalive comment in %q", body)
	}
}
