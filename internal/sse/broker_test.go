package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/collabeat/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
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
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "beat.minted", Data: map[string]string{"token_key": "tk"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: beat.minted") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"token_key":"tk"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishCall_EventTypes(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	contract := models.Contract{TokenKey: "tk", ContractID: "mc"}
	b.PublishCall("execute", contract, models.Succeeded(nil))
	b.PublishCall("mint", contract, models.Succeeded(nil))
	b.PublishCall("execute", contract, models.Failed("Can not be more than 10 beats"))

	want := []string{"event: beat.executed", "event: beat.minted", "event: beat.rejected"}
	for i, w := range want {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), w) {
				t.Errorf("event %d = %q, want prefix %q", i, msg, w)
			}
			if i == 2 && !strings.Contains(string(msg), `"error":"Can not be more than 10 beats"`) {
				t.Errorf("rejected event missing error: %q", msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

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

	b.Publish(Event{Type: "beat.executed", Data: map[string]string{"token_key": "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: beat.executed") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the extra publishes must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
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

	// Safe no-ops after close.
	b.Publish(Event{Type: "beat.executed"})
	b.PublishCall("mint", models.Contract{}, models.Succeeded(nil))
}

func TestEventIDsIncrease(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventMinted, Data: 1})
	b.Publish(Event{Type: EventMinted, Data: 2})

	for i, want := range []string{"id: 1\n", "id: 2\n"} {
		select {
		case msg := <-ch:
			if !strings.Contains(string(msg), want) {
				t.Errorf("event %d = %q, want %q", i, msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}
}

func TestSubscribeAfterReplaysMissedEvents(t *testing.T) {
	b := NewBroker(WithHistory(2))
	defer b.Close()

	probe := b.Subscribe()
	for i := 1; i <= 3; i++ {
		b.Publish(Event{Type: EventExecuted, Data: i})
	}
	// The probe has seen every event once the loop has broadcast them all.
	for i := 0; i < 3; i++ {
		select {
		case <-probe:
		case <-time.After(time.Second):
			t.Fatal("timeout draining probe")
		}
	}
	b.Unsubscribe(probe)

	ch := b.SubscribeAfter(1)
	defer b.Unsubscribe(ch)

	// History keeps ids 2 and 3; both are newer than 1.
	for _, want := range []string{"id: 2\n", "id: 3\n"} {
		select {
		case msg := <-ch:
			if !strings.Contains(string(msg), want) {
				t.Errorf("replayed %q, want %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for replay of %q", want)
		}
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra event %q", msg)
	default:
	}
}

func TestSSEHandlerKeepAlive(t *testing.T) {
	b := NewBroker(WithKeepAlive(10 * time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.Body.String(), ": ping\n\n") {
		t.Errorf("no keepalive in %q", w.Body.String())
	}
}
