package notifier

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

func receive(t *testing.T, ch ClientChannel) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestNotifierRoutesEventsBySession(t *testing.T) {
	n := NewSSENotifier(contextkeys.NoopLogger())
	defer n.Close()

	mine, other := uuid.New(), uuid.New()
	tab1 := n.AddClient(mine)
	tab2 := n.AddClient(mine)
	foreign := n.AddClient(other)

	n.Notify(context.Background(), domain.SessionEvent{
		SessionID: mine,
		Type:      domain.SessionEventResults,
		Data: domain.QuerySnapshot{
			HasRun:          true,
			TotalProperties: 1,
			Page:            1,
			Properties:      []domain.Property{{ID: "p1", Title: "2BHK"}},
		},
	})

	for _, ch := range []ClientChannel{tab1, tab2} {
		msg := receive(t, ch)
		if msg.Type != "results" {
			t.Errorf("type: got %q", msg.Type)
		}
		var dto QuerySnapshotDTO
		if err := json.Unmarshal(msg.Data, &dto); err != nil {
			t.Fatal(err)
		}
		if !dto.HasRun || len(dto.Properties) != 1 || dto.Properties[0].ID != "p1" {
			t.Errorf("payload: %+v", dto)
		}
	}

	select {
	case msg := <-foreign:
		t.Errorf("event leaked to another session: %v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestNotifierRemoveClient(t *testing.T) {
	n := NewSSENotifier(contextkeys.NoopLogger())
	defer n.Close()

	id := uuid.New()
	a := n.AddClient(id)
	b := n.AddClient(id)
	n.RemoveClient(id, a)
	if n.ClientCount(id) != 1 {
		t.Fatalf("count: got %d", n.ClientCount(id))
	}
	n.RemoveClient(id, b)
	if n.ClientCount(id) != 0 {
		t.Errorf("count: got %d", n.ClientCount(id))
	}
	// повторное удаление безопасно
	n.RemoveClient(id, b)
}

func TestClosedEventPayload(t *testing.T) {
	n := NewSSENotifier(contextkeys.NoopLogger())
	defer n.Close()

	id := uuid.New()
	ch := n.AddClient(id)
	n.Notify(context.Background(), domain.SessionEvent{SessionID: id, Type: domain.SessionEventClosed, Data: struct{}{}})

	msg := receive(t, ch)
	if !msg.Closing() {
		t.Error("closed event should end the stream")
	}
	if !strings.Contains(string(msg.Data), id.String()) {
		t.Errorf("payload: %s", msg.Data)
	}
	if got := msg.Format(); !strings.HasPrefix(got, "event: closed\ndata: {") || !strings.HasSuffix(got, "\n\n") {
		t.Errorf("format: %q", got)
	}
}

func TestNotifyAfterCloseDoesNotBlock(t *testing.T) {
	n := NewSSENotifier(contextkeys.NoopLogger())
	n.Close()
	n.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBufferSize+10; i++ {
			n.Notify(context.Background(), domain.SessionEvent{SessionID: uuid.New(), Type: "results"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after Close")
	}
}

func TestSSEURLWriterSendsNavigate(t *testing.T) {
	n := NewSSENotifier(contextkeys.NoopLogger())
	defer n.Close()
	w, _ := NewSSEURLWriter(n)

	id := uuid.New()
	ch := n.AddClient(id)
	if err := w.WriteURL(context.Background(), id, "/search/pg-for-rent-in-kota/pg"); err != nil {
		t.Fatal(err)
	}

	msg := receive(t, ch)
	if msg.Type != "navigate" || string(msg.Data) != `{"url":"/search/pg-for-rent-in-kota/pg"}` {
		t.Errorf("got %s %s", msg.Type, msg.Data)
	}
	if err := w.WriteURL(context.Background(), id, ""); err == nil {
		t.Error("empty URL should be rejected")
	}
}
