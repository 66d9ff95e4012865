package rest

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"search-service/internal/adapters/notifier"
	"search-service/internal/contextkeys"
	"search-service/internal/core/usecase"

	"github.com/google/uuid"
)

func TestServerStopEndsOpenStreams(t *testing.T) {
	sessions := &fakeSessions{id: uuid.New()}
	n := notifier.NewSSENotifier(contextkeys.NoopLogger())
	t.Cleanup(n.Close)
	h := NewSearchHandler(sessions, usecase.NewResolveSearchUseCase(), fakeSuggest{}, fakeDetails{}, n)
	server := NewServer("0", []string{"http://localhost:5173"}, h, contextkeys.NoopLogger())

	ts := httptest.NewUnstartedServer(server.httpServer.Handler)
	ts.Config = server.httpServer
	ts.Start()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/search/sessions/" + sessions.id.String() + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() || scanner.Text() != "event: connected" {
		t.Fatalf("first line: %q", scanner.Text())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop took %v with an open stream", elapsed)
	}

	var sawClosed bool
	for scanner.Scan() {
		if scanner.Text() == "event: closed" {
			sawClosed = true
		}
	}
	if !sawClosed {
		t.Error("stream should end with a closed event")
	}
}
