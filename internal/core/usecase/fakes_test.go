package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

type fakeListings struct {
	mu      sync.Mutex
	queries []domain.ListingQuery
	// block, если задан, держит каждый вызов до закрытия канала или отмены ctx
	block chan struct{}
	err   error
	total int
}

func (f *fakeListings) SearchListings(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	block, err, total := f.block, f.err, f.total
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.ListingPage{
		Properties:      []domain.Property{{ID: "p1", Title: "Sunny room"}},
		TotalProperties: total,
		Page:            query.Filters.Page,
		TotalPages:      1,
	}, nil
}

func (f *fakeListings) calls() []domain.ListingQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ListingQuery, len(f.queries))
	copy(out, f.queries)
	return out
}

type fakeWriter struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (w *fakeWriter) WriteURL(_ context.Context, _ uuid.UUID, url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.urls = append(w.urls, url)
	return nil
}

func (w *fakeWriter) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.urls))
	copy(out, w.urls)
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (n *fakeNotifier) Notify(_ context.Context, event domain.SessionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Type == eventType {
			c++
		}
	}
	return c
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.SearchPerformedEvent
}

func (e *fakeEvents) PublishSearchPerformed(_ context.Context, event domain.SearchPerformedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) published() []domain.SearchPerformedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.SearchPerformedEvent, len(e.events))
	copy(out, e.events)
	return out
}

type fakePlaces struct {
	mu              sync.Mutex
	suggestionCalls int
	detailsCalls    int
	suggestionsErr  error
	details         map[string]domain.PlaceDetails
}

func (p *fakePlaces) Suggestions(_ context.Context, input string) ([]domain.PlaceSuggestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suggestionCalls++
	if p.suggestionsErr != nil {
		return nil, p.suggestionsErr
	}
	return []domain.PlaceSuggestion{{PlaceID: "ChIJ1", Description: input + ", India", MainText: input}}, nil
}

func (p *fakePlaces) Details(_ context.Context, placeID string) (*domain.PlaceDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detailsCalls++
	d, ok := p.details[placeID]
	if !ok {
		return nil, domain.ErrPlaceNotFound
	}
	return &d, nil
}

type fakeCache struct {
	mu     sync.Mutex
	items  map[string]domain.PlaceDetails
	getErr error
	puts   int
}

func (c *fakeCache) Get(_ context.Context, placeID string) (*domain.PlaceDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	d, ok := c.items[placeID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *fakeCache) Put(_ context.Context, details domain.PlaceDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]domain.PlaceDetails)
	}
	c.items[details.PlaceID] = details
	c.puts++
	return nil
}

var errBackendDown = errors.New("backend down")

// waitFor ждет, пока cond станет истинным: запросы выполняются в отдельных горутинах
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// settle дает горутинам время закончить работу, когда проверяется отсутствие вызова
func settle() {
	time.Sleep(20 * time.Millisecond)
}
