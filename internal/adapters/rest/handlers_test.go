package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"search-service/internal/adapters/notifier"
	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/usecase"

	"github.com/google/uuid"
)

// fakeSessions - SearchSessionsPort с одной известной сессией
type fakeSessions struct {
	id         uuid.UUID
	lastValues map[string]string
	lastKey    string
	lastSort   [2]string
	acked      string
}

func (f *fakeSessions) view() domain.SessionView {
	return domain.SessionView{
		ID:      f.id,
		State:   domain.SyncIdle,
		Filters: domain.SearchFilters{Location: domain.Ptr("pune"), Page: 1, Limit: 12},
		URL:     "/search/properties-for-rent-in-pune",
		Sort:    domain.Sort{By: "createdAt", Order: "desc"},
	}
}

func (f *fakeSessions) lookup(id uuid.UUID) error {
	if id != f.id {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (f *fakeSessions) Create(ctx context.Context, rawURL string) (domain.SessionView, error) {
	return f.view(), nil
}
func (f *fakeSessions) Get(ctx context.Context, id uuid.UUID) (domain.SessionView, error) {
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) Close(ctx context.Context, id uuid.UUID) error { return f.lookup(id) }
func (f *fakeSessions) UpdateFilters(ctx context.Context, id uuid.UUID, values map[string]string) (domain.SessionView, error) {
	if err := f.lookup(id); err != nil {
		return domain.SessionView{}, err
	}
	for k := range values {
		if !domain.IsFilterKey(k) {
			return domain.SessionView{}, domain.ErrUnknownFilter
		}
	}
	f.lastValues = values
	return f.view(), nil
}
func (f *fakeSessions) RemoveFilter(ctx context.Context, id uuid.UUID, key string) (domain.SessionView, error) {
	f.lastKey = key
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) ClearFilters(ctx context.Context, id uuid.UUID) (domain.SessionView, error) {
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) SetPage(ctx context.Context, id uuid.UUID, page int) (domain.SessionView, error) {
	if page < 1 {
		return domain.SessionView{}, domain.ErrInvalidPage
	}
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) SetSort(ctx context.Context, id uuid.UUID, by, order string) (domain.SessionView, error) {
	f.lastSort = [2]string{by, order}
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) EditLocation(ctx context.Context, id uuid.UUID, text string) (domain.SessionView, error) {
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) SelectPlace(ctx context.Context, id uuid.UUID, placeID string) (domain.SessionView, error) {
	if placeID == "missing" {
		return domain.SessionView{}, domain.ErrPlaceNotFound
	}
	return f.view(), f.lookup(id)
}
func (f *fakeSessions) Suggest(ctx context.Context, id uuid.UUID, input string) ([]domain.PlaceSuggestion, error) {
	return []domain.PlaceSuggestion{{PlaceID: "p1", Description: "Pune, Maharashtra"}}, f.lookup(id)
}
func (f *fakeSessions) HandleNavigation(ctx context.Context, id uuid.UUID, rawURL string) (domain.NavigationOutcome, error) {
	return domain.NavigationExternal, f.lookup(id)
}
func (f *fakeSessions) AcknowledgeNavigation(ctx context.Context, id uuid.UUID, rawURL string) (bool, error) {
	f.acked = rawURL
	return true, f.lookup(id)
}

type fakeSuggest struct{ err error }

func (f fakeSuggest) Execute(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	return []domain.PlaceSuggestion{{PlaceID: "p1", MainText: "Pune"}}, f.err
}

type fakeDetails struct{}

func (fakeDetails) Execute(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	if placeID != "p1" {
		return nil, domain.ErrPlaceNotFound
	}
	return &domain.PlaceDetails{PlaceID: "p1", Name: "Pune", Latitude: 18.52, Longitude: 73.85}, nil
}

func newTestRouter(t *testing.T, suggestErr error) (http.Handler, *fakeSessions, *SearchHandler, *notifier.SSENotifier) {
	t.Helper()
	sessions := &fakeSessions{id: uuid.New()}
	n := notifier.NewSSENotifier(contextkeys.NoopLogger())
	t.Cleanup(n.Close)
	h := NewSearchHandler(sessions, usecase.NewResolveSearchUseCase(), fakeSuggest{err: suggestErr}, fakeDetails{}, n)
	return NewRouter([]string{"http://localhost:5173"}, h, contextkeys.NoopLogger()), sessions, h, n
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSessionEndpoints(t *testing.T) {
	router, sessions, _, _ := newTestRouter(t, nil)
	base := "/api/v1/search/sessions/" + sessions.id.String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"create", http.MethodPost, "/api/v1/search/sessions", `{"url":"/search/properties-for-rent-in-pune"}`, http.StatusCreated},
		{"create without url", http.MethodPost, "/api/v1/search/sessions", `{}`, http.StatusBadRequest},
		{"create broken body", http.MethodPost, "/api/v1/search/sessions", `{`, http.StatusBadRequest},
		{"get", http.MethodGet, base, "", http.StatusOK},
		{"get unknown", http.MethodGet, "/api/v1/search/sessions/" + uuid.NewString(), "", http.StatusNotFound},
		{"get bad id", http.MethodGet, "/api/v1/search/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"patch filters", http.MethodPatch, base + "/filters", `{"bedrooms":2,"photoOnly":true,"minRent":null}`, http.StatusOK},
		{"patch unknown filter", http.MethodPatch, base + "/filters", `{"colour":"blue"}`, http.StatusBadRequest},
		{"patch empty", http.MethodPatch, base + "/filters", `{}`, http.StatusBadRequest},
		{"patch nested value", http.MethodPatch, base + "/filters", `{"bedrooms":[1]}`, http.StatusBadRequest},
		{"remove chip", http.MethodDelete, base + "/filters/bedrooms", "", http.StatusOK},
		{"clear all", http.MethodDelete, base + "/filters", "", http.StatusOK},
		{"page", http.MethodPut, base + "/page", `{"page":3}`, http.StatusOK},
		{"invalid page", http.MethodPut, base + "/page", `{"page":0}`, http.StatusBadRequest},
		{"sort", http.MethodPut, base + "/sort", `{"sort_by":"rent","sort_order":"asc"}`, http.StatusOK},
		{"location", http.MethodPut, base + "/location", `{"text":"Kothrud"}`, http.StatusOK},
		{"select place", http.MethodPost, base + "/place", `{"place_id":"p1"}`, http.StatusOK},
		{"select missing place", http.MethodPost, base + "/place", `{"place_id":"missing"}`, http.StatusNotFound},
		{"select without id", http.MethodPost, base + "/place", `{}`, http.StatusBadRequest},
		{"suggestions", http.MethodGet, base + "/suggestions?input=pu", "", http.StatusOK},
		{"navigation", http.MethodPost, base + "/navigation", `{"url":"/search/room"}`, http.StatusOK},
		{"ack", http.MethodPost, base + "/navigation/ack", `{"url":"/search/room"}`, http.StatusOK},
		{"ack without url", http.MethodPost, base + "/navigation/ack", `{}`, http.StatusBadRequest},
		{"close", http.MethodDelete, base, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(router, tt.method, tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if rr.Code >= 400 {
				var body map[string]string
				if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("error body: %s", rr.Body.String())
				}
			}
		})
	}

	if sessions.lastValues["bedrooms"] != "2" || sessions.lastValues["photoOnly"] != "true" {
		t.Errorf("filter values: %v", sessions.lastValues)
	}
	if v, ok := sessions.lastValues["minRent"]; !ok || v != "" {
		t.Errorf("null should reset minRent, got %q (present %v)", v, ok)
	}
	if sessions.lastKey != "bedrooms" || sessions.lastSort != [2]string{"rent", "asc"} {
		t.Errorf("key %q sort %v", sessions.lastKey, sessions.lastSort)
	}
}

func TestSessionResponseShape(t *testing.T) {
	router, sessions, _, _ := newTestRouter(t, nil)

	rr := do(router, http.MethodGet, "/api/v1/search/sessions/"+sessions.id.String(), "")
	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != sessions.id.String() || resp.State != "idle" || resp.Sort.By != "createdAt" {
		t.Errorf("response: %+v", resp)
	}
	if resp.ActiveFilters == nil || resp.Query.Properties == nil {
		t.Error("lists should be empty arrays, not null")
	}
	if rr.Header().Get("X-Trace-ID") == "" {
		t.Error("trace id header should be set")
	}
}

func TestResolveAndPlaces(t *testing.T) {
	router, _, _, _ := newTestRouter(t, nil)

	rr := do(router, http.MethodGet, "/api/v1/search/resolve?url="+
		"%2Fsearch%2Fflat-for-rent-in-navi-mumbai%2Fflat%3Fbedrooms%3D2%26page%3D1", "")
	var resolved ResolveResponse
	json.Unmarshal(rr.Body.Bytes(), &resolved)
	if rr.Code != http.StatusOK || resolved.CanonicalURL != "/search/flat-for-rent-in-navi-mumbai/flat?bedrooms=2" {
		t.Errorf("resolve: %d %+v", rr.Code, resolved)
	}
	if rr := do(router, http.MethodGet, "/api/v1/search/resolve", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("resolve without url: got %d", rr.Code)
	}

	if rr := do(router, http.MethodGet, "/api/v1/places/suggestions?input=pu", ""); rr.Code != http.StatusOK {
		t.Errorf("suggestions: got %d", rr.Code)
	}
	if rr := do(router, http.MethodGet, "/api/v1/places/p1", ""); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"formattedAddress"`) {
		t.Errorf("details: got %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(router, http.MethodGet, "/api/v1/places/unknown", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown place: got %d", rr.Code)
	}
	if rr := do(router, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health: got %d", rr.Code)
	}
}

func TestPlaceSuggestionsUpstreamFailure(t *testing.T) {
	router, _, _, _ := newTestRouter(t, errors.New("places api down"))

	if rr := do(router, http.MethodGet, "/api/v1/places/suggestions?input=pune", ""); rr.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502", rr.Code)
	}
}

func TestSubscribeToSessionStreamsEvents(t *testing.T) {
	router, sessions, _, n := newTestRouter(t, nil)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/search/sessions/" + sessions.id.String() + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	next := func() string {
		select {
		case l, ok := <-lines:
			if !ok {
				return "<eof>"
			}
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for SSE line")
		}
		return ""
	}

	if l := next(); l != "event: connected" {
		t.Fatalf("first line: %q", l)
	}
	next() // data
	next() // пустая строка

	for n.ClientCount(sessions.id) == 0 {
		time.Sleep(time.Millisecond)
	}
	n.Notify(context.Background(), domain.SessionEvent{
		SessionID: sessions.id,
		Type:      domain.SessionEventNavigate,
		Data:      domain.NavigateEventData{URL: "/search/pg"},
	})
	if l := next(); l != "event: navigate" {
		t.Fatalf("got %q", l)
	}
	if l := next(); l != `data: {"url":"/search/pg"}` {
		t.Fatalf("got %q", l)
	}
	next()

	n.Notify(context.Background(), domain.SessionEvent{SessionID: sessions.id, Type: domain.SessionEventClosed, Data: struct{}{}})
	if l := next(); l != "event: closed" {
		t.Fatalf("got %q", l)
	}
	next()
	next()
	if l := next(); l != "<eof>" {
		t.Errorf("stream should end after closed event, got %q", l)
	}
}

func TestSubscribeToUnknownSession(t *testing.T) {
	router, _, _, _ := newTestRouter(t, nil)

	if rr := do(router, http.MethodGet, "/api/v1/search/sessions/"+uuid.NewString()+"/events", ""); rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}
