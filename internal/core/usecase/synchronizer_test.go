package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"search-service/internal/core/debounce/debouncetest"
	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

func newTestSynchronizer(writer *fakeWriter, clock *debouncetest.ManualClock, idle *int32) *Synchronizer {
	return NewSynchronizer(SynchronizerConfig{
		SessionID: uuid.New(),
		Writer:    writer,
		Clock:     clock,
		OnIdle:    func() { atomic.AddInt32(idle, 1) },
	})
}

func TestSynchronizerInitializeOnce(t *testing.T) {
	var idle int32
	s := newTestSynchronizer(&fakeWriter{}, debouncetest.NewManualClock(time.Unix(0, 0)), &idle)

	filters, ok := s.Initialize("/search/flat-for-rent-in-pune/flat?bedrooms=2")
	if !ok {
		t.Fatal("first Initialize should succeed")
	}
	if *filters.PropertyType != domain.PropertyTypeFlat || *filters.Location != "pune" || *filters.Bedrooms != 2 {
		t.Errorf("unexpected filters: %+v", filters)
	}
	if s.State() != domain.SyncIdle {
		t.Errorf("state: got %v, want idle", s.State())
	}

	if _, ok := s.Initialize("/search/room-for-rent-in-goa/room"); ok {
		t.Error("second Initialize should be ignored")
	}
}

func TestSynchronizerNavigationBeforeInit(t *testing.T) {
	var idle int32
	s := newTestSynchronizer(&fakeWriter{}, debouncetest.NewManualClock(time.Unix(0, 0)), &idle)

	if got := s.HandleNavigation("/search/room-for-rent-in-goa/room"); got != domain.NavigationBeforeInit {
		t.Errorf("got %v, want before_init", got)
	}
}

func TestSynchronizerPublishSkipsUnchangedAndUnanchored(t *testing.T) {
	var idle int32
	writer := &fakeWriter{}
	s := newTestSynchronizer(writer, debouncetest.NewManualClock(time.Unix(0, 0)), &idle)

	filters, _ := s.Initialize("/search/room-for-rent-in-goa/room")

	if s.Publish(context.Background(), filters) {
		t.Error("publishing the URL already shown should not rewrite it")
	}
	if s.Publish(context.Background(), domain.SearchFilters{MinRent: domain.Ptr(1000)}) {
		t.Error("filters without location or type should not rewrite the URL")
	}
	if len(writer.written()) != 0 {
		t.Errorf("unexpected writes: %v", writer.written())
	}
}

func TestSynchronizerLatchReleasedByTimeout(t *testing.T) {
	var idle int32
	clock := debouncetest.NewManualClock(time.Unix(0, 0))
	writer := &fakeWriter{}
	s := newTestSynchronizer(writer, clock, &idle)

	filters, _ := s.Initialize("/search/room-for-rent-in-goa/room")
	filters.MinRent = domain.Ptr(5000)

	if !s.Publish(context.Background(), filters) {
		t.Fatal("expected URL rewrite")
	}
	if !s.IsWriting() {
		t.Fatal("latch should be set while rewrite is in flight")
	}
	if got := writer.written(); len(got) != 1 || got[0] != "/search/room-for-rent-in-goa/room?minRent=5000" {
		t.Fatalf("written: %v", got)
	}

	// навигация во время перезаписи не пересчитывает фильтры
	if got := s.HandleNavigation("/search/villa"); got != domain.NavigationSelfInflicted {
		t.Errorf("got %v, want self_inflicted", got)
	}

	clock.Advance(DefaultURLSettleDelay - time.Millisecond)
	if atomic.LoadInt32(&idle) != 0 {
		t.Fatal("latch released too early")
	}
	clock.Advance(time.Millisecond)
	if atomic.LoadInt32(&idle) != 1 || s.IsWriting() {
		t.Errorf("latch should be released after settle delay, idle=%d", atomic.LoadInt32(&idle))
	}
}

func TestSynchronizerAcknowledgeReleasesLatch(t *testing.T) {
	var idle int32
	clock := debouncetest.NewManualClock(time.Unix(0, 0))
	s := newTestSynchronizer(&fakeWriter{}, clock, &idle)

	filters, _ := s.Initialize("/search/room-for-rent-in-goa/room")
	filters.MinRent = domain.Ptr(5000)
	filters.StudentAllowed = domain.Ptr(true)
	s.Publish(context.Background(), filters)

	if s.Acknowledge("/search/room-for-rent-in-goa/room?minRent=9999") {
		t.Error("acknowledging a different URL should not release the latch")
	}
	// порядок параметров и абсолютный адрес не важны
	if !s.Acknowledge("https://rentals.example/search/room-for-rent-in-goa/room?studentAllowed=true&minRent=5000") {
		t.Fatal("matching acknowledgement should release the latch")
	}
	if atomic.LoadInt32(&idle) != 1 {
		t.Errorf("onIdle calls: got %d, want 1", atomic.LoadInt32(&idle))
	}

	clock.Advance(time.Second)
	if atomic.LoadInt32(&idle) != 1 {
		t.Errorf("settle timer should be cancelled after ack, onIdle calls: %d", atomic.LoadInt32(&idle))
	}
}

func TestSynchronizerWriteFailureReleasesLatch(t *testing.T) {
	var idle int32
	writer := &fakeWriter{err: errBackendDown}
	s := newTestSynchronizer(writer, debouncetest.NewManualClock(time.Unix(0, 0)), &idle)

	filters, _ := s.Initialize("/search")
	filters.PropertyType = domain.Ptr(domain.PropertyTypePG)

	if s.Publish(context.Background(), filters) {
		t.Error("failed write should report false")
	}
	if s.IsWriting() {
		t.Error("latch must not stay set after a failed write")
	}
	// запрос продолжает вызывающий, onIdle не нужен
	if atomic.LoadInt32(&idle) != 0 {
		t.Errorf("onIdle calls: got %d, want 0", atomic.LoadInt32(&idle))
	}
}

func TestSynchronizerStopSuppressesIdle(t *testing.T) {
	var idle int32
	clock := debouncetest.NewManualClock(time.Unix(0, 0))
	s := newTestSynchronizer(&fakeWriter{}, clock, &idle)

	filters, _ := s.Initialize("/search")
	filters.PropertyType = domain.Ptr(domain.PropertyTypeRoom)
	s.Publish(context.Background(), filters)
	s.Stop()

	clock.Advance(time.Second)
	if atomic.LoadInt32(&idle) != 0 {
		t.Errorf("onIdle should not fire after Stop, got %d", atomic.LoadInt32(&idle))
	}
	if s.Publish(context.Background(), filters) {
		t.Error("Publish after Stop should do nothing")
	}
}
