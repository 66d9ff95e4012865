package debounce_test

import (
	"testing"
	"time"

	"search-service/internal/core/debounce"
	"search-service/internal/core/debounce/debouncetest"
)

type settleRecord struct {
	value string
	at    time.Duration
}

func newRecordingGate(clock *debouncetest.ManualClock, start time.Time) (*debounce.Gate[string], *[]settleRecord) {
	var records []settleRecord
	g := debounce.NewGate(clock, 300*time.Millisecond, func(v string) {
		records = append(records, settleRecord{value: v, at: clock.Now().Sub(start)})
	})
	return g, &records
}

func TestGateLastEditWins(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := debouncetest.NewManualClock(start)
	g, records := newRecordingGate(clock, start)

	g.Push("E1")
	clock.Advance(100 * time.Millisecond)
	g.Push("E2")
	clock.Advance(150 * time.Millisecond)
	g.Push("E3")

	clock.Advance(299 * time.Millisecond)
	if len(*records) != 0 {
		t.Fatalf("settled too early: %+v", *records)
	}

	clock.Advance(1 * time.Millisecond)
	clock.Advance(time.Second)

	if len(*records) != 1 {
		t.Fatalf("settle events: got %d, want 1 (%+v)", len(*records), *records)
	}
	got := (*records)[0]
	if got.value != "E3" {
		t.Errorf("settled value: got %q, want %q", got.value, "E3")
	}
	if got.at != 550*time.Millisecond {
		t.Errorf("settled at: got %v, want %v", got.at, 550*time.Millisecond)
	}
}

func TestGatePrimeEmitsImmediately(t *testing.T) {
	start := time.Unix(0, 0)
	clock := debouncetest.NewManualClock(start)
	g, records := newRecordingGate(clock, start)

	g.Prime("mount")

	if len(*records) != 1 || (*records)[0].value != "mount" || (*records)[0].at != 0 {
		t.Fatalf("prime: got %+v", *records)
	}
	if v, ok := g.Settled(); !ok || v != "mount" {
		t.Errorf("Settled: got %q, %v", v, ok)
	}
}

func TestGatePrimeCancelsPendingPush(t *testing.T) {
	start := time.Unix(0, 0)
	clock := debouncetest.NewManualClock(start)
	g, records := newRecordingGate(clock, start)

	g.Push("stale")
	g.Prime("fresh")
	clock.Advance(time.Second)

	if len(*records) != 1 || (*records)[0].value != "fresh" {
		t.Fatalf("got %+v, want only the primed value", *records)
	}
}

func TestGateStopCancelsPending(t *testing.T) {
	start := time.Unix(0, 0)
	clock := debouncetest.NewManualClock(start)
	g, records := newRecordingGate(clock, start)

	g.Push("E1")
	if !g.Pending() {
		t.Fatal("expected a pending settle")
	}
	g.Stop()
	clock.Advance(time.Second)
	g.Push("after stop")
	g.Prime("after stop")
	clock.Advance(time.Second)

	if len(*records) != 0 {
		t.Errorf("no settle expected after Stop, got %+v", *records)
	}
	if clock.Pending() != 0 {
		t.Errorf("timers left behind: %d", clock.Pending())
	}
}

func TestGateSeparatedEditsSettleIndividually(t *testing.T) {
	start := time.Unix(0, 0)
	clock := debouncetest.NewManualClock(start)
	g, records := newRecordingGate(clock, start)

	g.Push("A")
	clock.Advance(400 * time.Millisecond)
	g.Push("B")
	clock.Advance(400 * time.Millisecond)

	if len(*records) != 2 || (*records)[0].value != "A" || (*records)[1].value != "B" {
		t.Fatalf("got %+v", *records)
	}
}

func TestGateWithSystemClock(t *testing.T) {
	done := make(chan string, 1)
	g := debounce.NewGate[string](nil, 20*time.Millisecond, func(v string) { done <- v })

	g.Push("x")
	g.Push("y")

	select {
	case v := <-done:
		if v != "y" {
			t.Errorf("got %q, want %q", v, "y")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate never settled")
	}
}
