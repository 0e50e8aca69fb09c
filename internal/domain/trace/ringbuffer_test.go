package trace_test

import (
	"sync"
	"testing"

	"github.com/sophialabs/replayd/internal/domain/trace"
)

func entry(path string) trace.Entry {
	return trace.Entry{Method: "GET", Path: path, Outcome: trace.OutcomeMatched}
}

func TestRingBuffer_LastReturnsChronologicalOrder(t *testing.T) {
	rb := trace.NewRingBuffer(5)
	rb.Add(entry("/a"))
	rb.Add(entry("/b"))
	rb.Add(entry("/c"))

	got := rb.Last(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Path != "/b" || got[1].Path != "/c" {
		t.Errorf("expected [/b /c], got [%s %s]", got[0].Path, got[1].Path)
	}
}

func TestRingBuffer_OverwritesOldestWhenFull(t *testing.T) {
	rb := trace.NewRingBuffer(3)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		rb.Add(entry(p))
	}

	if rb.Count() != 3 {
		t.Errorf("expected count 3, got %d", rb.Count())
	}
	got := rb.Last(3)
	if got[0].Path != "/b" || got[2].Path != "/d" {
		t.Errorf("oldest entry should be dropped, got %v", got)
	}
}

func TestRingBuffer_LastClampsToCount(t *testing.T) {
	rb := trace.NewRingBuffer(10)
	rb.Add(entry("/a"))

	if got := rb.Last(100); len(got) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got))
	}
	if got := rb.Last(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestRingBuffer_DefaultsSizeWhenNonPositive(t *testing.T) {
	rb := trace.NewRingBuffer(0)
	for range 150 {
		rb.Add(entry("/a"))
	}
	if rb.Count() != 100 {
		t.Errorf("expected default capacity 100, got %d", rb.Count())
	}
}

func TestRingBuffer_ConcurrentAdd(t *testing.T) {
	rb := trace.NewRingBuffer(50)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				rb.Add(entry("/a"))
				rb.Last(5)
			}
		}()
	}
	wg.Wait()

	if rb.Count() != 50 {
		t.Errorf("expected full buffer, got %d", rb.Count())
	}
}
