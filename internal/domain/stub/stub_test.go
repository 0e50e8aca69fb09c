package stub_test

import (
	"sync"
	"testing"
	"time"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

func TestLastUsed_ZeroMeansNever(t *testing.T) {
	s := &stub.Stub{}
	if !s.LastUsed().IsZero() {
		t.Error("a fresh stub has never been used")
	}

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.MarkUsed(ts)
	if !s.LastUsed().Equal(ts) {
		t.Errorf("expected %v, got %v", ts, s.LastUsed())
	}
}

func TestLastUsed_OrdersAgainstZero(t *testing.T) {
	fresh := &stub.Stub{}
	used := &stub.Stub{}
	used.MarkUsed(time.Now())

	if !fresh.LastUsed().Before(used.LastUsed()) {
		t.Error("never-used must sort before any used stub")
	}
}

func TestMarkUsed_ConcurrentStamps(t *testing.T) {
	s := &stub.Stub{}
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.MarkUsed(time.Unix(int64(i+1), 0))
		}(i)
	}
	wg.Wait()

	got := s.LastUsed().Unix()
	if got < 1 || got > 10 {
		t.Errorf("final stamp should be one of the written times, got %d", got)
	}
}

func TestBuiltins_LookupAndRegister(t *testing.T) {
	b := stub.Builtins{}
	if b.Lookup("GET", "/__ping") != nil {
		t.Error("empty builtins should find nothing")
	}

	r := &stub.Result{Status: 200}
	b.Register("GET", "/__ping", r)
	if got := b.Lookup("GET", "/__ping"); got != r {
		t.Error("registered builtin should be returned")
	}
	if b.Lookup("POST", "/__ping") != nil {
		t.Error("builtins are method-scoped")
	}
}
