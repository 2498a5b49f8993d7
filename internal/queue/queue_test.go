package queue

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		q.Push(fmt.Sprintf("m%d", i))
	}

	if q.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", q.Len())
	}

	for i := 0; i < 100; i++ {
		msg, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() #%d returned empty", i)
		}
		if want := fmt.Sprintf("m%d", i); msg != want {
			t.Fatalf("TryPop() #%d = %q, want %q", i, msg, want)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Error("TryPop() on empty queue should return ok=false")
	}
}

func TestQueueDrain(t *testing.T) {
	q := New()
	if got := q.Drain(); got != nil {
		t.Errorf("Drain() on empty queue = %v, want nil", got)
	}

	q.Push("a")
	q.Push("a")
	q.Push("b")

	got := q.Drain()
	if len(got) != 3 || got[0] != "a" || got[1] != "a" || got[2] != "b" {
		t.Errorf("Drain() = %v, want [a a b] (no deduplication)", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", q.Len())
	}
}

func TestQueueConcurrentProducer(t *testing.T) {
	q := New()
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Push(fmt.Sprintf("%d", i))
		}
	}()

	next := 0
	for next < total {
		for _, msg := range q.Drain() {
			if want := fmt.Sprintf("%d", next); msg != want {
				t.Fatalf("out of order: got %q, want %q", msg, want)
			}
			next++
		}
	}
	wg.Wait()
}
