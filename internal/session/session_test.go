package session

import (
	"errors"
	"sync"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	r := NewRegistry(0)

	info, release, err := r.Acquire("alice", "127.0.0.1:5000")
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	if info.ID == "" || info.User != "alice" || info.Started.IsZero() {
		t.Errorf("Incomplete session info: %+v", info)
	}
	if _, ok := r.Get(info.ID); !ok {
		t.Error("Acquired session should be retrievable")
	}

	release()
	release()
	if r.Count() != 0 {
		t.Errorf("Expected 0 sessions after release, got %d", r.Count())
	}
}

func TestAcquireCap(t *testing.T) {
	r := NewRegistry(2)

	_, rel1, err := r.Acquire("a", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Acquire("b", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Acquire("c", ""); !errors.Is(err, ErrFull) {
		t.Errorf("Third session should fail with ErrFull, got %v", err)
	}

	rel1()
	if _, _, err := r.Acquire("c", ""); err != nil {
		t.Errorf("Released slot should be reusable: %v", err)
	}
}

func TestListOrder(t *testing.T) {
	r := NewRegistry(0)
	for _, u := range []string{"a", "b", "c"} {
		if _, _, err := r.Acquire(u, ""); err != nil {
			t.Fatal(err)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Started.Before(list[i-1].Started) {
			t.Errorf("List() not ordered by start time")
		}
	}
}

func TestConcurrentAcquire(t *testing.T) {
	r := NewRegistry(10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.Acquire("u", ""); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 10 || r.Count() != 10 {
		t.Errorf("Expected exactly 10 admitted, got %d (count %d)", admitted, r.Count())
	}
}
