package model

import (
	"errors"
	"testing"
)

func TestQueue(t *testing.T) {
	q := NewQueue()
	if _, _, ok := q.GetNextPair(); ok {
		t.Fatal("pair from empty queue")
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if err := q.AddPlayer(Player{ID: "b"}); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("duplicate: %v", err)
	}

	p1, p2, ok := q.GetNextPair()
	if !ok || p1.ID != "a" || p2.ID != "b" {
		t.Fatalf("pair = %s, %s, %v", p1.ID, p2.ID, ok)
	}
	if q.Size() != 1 || !q.Contains("c") || q.Contains("a") {
		t.Errorf("size = %d", q.Size())
	}
	if !q.Remove("c") || q.Remove("c") {
		t.Error("Remove should succeed exactly once")
	}
	if q.Size() != 0 {
		t.Errorf("size = %d", q.Size())
	}
}
