package pending

import "testing"

func TestResolveDeliversOnce(t *testing.T) {
	r := NewRegistry[string]()
	ch, cancel := r.Register("id-1")
	defer cancel()

	if !r.Resolve("id-1", "first") {
		t.Fatal("expected first resolve to find the waiter")
	}
	if r.Resolve("id-1", "second") {
		t.Fatal("second resolve must be a no-op")
	}

	got := <-ch
	if got != "first" {
		t.Fatalf("got %q, want %q", got, "first")
	}
	if r.Len() != 0 {
		t.Fatalf("registry not empty: %d", r.Len())
	}
}

func TestResolveUnknownID(t *testing.T) {
	r := NewRegistry[int]()
	if r.Resolve("nobody", 1) {
		t.Fatal("resolve without waiter must return false")
	}
}

func TestCancelRemovesWaiter(t *testing.T) {
	r := NewRegistry[int]()
	_, cancel := r.Register("id-2")
	cancel()

	if r.Resolve("id-2", 42) {
		t.Fatal("resolve after cancel must be a no-op")
	}
	if r.Len() != 0 {
		t.Fatalf("registry not empty: %d", r.Len())
	}
}

func TestResolveDoesNotBlock(t *testing.T) {
	r := NewRegistry[int]()
	_, cancel := r.Register("id-3")
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Resolve("id-3", 7) // nobody reads the channel; must not block
		close(done)
	}()
	<-done
}
