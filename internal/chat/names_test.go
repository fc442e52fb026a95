package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestNameRegistry_ConcurrentReserveSingleWinner(t *testing.T) {
	r := NewNameRegistry()

	const attempts = 64
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Reserve("alice")
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNameTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful reservation, got %d", wins)
	}
}

func TestNameRegistry_ReleaseAllowsRetry(t *testing.T) {
	r := NewNameRegistry()

	if err := r.Reserve("alice"); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := r.Reserve("alice"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	r.Release("alice")
	if err := r.Reserve("alice"); err != nil {
		t.Fatalf("reserve after release: %v", err)
	}
}

func TestNameRegistry_InvalidNames(t *testing.T) {
	r := NewNameRegistry()

	for _, name := range []string{"", strings.Repeat("a", 33)} {
		if err := r.Reserve(name); !errors.Is(err, ErrNameInvalid) {
			t.Fatalf("Reserve(%q): expected ErrNameInvalid, got %v", name, err)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  alice  "); got != "alice" {
		t.Fatalf("expected trimmed name, got %q", got)
	}

	// Composed and decomposed forms of the same name collide.
	composed := NormalizeName("café")
	decomposed := NormalizeName("café")
	if composed != decomposed {
		t.Fatalf("NFC forms differ: %q vs %q", composed, decomposed)
	}

	r := NewNameRegistry()
	if err := r.Reserve(composed); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := r.Reserve(decomposed); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected normalized collision, got %v", err)
	}
}

func TestNameRegistry_DistinctNamesCoexist(t *testing.T) {
	r := NewNameRegistry()
	for i := 0; i < 10; i++ {
		if err := r.Reserve(fmt.Sprintf("user-%d", i)); err != nil {
			t.Fatalf("Reserve(user-%d): %v", i, err)
		}
	}
}
