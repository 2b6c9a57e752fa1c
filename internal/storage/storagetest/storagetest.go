// Package storagetest holds the behaviour every storage.Provider backend must share.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/julianstephens/detoxscan/internal/storage"
)

// Factory returns a freshly initialized, empty provider.
type Factory func(t *testing.T) storage.Provider

// Run exercises the provider contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		v, found, err := s.Get(context.Background(), "missing")
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}
		if found || v != "" {
			t.Errorf("Get() = (%q, %v), want (\"\", false)", v, found)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Set(ctx, "k", `{"a":1}`); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if err := s.Set(ctx, "k", `{"a":2}`); err != nil {
			t.Fatalf("Set() overwrite failed: %v", err)
		}
		v, found, err := s.Get(ctx, "k")
		if err != nil || !found {
			t.Fatalf("Get() = (%q, %v, %v)", v, found, err)
		}
		if v != `{"a":2}` {
			t.Errorf("Get() = %q, want %q", v, `{"a":2}`)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, found, _ := s.Get(ctx, "k"); found {
			t.Error("key still present after Delete()")
		}
		if err := s.Delete(ctx, "never-set"); err != nil {
			t.Errorf("Delete() of absent key should succeed, got %v", err)
		}
	})

	t.Run("update sees current value", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
			if found {
				t.Errorf("first Update saw found=true with %q", cur)
			}
			return "1", nil
		})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		err = s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
			if !found || cur != "1" {
				t.Errorf("second Update saw (%q, %v), want (\"1\", true)", cur, found)
			}
			return "2", nil
		})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		if v, _, _ := s.Get(ctx, "counter"); v != "2" {
			t.Errorf("Get() after Update = %q, want 2", v)
		}
	})

	t.Run("update error writes nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Set(ctx, "k", "before"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		boom := errors.New("boom")
		err := s.Update(ctx, "k", func(string, bool) (string, error) {
			return "after", boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("Update() error = %v, want %v", err, boom)
		}
		if v, _, _ := s.Get(ctx, "k"); v != "before" {
			t.Errorf("value changed to %q after failed Update", v)
		}
	})

	t.Run("concurrent updates do not lose writes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const workers = 8

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
					n := 0
					if found {
						if _, err := fmt.Sscanf(cur, "%d", &n); err != nil {
							return "", err
						}
					}
					return fmt.Sprintf("%d", n+1), nil
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent Update() failed: %v", err)
			}
		}

		if v, _, _ := s.Get(ctx, "counter"); v != fmt.Sprintf("%d", workers) {
			t.Errorf("counter = %s, want %d", v, workers)
		}
	})

	t.Run("keys sorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, k := range []string{"b", "a", "c"} {
			if err := s.Set(ctx, k, k); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
		}
		keys, err := s.Keys(ctx)
		if err != nil {
			t.Fatalf("Keys() failed: %v", err)
		}
		if fmt.Sprint(keys) != "[a b c]" {
			t.Errorf("Keys() = %v, want [a b c]", keys)
		}
	})
}
