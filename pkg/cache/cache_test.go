package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()

	newCache := func(t *testing.T) Cache {
		t.Helper()
		c, err := NewFileCache(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileCache error: %v", err)
		}
		t.Cleanup(func() { c.Close() })
		return c
	}

	t.Run("RoundTrip", func(t *testing.T) {
		c := newCache(t)
		if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		data, hit, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if !hit || string(data) != "value" {
			t.Errorf("Get = %q, %v; want value, true", data, hit)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		c := newCache(t)
		_, hit, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if hit {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		c := newCache(t)
		if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		time.Sleep(time.Millisecond)
		_, hit, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if hit {
			t.Error("expired entry should be a miss")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := newCache(t)
		if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if err := c.Delete(ctx, "key"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "key"); hit {
			t.Error("deleted key should be a miss")
		}
		// Deleting again is fine.
		if err := c.Delete(ctx, "key"); err != nil {
			t.Errorf("second Delete error: %v", err)
		}
	})

	t.Run("CorruptEntryIsMiss", func(t *testing.T) {
		dir := t.TempDir()
		c, err := NewFileCache(dir)
		if err != nil {
			t.Fatalf("NewFileCache error: %v", err)
		}
		defer c.Close()

		if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		path := c.(*FileCache).path("key")
		if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
			t.Fatalf("corrupting entry: %v", err)
		}
		if _, hit, err := c.Get(ctx, "key"); err != nil || hit {
			t.Errorf("corrupt entry should be a clean miss, got hit=%v err=%v", hit, err)
		}
	})
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// NetworkKey should include input hashes and build options
	nk1 := k.NetworkKey("people1", "contacts1", NetworkKeyOpts{MembershipColumns: []string{"team"}})
	nk2 := k.NetworkKey("people1", "contacts1", NetworkKeyOpts{MembershipColumns: []string{"office"}})
	nk3 := k.NetworkKey("people2", "contacts1", NetworkKeyOpts{MembershipColumns: []string{"team"}})
	if nk1 == nk2 {
		t.Error("Different membership columns should produce different keys")
	}
	if nk1 == nk3 {
		t.Error("Different input hashes should produce different keys")
	}
	if !strings.HasPrefix(nk1, "network:") {
		t.Errorf("NetworkKey should carry the stage prefix: %s", nk1)
	}

	// LayoutKey
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Seed: 1, Iterations: 150})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Seed: 2, Iterations: 150})
	if lk1 == lk2 {
		t.Error("Different seeds should produce different keys")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey should carry the stage prefix: %s", lk1)
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "html", Width: 1500})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Width: 1500})
	if ak1 == ak2 {
		t.Error("Different formats should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:") {
		t.Errorf("ArtifactKey should carry the stage prefix: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "ward7:")

	key := scoped.NetworkKey("p", "c", NetworkKeyOpts{})
	if !strings.HasPrefix(key, "ward7:network:") {
		t.Errorf("ScopedKeyer NetworkKey should be prefixed: %s", key)
	}
	if strings.TrimPrefix(key, "ward7:") != inner.NetworkKey("p", "c", NetworkKeyOpts{}) {
		t.Error("ScopedKeyer should delegate to the inner keyer")
	}

	layoutKey := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(layoutKey, "ward7:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}

	artifactKey := scoped.ArtifactKey("h", ArtifactKeyOpts{})
	if !strings.HasPrefix(artifactKey, "ward7:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", artifactKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "prefix:layout:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(errors.New("plain")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	plain := errors.New("permanent")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return plain
	})
	if err != plain {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
