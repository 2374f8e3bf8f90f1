package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Fatal("empty cache reported a hit")
	}

	if err := c.Set(ctx, "layout:a", []byte(`{"root":{}}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != `{"root":{}}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry reported as hit")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("not json"), 0o644)

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	keep := filepath.Join(dir, "README")
	_ = os.WriteFile(keep, []byte("keep"), 0o644)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("Clear removed a file it does not own")
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q", c.Dir())
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	j2, _ := HashJSON(map[string]int{"a": 2})
	if j1 == j2 {
		t.Error("HashJSON ignored the value")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"root", "games"}})
	b := k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"games", "root"}})
	if a != b {
		t.Error("expanded order should not change the key")
	}
	if !strings.HasPrefix(a, "layout:") {
		t.Errorf("LayoutKey = %q", a)
	}

	variants := []struct {
		name string
		key  string
	}{
		{"tree", k.LayoutKey("tree2", LayoutKeyOpts{Expanded: []string{"root", "games"}})},
		{"expanded", k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"root"}})},
		{"mobile", k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"root", "games"}, Mobile: true})},
		{"viewport", k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"root", "games"}, ViewportWidth: 390})},
		{"config", k.LayoutKey("tree1", LayoutKeyOpts{Expanded: []string{"root", "games"}, ConfigHash: "x"})},
	}
	for _, v := range variants {
		if v.key == a {
			t.Errorf("changing %s did not change the key", v.name)
		}
	}

	if k.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}) == k.ArtifactKey("l", ArtifactKeyOpts{Format: "dot"}) {
		t.Error("artifact format should change the key")
	}
}

func TestDefaultKeyerDoesNotReorderInput(t *testing.T) {
	expanded := []string{"b", "a"}
	NewDefaultKeyer().LayoutKey("t", LayoutKeyOpts{Expanded: expanded})
	if expanded[0] != "b" {
		t.Error("LayoutKey sorted the caller's slice")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "mongo:portfolio:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if want := "mongo:portfolio:" + NewDefaultKeyer().LayoutKey("h", LayoutKeyOpts{}); key != want {
		t.Errorf("LayoutKey = %q, want %q", key, want)
	}
	if !strings.HasPrefix(scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}), "mongo:portfolio:artifact:") {
		t.Error("ArtifactKey not prefixed")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) || !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error lost its identity")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("plain error reported retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Initial: time.Millisecond}
	errPermanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, nil, 1, false},
		{"permanent error", 5, errPermanent, 1, true},
		{"recovers", 2, Retryable(ErrUnavailable), 3, false},
		{"exhausted", 5, Retryable(ErrUnavailable), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, fast, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, Backoff{Attempts: 3, Initial: time.Hour}, func() error {
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SYSTEMMAP_TEST_REDIS")
	if addr == "" {
		t.Skip("SYSTEMMAP_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: "systemmap-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Clear")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisOptions{
		Addr:    "127.0.0.1:1",
		Backoff: Backoff{Attempts: 1},
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
