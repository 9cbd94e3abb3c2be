package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/config"
	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/keyslot"
)

// setup starts miniredis and writes a configuration pointing at it.
func setup(t *testing.T, variant string) (*miniredis.Miniredis, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "funccache.yaml")
	content := fmt.Sprintf(`
cache:
  name: cli
  policy: lru
  variant: %s
redis:
  url: redis://%s/0
`, variant, mr.Addr())
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return mr, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// populate memoizes n distinct calls of fn through a cache built from path.
func populate(t *testing.T, path string, fn fingerprint.Identity, n int) {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	client, err := cfg.NewClient(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	c, err := cfg.NewCache(client, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range n {
		_, err := cache.Memoize(ctx, c, fn, []any{i}, nil, func(context.Context) (int, error) {
			return i * i, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "funccache dev\n") {
		t.Errorf("output = %q", out)
	}
}

func TestKeys(t *testing.T) {
	_, path := setup(t, "shared")
	out, err := execute(t, "--config", path, "keys")
	if err != nil {
		t.Fatalf("keys error = %v", err)
	}

	pair, err := keyslot.Derive(keyslot.DefaultPrefix, "cli", "lru", keyslot.Shared, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		fmt.Sprintf("index:   %s (slot %d)", pair.Index, keyslot.Slot(pair.Index)),
		fmt.Sprintf("values:  %s (slot %d)", pair.Values, keyslot.Slot(pair.Values)),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestKeys_PerFunctionRequiresFunc(t *testing.T) {
	_, path := setup(t, "per-function")
	if _, err := execute(t, "--config", path, "keys"); err == nil {
		t.Error("keys without --func should fail for a per-function variant")
	}
	if _, err := execute(t, "--config", path, "keys", "--func", "pkg.F"); err != nil {
		t.Errorf("keys --func error = %v", err)
	}
}

func TestSizeAndPurge(t *testing.T) {
	_, path := setup(t, "shared")
	populate(t, path, fingerprint.NewIdentity("pkg.Square", nil), 3)

	out, err := execute(t, "--config", path, "size")
	if err != nil {
		t.Fatalf("size error = %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("size = %q, want 3", out)
	}

	out, err = execute(t, "--config", path, "purge")
	if err != nil {
		t.Fatalf("purge error = %v", err)
	}
	if strings.TrimSpace(out) != "deleted 2 keys" {
		t.Errorf("purge output = %q", out)
	}

	out, err = execute(t, "--config", path, "size")
	if err != nil {
		t.Fatalf("size error = %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Errorf("size after purge = %q, want 0", out)
	}
}

func TestPurgeAll_PerFunction(t *testing.T) {
	mr, path := setup(t, "per-function")
	populate(t, path, fingerprint.NewIdentity("pkg.A", nil), 1)
	populate(t, path, fingerprint.NewIdentity("pkg.B", nil), 1)

	out, err := execute(t, "--config", path, "purge", "--all")
	if err != nil {
		t.Fatalf("purge --all error = %v", err)
	}
	if strings.TrimSpace(out) != "deleted 4 keys" {
		t.Errorf("purge output = %q", out)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("keys left = %v", keys)
	}
}

func TestFingerprint(t *testing.T) {
	_, path := setup(t, "shared")

	digest := func(args string) string {
		t.Helper()
		out, err := execute(t, "--config", path, "fingerprint", "--func", "pkg.F", "--args", args)
		if err != nil {
			t.Fatalf("fingerprint error = %v", err)
		}
		return strings.TrimSpace(out)
	}

	a, b, c := digest(`[1, "x"]`), digest(`[1, "x"]`), digest(`[2, "x"]`)
	if a == "" || a != b {
		t.Errorf("same arguments gave %q and %q", a, b)
	}
	if a == c {
		t.Error("different arguments gave the same fingerprint")
	}
	// md5 digest, hex encoded.
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
}

func TestFingerprint_Errors(t *testing.T) {
	_, path := setup(t, "shared")
	if _, err := execute(t, "--config", path, "fingerprint", "--args", "[1]"); err == nil {
		t.Error("missing --func should fail")
	}
	if _, err := execute(t, "--config", path, "fingerprint", "--func", "pkg.F", "--args", "[1"); err == nil {
		t.Error("malformed --args should fail")
	}
}

func TestHealth(t *testing.T) {
	_, path := setup(t, "shared")
	out, err := execute(t, "--config", path, "health")
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	var resp struct {
		Status string                     `json:"status"`
		Checks map[string]json.RawMessage `json:"checks"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Status == "unhealthy" {
		t.Errorf("status = %q", resp.Status)
	}
	for _, name := range []string{"redis", "circuit"} {
		if _, ok := resp.Checks[name]; !ok {
			t.Errorf("missing check %q", name)
		}
	}
}

func TestHealth_Unreachable(t *testing.T) {
	mr, path := setup(t, "shared")
	mr.Close()
	if _, err := execute(t, "--config", path, "health", "--timeout", "500ms"); err == nil {
		t.Error("health against a stopped server should fail")
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("FUNCCACHE_CACHE_POLICY", "arc")
	_, path := setup(t, "shared")
	if _, err := execute(t, "--config", path, "size"); err == nil {
		t.Error("invalid policy should fail")
	}
}

func TestServeMux(t *testing.T) {
	_, path := setup(t, "shared")
	t.Setenv("FUNCCACHE_OBSERVE_METRICS_ENABLED", "true")
	t.Setenv("FUNCCACHE_OBSERVE_METRICS_EXPORTER", "prometheus")
	t.Setenv("FUNCCACHE_SERVE_API_KEYS", "ops-key")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	a := &app{cfg: cfg}
	ctx := context.Background()
	if err := a.open(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.close(ctx) })

	authn, err := cfg.Authenticator(ctx, nil)
	if err != nil || authn == nil {
		t.Fatalf("Authenticator() = %v, %v", authn, err)
	}
	srv := httptest.NewServer(newServeMux(a, authn, time.Second))
	defer srv.Close()

	tests := []struct {
		path   string
		key    string
		status int
	}{
		{"/healthz", "", http.StatusOK},
		{"/readyz", "", http.StatusOK},
		{"/health", "", http.StatusUnauthorized},
		{"/health", "ops-key", http.StatusOK},
		{"/metrics", "", http.StatusUnauthorized},
		{"/metrics", "wrong", http.StatusUnauthorized},
		{"/metrics", "ops-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.key, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.key != "" {
				req.Header.Set("Authorization", "Bearer "+tt.key)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.status)
			}
		})
	}
}
