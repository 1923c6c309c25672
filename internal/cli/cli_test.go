package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/popgraph/pkg/config"
	"github.com/matzehuels/popgraph/pkg/errors"
)

var payloads = map[string]string{
	"/v3/products.json": `{
  "status": 200,
  "results": {"products": {"product": [
    {"id": 1, "name": "Widget", "category": 10, "brand": 20, "offers": {"offer": [
      {"id": 100, "name": "Widget, blue", "merchant": 5},
      {"id": 101, "name": "Widget, red", "merchant": 6}
    ]}},
    {"id": 2, "name": "Gizmo", "offers": {"offer": {"id": 102, "name": "Gizmo", "merchant": 5}}}
  ]}},
  "resources": {
    "merchants": {"merchant": [{"id": 5, "name": "Acme"}]},
    "brands": {"brand": [{"id": 20, "name": "Brandix"}]},
    "categories": {"matches": {"category": [{"id": 10, "name": "Tools"}]}}
  }
}`,
	"/v3/merchants.json": `{
  "status": "200",
  "results": {
    "merchants": {"merchant": [{"id": 5, "name": "Acme", "country": "us", "merchant_type": 1}]},
    "deals": {"deal": [{"id": 50, "name": "Half off", "merchant": 5, "deal_type": "3,7"}]}
  },
  "resources": {
    "countries": {"country": [{"id": "us", "name": "United States"}]},
    "merchant_types": {"merchant_type": [{"id": 1, "name": "Online"}]},
    "deal_types": {"deal_type": [{"id": 3, "name": "Sale"}]}
  }
}`,
	"/v3/deals.json": `{
  "status": 200,
  "results": {"deals": {"deal": [{"id": 50, "name": "Half off", "merchant": 5, "deal_type": "3,7"}]}},
  "resources": {
    "merchants": {"merchant": [{"id": 5, "name": "Acme"}]},
    "deal_types": {"deal_type": [{"id": 3, "name": "Sale"}, {"id": 7, "name": "Coupon"}]}
  }
}`,
}

type fakeAPI struct {
	*httptest.Server
	hits  atomic.Int32
	query atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		api.query.Store(r.URL.RawQuery)
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) lastQuery() string {
	s, _ := a.query.Load().(string)
	return s
}

// isolateEnv keeps the user's config file and environment out of tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{config.EnvAccount, config.EnvCatalog, config.EnvBaseURL, config.EnvCache, config.EnvRedisAddr, config.EnvRedisDB} {
		t.Setenv(k, "")
	}
}

// execute runs the CLI with args plus credentials for api and returns stdout.
func execute(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)

	args = append(args, "--account", "acct", "--catalog", "cat")
	if api != nil {
		args = append(args, "--base-url", api.URL+"/v3")
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    string
		wantErr bool
	}{
		{"empty", nil, "", false},
		{"single", []string{"keyword=ipad case"}, "keyword=ipad+case", false},
		{"repeated", []string{"deal_type=3", "deal_type=7"}, "deal_type=3&deal_type=7", false},
		{"empty value", []string{"keyword="}, "keyword=", false},
		{"value with equals", []string{"q=a=b"}, "q=a%3Db", false},
		{"missing equals", []string{"keyword"}, "", true},
		{"empty key", []string{"=x"}, "", true},
		{"bad key", []string{"key word=x"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("parseParams() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseParams() error: %v", err)
			}
			if got.Encode() != tt.want {
				t.Errorf("parseParams() = %q, want %q", got.Encode(), tt.want)
			}
		})
	}
}

func TestGetProducts(t *testing.T) {
	api := newFakeAPI(t)
	out, err := execute(t, api, "get", "products", "-p", "keyword=widget")
	if err != nil {
		t.Fatalf("get products: %v", err)
	}
	assertContains(t, out,
		"Tools", "Widget", "Widget, blue", "Acme",
		"missing merchant 6", "Uncategorized", "Gizmo",
		"2 products", "3 offers", "fresh",
	)
	if !strings.Contains(api.lastQuery(), "keyword=widget") {
		t.Errorf("query = %q, want keyword forwarded", api.lastQuery())
	}
	if strings.Index(out, "Tools") > strings.Index(out, "Uncategorized") {
		t.Error("categories should appear in order of first product")
	}
}

func TestGetMerchants(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "get", "merchants")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Acme", "United States", "Online", "Half off")
}

func TestGetDeals(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "get", "deals")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Half off", "Acme", "Sale, Coupon")
}

func TestGetSortAscending(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "get", "products", "--sort", "name", "--asc")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "Gizmo") > strings.Index(out, "Widget") {
		t.Errorf("Gizmo should come before Widget:\n%s", out)
	}
}

func TestGetInvalidCallKind(t *testing.T) {
	_, err := execute(t, newFakeAPI(t), "get", "brands")
	if !errors.Is(err, errors.ErrCodeInvalidCallKind) {
		t.Errorf("error = %v, want INVALID_CALL_KIND", err)
	}
}

func TestGetMissingCredentials(t *testing.T) {
	isolateEnv(t)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"get", "products"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("get without credentials should fail")
	}
}

func TestGetUpstreamFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 401, "message": "bad account"}`))
	}))
	defer api.Close()

	isolateEnv(t)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"get", "products", "--account", "a", "--catalog", "c", "--base-url", api.URL})
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, errors.ErrCodeUpstreamStatus) {
		t.Errorf("error = %v, want UPSTREAM_STATUS", err)
	}
}

func TestList(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "list", "products")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "id", "name", "brand", "category", "Widget", "Gizmo", "2 products")

	out, err = execute(t, newFakeAPI(t), "list", "products", "brand")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Brandix", "1 brands")

	out, err = execute(t, newFakeAPI(t), "list", "products", "countries")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "no countries")
}

func TestListColumns(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "list", "merchants", "--columns", "name,country")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "country", "us", "Acme")
	if strings.Contains(out, "merchant_type") {
		t.Errorf("unrequested column rendered:\n%s", out)
	}
}

func TestListInvalidKind(t *testing.T) {
	_, err := execute(t, newFakeAPI(t), "list", "products", "widgets")
	if !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("error = %v, want INVALID_KIND", err)
	}
}

func TestShow(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "show", "products", "product", "1")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "product Widget", "offers (2)", "Widget, red", "category (1)", "Tools", "brand (1)", "Brandix")
}

func TestShowMissing(t *testing.T) {
	_, err := execute(t, newFakeAPI(t), "show", "products", "product", "99")
	if !errors.Is(err, errors.ErrCodeEntityNotFound) {
		t.Errorf("error = %v, want ENTITY_NOT_FOUND", err)
	}
}

func TestGraphDOT(t *testing.T) {
	out, err := execute(t, newFakeAPI(t), "graph", "products", "--format", "dot", "--kinds", "products,offers")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "digraph G {", `"products:1" -> "offers:100"`)
	if strings.Contains(out, `"categories:10"`) {
		t.Error("excluded kind rendered")
	}
}

func TestGraphToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.dot")
	if _, err := execute(t, newFakeAPI(t), "graph", "deals", "-f", "dot", "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, string(data), `"deals:50" -> "deal_types:3"`)
}

func TestGraphBadOptions(t *testing.T) {
	api := newFakeAPI(t)
	if _, err := execute(t, api, "graph", "products", "--format", "png"); err == nil {
		t.Error("png format should be rejected")
	}
	if _, err := execute(t, api, "graph", "products", "--kinds", "widgets"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("error = %v, want INVALID_KIND", err)
	}
	if api.hits.Load() != 0 {
		t.Error("invalid options should be rejected before calling the API")
	}
}

func TestFileCacheBackend(t *testing.T) {
	api := newFakeAPI(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	body := "[cache]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(dir) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := execute(t, api, "get", "products", "--config", cfgPath); err != nil {
			t.Fatal(err)
		}
	}
	if api.hits.Load() != 1 {
		t.Errorf("API hits = %d, want 1 (second run cached)", api.hits.Load())
	}

	out, err := execute(t, api, "get", "products", "--config", cfgPath, "--refresh")
	if err != nil {
		t.Fatal(err)
	}
	if api.hits.Load() != 2 {
		t.Errorf("API hits = %d, want 2 after --refresh", api.hits.Load())
	}
	assertContains(t, out, "fresh")

	if _, err := execute(t, api, "get", "products", "--config", cfgPath, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if api.hits.Load() != 3 {
		t.Errorf("API hits = %d, want 3 with --no-cache", api.hits.Load())
	}

	out, err = execute(t, nil, "cache", "path", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	if _, err := execute(t, nil, "cache", "clear", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}
	entries, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"memcached\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, nil, "cache", "path", "--config", cfgPath)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}
