package httpserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/jsonkv-go/internal/storage/memory"
)

func newTestRouter(t *testing.T, cfg RouterConfig) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	cfg.Executor = service.NewKVService(store)
	srv := httptest.NewServer(NewRouter(&cfg))
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func envelopeCode(t *testing.T, b []byte) string {
	t.Helper()
	var env handler.Response
	require.NoError(t, json.Unmarshal(b, &env))
	return env.Code
}

func TestRouter_Scenario(t *testing.T) {
	srv, _ := newTestRouter(t, RouterConfig{})

	resp, _ := do(t, http.MethodPost, srv.URL+"/foo", `{"a":1}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/foo", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"a":1}`, string(body))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/foo", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/foo", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RejectedPostLeavesValue(t *testing.T) {
	srv, store := newTestRouter(t, RouterConfig{})

	resp, _ := do(t, http.MethodPost, srv.URL+"/k", `{"keep":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, body := range []string{`[1]`, `"s"`, `7`, `null`, `{bad`, `{"a":01}`, "\u00a0{}"} {
		resp, b := do(t, http.MethodPost, srv.URL+"/k", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, []string{"KV-VAL-4001", "KV-VAL-4002"}, envelopeCode(t, b))
	}

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, `{"keep":1}`, got.String())
}

func TestRouter_UnknownRoutesAndVerbs(t *testing.T) {
	srv, _ := newTestRouter(t, RouterConfig{})

	tests := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/", http.StatusBadRequest, "KV-REQ-4000"},
		{http.MethodPost, "/", http.StatusBadRequest, "KV-REQ-4000"},
		{http.MethodGet, "/a/b", http.StatusBadRequest, "KV-REQ-4000"},
		{http.MethodPut, "/k", http.StatusMethodNotAllowed, "KV-REQ-4050"},
		{http.MethodPatch, "/k", http.StatusMethodNotAllowed, "KV-REQ-4050"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, b := do(t, tt.method, srv.URL+tt.path, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, envelopeCode(t, b))
			assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
		})
	}
}

func TestRouter_EncodedSlashInKey(t *testing.T) {
	srv, store := newTestRouter(t, RouterConfig{})

	resp, _ := do(t, http.MethodPost, srv.URL+"/dir%2Ffile", `{"x":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := store.Get("dir/file")
	assert.True(t, ok)
}

func TestRouter_BodyLimit(t *testing.T) {
	srv, _ := newTestRouter(t, RouterConfig{MaxBodyBytes: 32})

	big := `{"v":"` + strings.Repeat("x", 64) + `"}`
	resp, b := do(t, http.MethodPost, srv.URL+"/k", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "KV-REQ-4130", envelopeCode(t, b))
}

func TestRouter_RateLimit(t *testing.T) {
	srv, _ := newTestRouter(t, RouterConfig{RateLimit: 2})

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		resp, _ := do(t, http.MethodGet, srv.URL+"/k", "")
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{404, 404, 429, 429}, statuses)
}

func TestRouter_ConcurrentWriters(t *testing.T) {
	srv, store := newTestRouter(t, RouterConfig{})

	values := []string{`{"w":"aaaaaaaaaaaaaaaa"}`, `{"w":"bbbbbbbbbbbbbbbb","n":[1,2,3]}`}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/shared", bytes.NewBufferString(values[i%2]))
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				_ = resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	got, ok := store.Get("shared")
	require.True(t, ok)
	assert.Contains(t, values, got.String(), "value must be one complete write")
	assert.Equal(t, 1, store.Len())
}

func ExampleNewRouter() {
	store := memory.New()
	srv := httptest.NewServer(NewRouter(&RouterConfig{Executor: service.NewKVService(store)}))
	defer srv.Close()

	resp, _ := http.Post(srv.URL+"/greeting", "application/json", strings.NewReader(`{"hello": "world"}`))
	resp.Body.Close()

	resp, _ = http.Get(srv.URL + "/greeting")
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	fmt.Println(resp.StatusCode, string(b))
	// Output: 200 {"hello":"world"}
}
