package completion_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petasbytes/rpg-agent/internal/provider"
)

type reply struct {
	status int
	body   string
}

type call struct {
	method string
	path   string
	header http.Header
	body   []byte
}

// fakeAPI answers requests by "METHOD /path" and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []call
}

func newFakeAPI(routes map[string]reply) *fakeAPI {
	return &fakeAPI{routes: routes}
}

func (f *fakeAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	var b []byte
	if req.Body != nil {
		b, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	f.mu.Lock()
	f.calls = append(f.calls, call{method: req.Method, path: req.URL.Path, header: req.Header.Clone(), body: b})
	r, ok := f.routes[req.Method+" "+req.URL.Path]
	f.mu.Unlock()
	if !ok {
		r = reply{status: http.StatusNotFound, body: `{"error":{"message":"no route"}}`}
	}
	resp := &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(r.body))),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func (f *fakeAPI) callsTo(method, path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func ok(body string) reply { return reply{status: http.StatusOK, body: body} }

func newOpenAIClient(rt http.RoundTripper) *openai.Client {
	return provider.NewOpenAIClient("test-key",
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithBaseURL("http://openai.test/v1/"),
		option.WithMaxRetries(0),
	)
}

func newAnthropicOptions(rt http.RoundTripper) []anthropicopt.RequestOption {
	return []anthropicopt.RequestOption{
		anthropicopt.WithHTTPClient(&http.Client{Transport: rt}),
		anthropicopt.WithBaseURL("http://anthropic.test/"),
		anthropicopt.WithMaxRetries(0),
	}
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid request body: %v\n%s", err, b)
	}
	return m
}
