package blitz

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBlitz plays the remote service. Status bodies are served in order and
// the last one repeats.
type fakeBlitz struct {
	mu sync.Mutex

	loginBody    string
	executeBody  string
	statusBodies []string
	abortBody    string

	logins      int
	executes    int
	statusCalls int
	aborts      int
	submitted   string
	keys        []string
	users       []string
	clientTags  []string
}

func newFakeBlitz() *fakeBlitz {
	return &fakeBlitz{
		loginBody:   `{"ok":true,"api_key":"private-key"}`,
		executeBody: `{"ok":true,"job_id":"abc"}`,
		statusBodies: []string{
			`{"status":"completed","result":{"region":"us-east","timeline":[]}}`,
		},
		abortBody: `{"ok":true}`,
	}
}

func (f *fakeBlitz) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys = append(f.keys, r.Header.Get("X-API-Key"))
	f.users = append(f.users, r.Header.Get("X-API-User"))
	f.clientTags = append(f.clientTags, r.Header.Get("X-API-Client"))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/login/api":
		f.logins++
		io.WriteString(w, f.loginBody)
	case r.Method == http.MethodPost && r.URL.Path == "/api/1/curl/execute":
		f.executes++
		body, _ := io.ReadAll(r.Body)
		f.submitted = string(body)
		io.WriteString(w, f.executeBody)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/status"):
		idx := f.statusCalls
		if idx >= len(f.statusBodies) {
			idx = len(f.statusBodies) - 1
		}
		f.statusCalls++
		io.WriteString(w, f.statusBodies[idx])
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/abort"):
		f.aborts++
		io.WriteString(w, f.abortBody)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"not_found","reason":"`+r.Method+` `+r.URL.Path+`"}`)
	}
}

func (f *fakeBlitz) counts() (logins, executes, statusCalls, aborts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.executes, f.statusCalls, f.aborts
}

// newTestClient points a Client at srv.
func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	opts = append([]ClientOption{WithHost(host), WithPort(port), WithTimeout(5 * time.Second)}, opts...)
	return NewClient("user@example.com", "api-key", opts...)
}

// startFake starts a fake service, applying configure before it accepts
// requests.
func startFake(t *testing.T, configure ...func(*fakeBlitz)) (*fakeBlitz, *Client) {
	t.Helper()
	fake := newFakeBlitz()
	for _, fn := range configure {
		fn(fake)
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, newTestClient(t, srv)
}

func floatPtr(f float64) *float64 {
	return &f
}
