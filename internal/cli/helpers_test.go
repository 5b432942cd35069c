package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeService answers the four blitz endpoints with canned bodies and
// records what it was sent.
type fakeService struct {
	mu       sync.Mutex
	login    string
	execute  string
	statuses []string
	abort    string

	submitted []string
	polled    int
	aborted   []string
}

func newFakeService() *fakeService {
	return &fakeService{
		login:   `{"ok":true,"api_key":"private-key"}`,
		execute: `{"ok":true,"job_id":"job-1","status":"queued"}`,
		statuses: []string{
			`{"status":"running","result":{"region":"oregon","timeline":[{"timestamp":1,"duration":0.1,"total":10,"executed":10,"errors":0,"timeouts":0,"volume":5}]}}`,
			`{"status":"completed","result":{"region":"oregon","timeline":[{"timestamp":1,"duration":0.1,"total":10,"executed":10,"errors":0,"timeouts":0,"volume":5},{"timestamp":2,"duration":0.2,"total":40,"executed":38,"errors":1,"timeouts":1,"volume":10}]}}`,
		},
		abort: `{"ok":true}`,
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/login/api":
		io.WriteString(w, f.login)
	case r.URL.Path == "/api/1/curl/execute":
		body, _ := io.ReadAll(r.Body)
		f.submitted = append(f.submitted, string(body))
		io.WriteString(w, f.execute)
	case strings.HasSuffix(r.URL.Path, "/status"):
		i := f.polled
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		f.polled++
		io.WriteString(w, f.statuses[i])
	case strings.HasSuffix(r.URL.Path, "/abort"):
		f.aborted = append(f.aborted, strings.Split(r.URL.Path, "/")[4])
		io.WriteString(w, f.abort)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) lastSubmitted() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submitted) == 0 {
		return ""
	}
	return f.submitted[len(f.submitted)-1]
}

func (f *fakeService) abortedJobs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.aborted...)
}

// runCLI executes the command tree against srv and returns its output.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	if srv != nil {
		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		args = append(args,
			"--host", u.Hostname(),
			"--port", u.Port(),
			"--user", "user@example.com",
			"--api-key", "api-key",
			"--poll-interval", "1ms",
			"--no-color",
		)
	}

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func startService(t *testing.T, configure ...func(*fakeService)) (*fakeService, *httptest.Server) {
	t.Helper()
	fake := newFakeService()
	for _, c := range configure {
		c(fake)
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}
