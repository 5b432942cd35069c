package blitz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var validRush = `{"url":"http://example.com","pattern":{"intervals":[["1m","1"]]}}`

func newTestRush(c *Client) *Runner[*Result] {
	return NewRush(c, WithPollInterval(time.Millisecond))
}

func collect() (*[]*Result, func(*Result)) {
	var results []*Result
	return &results, func(r *Result) { results = append(results, r) }
}

func TestRunner_ExecuteScenario(t *testing.T) {
	fake, c := startFake(t, func(f *fakeBlitz) {
		f.statusBodies = []string{
			`{"status":"running"}`,
			`{"status":"completed","result":{"region":"us-east","timeline":[{"timestamp":1,"duration":2}]}}`,
		}
	})
	runner := newTestRush(c)
	results, callback := collect()

	err := runner.Execute(context.Background(), validRush, callback)
	require.NoError(t, err)

	require.Len(t, *results, 1)
	result := (*results)[0]
	region, ok := result.RegionName()
	assert.True(t, ok)
	assert.Equal(t, "us-east", region)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, Point{Timestamp: floatPtr(1), Duration: floatPtr(2)}, result.Timeline[0])

	assert.Equal(t, "abc", runner.JobID())
	assert.Equal(t, StateCompleted, runner.State())
	assert.Equal(t, "private-key", c.PrivateKey())

	logins, executes, statusCalls, _ := fake.counts()
	assert.Equal(t, 1, logins)
	assert.Equal(t, 1, executes)
	assert.Equal(t, 2, statusCalls)
}

func TestRunner_OnQueued(t *testing.T) {
	fake, c := startFake(t)

	var queued []string
	runner := NewRush(c,
		WithPollInterval(time.Millisecond),
		WithOnQueued(func(jobID string) {
			_, _, statusCalls, _ := fake.counts()
			assert.Zero(t, statusCalls, "hook must run before polling")
			queued = append(queued, jobID)
		}),
	)

	require.NoError(t, runner.Execute(context.Background(), validRush, func(*Result) {}))
	assert.Equal(t, []string{"abc"}, queued)
}

func TestRunner_ExecuteTypedOptions(t *testing.T) {
	fake, c := startFake(t)
	runner := newTestRush(c)

	err := runner.Execute(context.Background(), RushOptions{
		URL:     "http://example.com",
		Pattern: &Pattern{Intervals: []Interval{{Start: 1, End: 10, Duration: 30}}},
		Region:  "oregon",
	}, func(*Result) {})
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	submitted := gjson.Parse(fake.submitted)
	assert.Equal(t, "oregon", submitted.Get("region").String())
	assert.Equal(t, int64(10), submitted.Get("pattern.intervals.0.end").Int())
}

func TestRunner_ExecuteMapOptions(t *testing.T) {
	_, c := startFake(t)
	runner := newTestRush(c)

	opts := map[string]interface{}{
		"url":     "http://example.com",
		"pattern": map[string]interface{}{"intervals": []interface{}{map[string]interface{}{"start": 1, "end": 2, "duration": 3}}},
		"cookies": "not-a-list",
		"status":  "abc",
	}
	err := runner.Execute(context.Background(), opts, func(*Result) {})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"status", "cookies"}, validationErr.Fields)
}

func TestRunner_ValidationFailsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		options string
		fields  []string
	}{
		{"missing url", `{"pattern":{"intervals":[]}}`, []string{"url"}},
		{"malformed url", `{"url":"nope","pattern":{"intervals":[]}}`, []string{"url"}},
		{"missing intervals", `{"url":"http://example.com","pattern":{}}`, []string{"pattern"}},
		{"intervals not a list", `{"url":"http://example.com","pattern":{"intervals":5}}`, []string{"pattern"}},
		{
			"many at once",
			`{"referrer":"x","status":"x","timeout":"x","cookies":1,"headers":1}`,
			[]string{"referrer", "status", "timeout", "cookies", "headers", "url", "pattern"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, c := startFake(t)
			runner := newTestRush(c)
			called := false

			err := runner.Execute(context.Background(), tt.options, func(*Result) { called = true })

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, KindValidation, validationErr.Kind())
			assert.Equal(t, tt.fields, validationErr.Fields)
			for _, f := range tt.fields {
				assert.True(t, validationErr.HasField(f))
			}
			assert.False(t, called)
			assert.Equal(t, StateFailed, runner.State())

			logins, executes, _, _ := fake.counts()
			assert.Zero(t, logins)
			assert.Zero(t, executes)
		})
	}
}

func TestRunner_InvalidOptionsDocument(t *testing.T) {
	_, c := startFake(t)
	runner := newTestRush(c)

	for _, opts := range []interface{}{`not json`, `[1,2]`, make(chan int)} {
		err := runner.Execute(context.Background(), opts, func(*Result) {})
		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, "Invalid options", clientErr.Reason())
	}
}

func TestRunner_AuthenticatesOnce(t *testing.T) {
	fake, c := startFake(t)
	runner := newTestRush(c)

	require.NoError(t, runner.Execute(context.Background(), validRush, func(*Result) {}))
	require.NoError(t, runner.JobStatus(context.Background(), func(*Result) {}))
	require.NoError(t, runner.Execute(context.Background(), validRush, func(*Result) {}))

	other := newTestRush(c)
	other.Attach("abc")
	require.NoError(t, other.JobStatus(context.Background(), func(*Result) {}))

	logins, executes, statusCalls, _ := fake.counts()
	assert.Equal(t, 1, logins)
	assert.Equal(t, 2, executes)
	assert.Equal(t, 4, statusCalls)
}

func TestRunner_PendingStatusesSkipCallback(t *testing.T) {
	fake, c := startFake(t, func(f *fakeBlitz) {
		f.statusBodies = []string{
			`{"status":"queued"}`,
			`{"status":"queued","result":{"region":"x"}}`,
			`{"status":"running"}`,
			`{"status":"running","result":{"region":"us-west","timeline":[{"timestamp":1}]}}`,
			`{"status":"running","result":{"region":"us-west","timeline":[{"timestamp":1},{"timestamp":2}]}}`,
			`{"status":"completed","result":{"region":"us-west","timeline":[{"timestamp":1},{"timestamp":2},{"timestamp":3}]}}`,
		}
	})
	runner := newTestRush(c)
	results, callback := collect()

	require.NoError(t, runner.Execute(context.Background(), validRush, callback))

	require.Len(t, *results, 3)
	assert.Len(t, (*results)[0].Timeline, 1)
	assert.Len(t, (*results)[1].Timeline, 2)
	assert.Len(t, (*results)[2].Timeline, 3)

	_, _, statusCalls, _ := fake.counts()
	assert.Equal(t, 6, statusCalls)
}

func TestRunner_PollFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantKind   string
		wantReason string
		server     bool
	}{
		{"no response", ``, KindClient, "No response", false},
		{"null response", `null`, KindClient, "No response", false},
		{"missing status", `{"result":{}}`, KindClient, "Wrong response format", false},
		{"error without status", `{"error":"throttle","reason":"Too many requests"}`, KindClient, "Wrong response format", false},
		{"top level error with status", `{"status":"running","error":"dns","reason":"Unable to resolve"}`, "dns", "Unable to resolve", true},
		{"result error", `{"status":"running","result":{"error":"connect","reason":"Connection refused"}}`, "connect", "Connection refused", true},
		{"result error on completion", `{"status":"completed","result":{"error":"timeout","reason":"Too slow"}}`, "timeout", "Too slow", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, c := startFake(t, func(f *fakeBlitz) {
				f.statusBodies = []string{tt.body}
			})
			runner := newTestRush(c)
			called := false

			err := runner.Execute(context.Background(), validRush, func(*Result) { called = true })
			require.Error(t, err)

			var blitzErr Error
			require.ErrorAs(t, err, &blitzErr)
			assert.Equal(t, tt.wantKind, blitzErr.Kind())
			assert.Equal(t, tt.wantReason, blitzErr.Reason())

			var serverErr *ServerError
			assert.Equal(t, tt.server, errors.As(err, &serverErr))

			assert.False(t, called)
			assert.Equal(t, StateFailed, runner.State())

			_, _, statusCalls, _ := fake.counts()
			assert.Equal(t, 1, statusCalls)
		})
	}
}

func TestRunner_SubmitFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantKind   string
		wantReason string
	}{
		{"no response", ``, KindClient, "No response"},
		{"server error", `{"error":"login","reason":"Invalid credentials"}`, "login", "Invalid credentials"},
		{"missing job id", `{"ok":true}`, KindClient, "Wrong response format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, c := startFake(t, func(f *fakeBlitz) {
				f.executeBody = tt.body
			})
			runner := newTestRush(c)

			err := runner.Execute(context.Background(), validRush, func(*Result) {})

			var blitzErr Error
			require.ErrorAs(t, err, &blitzErr)
			assert.Equal(t, tt.wantKind, blitzErr.Kind())
			assert.Equal(t, tt.wantReason, blitzErr.Reason())
			assert.Equal(t, "", runner.JobID())

			_, _, statusCalls, _ := fake.counts()
			assert.Zero(t, statusCalls)
		})
	}
}

func TestRunner_LoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantKind   string
		wantReason string
	}{
		{"no response", `null`, KindClient, "No response"},
		{"server error", `{"error":"login","reason":"Bad API key"}`, "login", "Bad API key"},
		{"missing key", `{"ok":true}`, KindClient, "Wrong response format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, c := startFake(t, func(f *fakeBlitz) {
				f.loginBody = tt.body
			})
			runner := newTestRush(c)

			err := runner.Execute(context.Background(), validRush, func(*Result) {})

			var blitzErr Error
			require.ErrorAs(t, err, &blitzErr)
			assert.Equal(t, tt.wantKind, blitzErr.Kind())
			assert.Equal(t, tt.wantReason, blitzErr.Reason())
			assert.Equal(t, "", c.PrivateKey())

			_, executes, _, _ := fake.counts()
			assert.Zero(t, executes)
		})
	}
}

func TestRunner_JobStatusWithoutJob(t *testing.T) {
	fake, c := startFake(t)
	runner := newTestRush(c)

	err := runner.JobStatus(context.Background(), func(*Result) {})

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, "No job", clientErr.Reason())

	logins, _, statusCalls, _ := fake.counts()
	assert.Zero(t, logins)
	assert.Zero(t, statusCalls)
}

func TestRunner_ContextCancelStopsPolling(t *testing.T) {
	_, c := startFake(t, func(f *fakeBlitz) {
		f.statusBodies = []string{`{"status":"queued"}`}
	})
	runner := newTestRush(c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := runner.Execute(ctx, validRush, func(*Result) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateFailed, runner.State())
}

func TestRunner_AbortWhilePolling(t *testing.T) {
	fake, c := startFake(t, func(f *fakeBlitz) {
		f.statusBodies = []string{`{"status":"queued"}`}
	})
	runner := newTestRush(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = runner.Execute(ctx, validRush, func(*Result) {})
	}()

	require.Eventually(t, func() bool {
		_, _, statusCalls, _ := fake.counts()
		return statusCalls > 0
	}, 2*time.Second, time.Millisecond)

	runner.Abort(context.Background())
	cancel()
	wg.Wait()

	_, _, _, aborts := fake.counts()
	assert.Equal(t, 1, aborts)
}

func TestRunner_AbortSwallowsErrors(t *testing.T) {
	fake, c := startFake(t, func(f *fakeBlitz) {
		f.abortBody = `<html>oops</html>`
	})
	runner := newTestRush(c)
	runner.Attach("abc")

	assert.NotPanics(t, func() { runner.Abort(context.Background()) })

	_, _, _, aborts := fake.counts()
	assert.Equal(t, 1, aborts)
}

func TestRunner_AbortWithoutJob(t *testing.T) {
	fake, c := startFake(t)
	runner := newTestRush(c)

	runner.Abort(context.Background())

	_, _, _, aborts := fake.counts()
	assert.Zero(t, aborts)
}

func TestBaseJob_PassesResultThrough(t *testing.T) {
	_, c := startFake(t, func(f *fakeBlitz) {
		f.statusBodies = []string{`{"status":"completed","result":{"custom":7}}`}
	})
	runner := NewRunner[gjson.Result](c, BaseJob{}, WithPollInterval(time.Millisecond))

	var got gjson.Result
	err := runner.Execute(context.Background(), `{"status":200}`, func(r gjson.Result) { got = r })
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Get("custom").Int())

	err = runner.Execute(context.Background(), `{"status":"two hundred"}`, func(gjson.Result) {})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"status"}, validationErr.Fields)
}

func TestServerErrorFrom(t *testing.T) {
	assert.NoError(t, ServerErrorFrom(gjson.Parse(`{"ok":true}`)))
	assert.NoError(t, ServerErrorFrom(gjson.Result{}))
	assert.NoError(t, ServerErrorFrom(gjson.Parse(`["error"]`)))

	err := ServerErrorFrom(gjson.Parse(`{"error":"throttle","reason":"Too many requests"}`))
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "throttle", serverErr.Kind())
	assert.Equal(t, "Too many requests", serverErr.Reason())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}
