package blitz

import (
	"github.com/tidwall/gjson"
)

// RushOptions describes a rush: a load test ramping concurrency against URL
// following Pattern. Zero values are omitted from the submitted payload.
type RushOptions struct {
	URL       string              `json:"url" yaml:"url"`
	Pattern   *Pattern            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Region    string              `json:"region,omitempty" yaml:"region,omitempty"`
	Referrer  string              `json:"referrer,omitempty" yaml:"referrer,omitempty"`
	Status    int                 `json:"status,omitempty" yaml:"status,omitempty"`
	Timeout   int                 `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Cookies   []string            `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Headers   []string            `json:"headers,omitempty" yaml:"headers,omitempty"`
	User      string              `json:"user,omitempty" yaml:"user,omitempty"`
	UserAgent string              `json:"user-agent,omitempty" yaml:"user-agent,omitempty"`
	Content   *Content            `json:"content,omitempty" yaml:"content,omitempty"`
	Follow    int                 `json:"follow,omitempty" yaml:"follow,omitempty"`
	Variables map[string]Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Pattern is the concurrency ramp of a rush.
type Pattern struct {
	Iterations int        `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Intervals  []Interval `json:"intervals" yaml:"intervals"`
}

// Interval ramps concurrency from Start to End over Duration seconds.
type Interval struct {
	Iterations int `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Start      int `json:"start" yaml:"start"`
	End        int `json:"end" yaml:"end"`
	Duration   int `json:"duration" yaml:"duration"`
}

// Content is the request body sent by every hit.
type Content struct {
	Data []string `json:"data" yaml:"data"`
}

// Variable feeds values into the rush URL, headers or content.
type Variable struct {
	Type    string   `json:"type" yaml:"type"`
	Entries []string `json:"entries,omitempty" yaml:"entries,omitempty"`
	Min     *int     `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *int     `json:"max,omitempty" yaml:"max,omitempty"`
	Length  *int     `json:"length,omitempty" yaml:"length,omitempty"`
}

// Point is one snapshot of a rush timeline. A nil field was not reported
// by the service.
type Point struct {
	Timestamp *float64 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Duration  *float64 `json:"duration,omitempty" yaml:"duration,omitempty"` // average response time
	Total     *float64 `json:"total,omitempty" yaml:"total,omitempty"`
	Hits      *float64 `json:"hits,omitempty" yaml:"hits,omitempty"`
	Errors    *float64 `json:"errors,omitempty" yaml:"errors,omitempty"`
	Timeouts  *float64 `json:"timeouts,omitempty" yaml:"timeouts,omitempty"`
	Volume    *float64 `json:"volume,omitempty" yaml:"volume,omitempty"` // concurrency
	TxBytes   *float64 `json:"txbytes,omitempty" yaml:"txbytes,omitempty"`
	RxBytes   *float64 `json:"rxbytes,omitempty" yaml:"rxbytes,omitempty"`
}

// Result is a rush result: the region it ran from and its timeline so far.
// Region is nil when the service sent none. Timeline is nil when the
// service sent no timeline, and empty but non-nil when it sent an empty one.
type Result struct {
	Region   *string `json:"region,omitempty" yaml:"region,omitempty"`
	Timeline []Point `json:"timeline" yaml:"timeline"`
}

// RegionName returns the region and whether the service reported one.
func (r *Result) RegionName() (string, bool) {
	if r.Region == nil {
		return "", false
	}
	return *r.Region, true
}

// HasTimeline reports whether the service sent a timeline.
func (r *Result) HasTimeline() bool {
	return r.Timeline != nil
}

// Last returns the most recent point, if any.
func (r *Result) Last() (Point, bool) {
	if len(r.Timeline) == 0 {
		return Point{}, false
	}
	return r.Timeline[len(r.Timeline)-1], true
}

// Rush is the load test job type.
type Rush struct {
	BaseJob
}

// NewRush creates a Runner for rushes.
func NewRush(client *Client, opts ...RunnerOption) *Runner[*Result] {
	return NewRunner[*Result](client, Rush{}, opts...)
}

// Validate runs the shared checks and additionally requires a valid url
// and a list of pattern.intervals.
func (Rush) Validate(options gjson.Result) []string {
	failed := Validate(options)

	if u := options.Get("url"); u.Type != gjson.String || !ValidateURL(u.String()) {
		failed = append(failed, "url")
	}
	if !ValidateList(options.Get("pattern.intervals")) {
		failed = append(failed, "pattern")
	}

	return failed
}

// ShapeResult maps a raw rush result onto Result.
func (Rush) ShapeResult(raw gjson.Result) *Result {
	return ParseResult(raw)
}

// ParseResult maps a raw rush result onto Result.
func ParseResult(raw gjson.Result) *Result {
	result := &Result{}
	if region := raw.Get("region"); region.Exists() {
		name := region.String()
		result.Region = &name
	}

	timeline := raw.Get("timeline")
	if !timeline.IsArray() {
		return result
	}
	result.Timeline = make([]Point, 0, len(timeline.Array()))
	timeline.ForEach(func(_, p gjson.Result) bool {
		result.Timeline = append(result.Timeline, parsePoint(p))
		return true
	})
	return result
}

func parsePoint(p gjson.Result) Point {
	return Point{
		Timestamp: number(p, "timestamp"),
		Duration:  number(p, "duration"),
		Total:     number(p, "total"),
		Hits:      number(p, "executed"),
		Errors:    number(p, "errors"),
		Timeouts:  number(p, "timeouts"),
		Volume:    number(p, "volume"),
		TxBytes:   number(p, "txbytes"),
		RxBytes:   number(p, "rxbytes"),
	}
}

// number reads a numeric field, returning nil when it is absent or not a
// number.
func number(p gjson.Result, key string) *float64 {
	v := p.Get(key)
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}
