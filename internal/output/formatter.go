package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// Formatter renders rush progress as human readable text
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatQueued announces a queued job.
func (f *Formatter) FormatQueued(jobID string) string {
	return fmt.Sprintf("%s job %s queued\n", InfoIcon(f.NoColor), f.colors.Highlight.Sprint(jobID))
}

// FormatAborted confirms an abort request.
func (f *Formatter) FormatAborted(jobID string) string {
	return fmt.Sprintf("%s job %s aborted\n", SuccessIcon(f.NoColor), f.colors.Highlight.Sprint(jobID))
}

// FormatResult renders the latest point of a result, or every point when
// verbose.
func (f *Formatter) FormatResult(result *blitz.Result) string {
	var buf strings.Builder

	region, ok := result.RegionName()
	if !ok {
		region = "?"
	}

	if !result.HasTimeline() || len(result.Timeline) == 0 {
		buf.WriteString(fmt.Sprintf("▶ [%s] waiting for data\n", f.colors.Region.Sprint(region)))
		return buf.String()
	}

	points := result.Timeline
	if !f.Verbose {
		points = points[len(points)-1:]
	}
	for _, p := range points {
		buf.WriteString(fmt.Sprintf("▶ [%s] %s\n", f.colors.Region.Sprint(region), f.formatPoint(p)))
	}

	return buf.String()
}

func (f *Formatter) formatPoint(p blitz.Point) string {
	fields := []string{
		f.field("t", p.Timestamp, "s"),
		f.field("volume", p.Volume, ""),
		f.field("hits", p.Hits, ""),
		f.colored(f.colors.Errors, "errors", p.Errors),
		f.colored(f.colors.Timeouts, "timeouts", p.Timeouts),
		f.millis("duration", p.Duration),
	}
	if f.Verbose {
		fields = append(fields,
			f.field("total", p.Total, ""),
			f.field("tx", p.TxBytes, "B"),
			f.field("rx", p.RxBytes, "B"),
		)
	}
	return strings.Join(fields, " ")
}

func (f *Formatter) field(label string, v *float64, unit string) string {
	if v == nil {
		return f.colors.Label.Sprint(label+"=") + f.colors.Unknown.Sprint("?")
	}
	return f.colors.Label.Sprint(label+"=") + f.colors.Value.Sprint(formatNumber(*v)+unit)
}

func (f *Formatter) colored(c interface{ Sprint(...interface{}) string }, label string, v *float64) string {
	if v == nil || *v == 0 {
		return f.field(label, v, "")
	}
	return f.colors.Label.Sprint(label+"=") + c.Sprint(formatNumber(*v))
}

func (f *Formatter) millis(label string, seconds *float64) string {
	if seconds == nil {
		return f.field(label, nil, "")
	}
	ms := *seconds * 1000
	return f.field(label, &ms, "ms")
}

// FormatSummary renders the end of run summary.
func (f *Formatter) FormatSummary(s Summary) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("%s rush completed", SuccessIcon(f.NoColor)))
	if s.Region != "" {
		buf.WriteString(" in " + f.colors.Region.Sprint(s.Region))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("  Elapsed:     %ss over %d points\n", formatNumber(s.Elapsed), s.Points))
	buf.WriteString(fmt.Sprintf("  Hits:        %d of %d (%.2f%%)\n", s.Hits, s.Total, s.HitRate()*100))
	buf.WriteString(fmt.Sprintf("  Errors:      %s\n", f.colors.Errors.Sprint(s.Errors)))
	buf.WriteString(fmt.Sprintf("  Timeouts:    %s\n", f.colors.Timeouts.Sprint(s.Timeouts)))
	buf.WriteString(fmt.Sprintf("  Peak volume: %d\n", s.PeakVolume))
	if f.Verbose {
		buf.WriteString(fmt.Sprintf("  Bytes:       tx %d, rx %d\n", s.TxBytes, s.RxBytes))
	}
	if s.Duration.Count > 0 {
		buf.WriteString(fmt.Sprintf("  Duration:    p50 %dms, p90 %dms, p99 %dms (min %dms, max %dms)\n",
			s.Duration.P50.Milliseconds(), s.Duration.P90.Milliseconds(), s.Duration.P99.Milliseconds(),
			s.Duration.Min.Milliseconds(), s.Duration.Max.Milliseconds()))
	}

	return buf.String()
}

// FormatError renders a failure, naming every invalid field of a
// validation error.
func (f *Formatter) FormatError(err error) string {
	var validationErr *blitz.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("%s %s invalid options: %s\n", ErrorIcon(f.NoColor),
			f.colors.Error.Sprint("validation"), strings.Join(validationErr.Fields, ", "))
	}

	var blitzErr blitz.Error
	if errors.As(err, &blitzErr) {
		return fmt.Sprintf("%s %s %s\n", ErrorIcon(f.NoColor), f.colors.Error.Sprint(blitzErr.Kind()), blitzErr.Reason())
	}

	return fmt.Sprintf("%s %s\n", ErrorIcon(f.NoColor), f.colors.Error.Sprint(err.Error()))
}

// formatNumber drops the fraction of whole numbers.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
