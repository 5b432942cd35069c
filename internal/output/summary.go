package output

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// Histogram bounds for per point average response times, in microseconds.
const (
	histogramMin     = 1
	histogramMax     = int64(10 * time.Minute / time.Microsecond)
	histogramSigFigs = 3
)

// Summary condenses a rush timeline.
type Summary struct {
	Region     string        `json:"region,omitempty" yaml:"region,omitempty"`
	Points     int           `json:"points" yaml:"points"`
	Elapsed    float64       `json:"elapsedSeconds" yaml:"elapsedSeconds"`
	Total      int64         `json:"total" yaml:"total"`
	Hits       int64         `json:"hits" yaml:"hits"`
	Errors     int64         `json:"errors" yaml:"errors"`
	Timeouts   int64         `json:"timeouts" yaml:"timeouts"`
	PeakVolume int64         `json:"peakVolume" yaml:"peakVolume"`
	TxBytes    int64         `json:"txBytes" yaml:"txBytes"`
	RxBytes    int64         `json:"rxBytes" yaml:"rxBytes"`
	Duration   DurationStats `json:"duration" yaml:"duration"`
}

// DurationStats are percentiles of the per point average response time.
type DurationStats struct {
	Min   time.Duration `json:"min" yaml:"min"`
	Max   time.Duration `json:"max" yaml:"max"`
	Mean  time.Duration `json:"mean" yaml:"mean"`
	P50   time.Duration `json:"p50" yaml:"p50"`
	P90   time.Duration `json:"p90" yaml:"p90"`
	P99   time.Duration `json:"p99" yaml:"p99"`
	Count int64         `json:"count" yaml:"count"`
}

// HitRate is the fraction of total hits that succeeded, or 0 with no hits.
func (s Summary) HitRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total)
}

// Summarize builds a Summary from a result. Counters are cumulative on the
// service side, so totals come from the last point that reports them.
func Summarize(result *blitz.Result) Summary {
	region, _ := result.RegionName()
	s := Summary{Region: region, Points: len(result.Timeline)}
	if len(result.Timeline) == 0 {
		return s
	}

	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	for _, p := range result.Timeline {
		if p.Timestamp != nil {
			s.Elapsed = *p.Timestamp
		}
		setIfKnown(&s.Total, p.Total)
		setIfKnown(&s.Hits, p.Hits)
		setIfKnown(&s.Errors, p.Errors)
		setIfKnown(&s.Timeouts, p.Timeouts)
		setIfKnown(&s.TxBytes, p.TxBytes)
		setIfKnown(&s.RxBytes, p.RxBytes)
		if p.Volume != nil && int64(*p.Volume) > s.PeakVolume {
			s.PeakVolume = int64(*p.Volume)
		}
		if p.Duration != nil {
			micros := int64(*p.Duration * float64(time.Second/time.Microsecond))
			if micros < histogramMin {
				micros = histogramMin
			}
			_ = hist.RecordValue(micros)
		}
	}

	if hist.TotalCount() > 0 {
		s.Duration = DurationStats{
			Min:   time.Duration(hist.Min()) * time.Microsecond,
			Max:   time.Duration(hist.Max()) * time.Microsecond,
			Mean:  time.Duration(hist.Mean()) * time.Microsecond,
			P50:   time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
			P90:   time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
			P99:   time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
			Count: hist.TotalCount(),
		}
	}

	return s
}

func setIfKnown(dst *int64, v *float64) {
	if v != nil {
		*dst = int64(*v)
	}
}
