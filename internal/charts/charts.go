// Package charts renders dashboard charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"presupuesto/internal/analytics"
	"presupuesto/internal/cache"
	"presupuesto/internal/core"
)

// ErrNoData is returned for a share chart without any spending.
var ErrNoData = errors.New("no data to chart")

const (
	width  = 1000
	height = 500
)

// Kind names a chart for caching.
type Kind string

const (
	KindDaily      Kind = "daily"
	KindCategories Kind = "categories"
)

// Renderer renders charts and caches the PNGs per snapshot revision and day.
type Renderer struct {
	cache  *cache.LRUCache[[]byte]
	logger *slog.Logger
}

func NewRenderer(size int, ttl time.Duration, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cache:  cache.NewLRUCache[[]byte](size, ttl),
		logger: logger.With("component", "charts"),
	}
}

// Cache exposes the PNG cache so it can be swept periodically.
func (r *Renderer) Cache() cache.Cleaner {
	return r.cache
}

// Key identifies a rendered chart. The day is part of the key because the
// actual line grows with today's date even without new data.
func Key(kind Kind, revision uint64, now time.Time) string {
	return fmt.Sprintf("%s:%d:%s", kind, revision, now.Format("2006-01-02"))
}

// Render returns the PNG for kind, rendering it on a cache miss.
func (r *Renderer) Render(kind Kind, revision uint64, now time.Time, view analytics.Dashboard) ([]byte, error) {
	return r.cache.GetOrCompute(Key(kind, revision, now), func() ([]byte, error) {
		start := time.Now()
		var (
			png []byte
			err error
		)
		switch kind {
		case KindDaily:
			png, err = Daily(view.Daily)
		case KindCategories:
			png, err = Categories(view.Slices)
		default:
			err = fmt.Errorf("unknown chart kind %q", kind)
		}
		if err == nil {
			r.logger.Debug("Chart rendered", "kind", string(kind), "revision", revision,
				"bytes", len(png), "duration_ms", time.Since(start).Milliseconds())
		}
		return png, err
	})
}

// Daily renders actual cumulative spend against the ideal pace and the
// budget ceiling. Days without an actual value are not drawn.
func Daily(points []analytics.DailyPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	var (
		days, ideal, ceiling []float64
		actualDays, actual   []float64
		top                  float64
	)
	for _, p := range points {
		d := float64(p.Day)
		days = append(days, d)
		ideal = append(ideal, float64(p.Ideal))
		ceiling = append(ceiling, float64(p.Ceiling))
		top = max(top, float64(p.Ideal), float64(p.Ceiling))
		if p.Actual != nil {
			actualDays = append(actualDays, d)
			actual = append(actual, float64(*p.Actual))
			top = max(top, float64(*p.Actual))
		}
	}
	if top <= 0 {
		top = 1
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Ideal",
			XValues: days,
			YValues: ideal,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("94a3b8"),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
		chart.ContinuousSeries{
			Name:    "Presupuesto",
			XValues: days,
			YValues: ceiling,
			Style: chart.Style{
				StrokeColor: chart.ColorRed.WithAlpha(150),
				StrokeWidth: 1,
			},
		},
	}
	if len(actual) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "Gastado",
			XValues: actualDays,
			YValues: actual,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("3b82f6"),
				StrokeWidth: 3,
			},
		})
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Name:  "Día",
			Range: &chart.ContinuousRange{Min: 1, Max: float64(len(points))},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.05},
			ValueFormatter: func(v interface{}) string {
				return core.FormatCOP(core.Pesos(v.(float64)))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render daily chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Categories renders the share of this month's spending per category.
func Categories(slices []analytics.Slice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, ErrNoData
	}
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.0f%%", s.Name, s.Share),
			Value: float64(s.Value),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#")),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	pie := chart.PieChart{
		Width:  height,
		Height: height,
		Values: values,
	}
	buf := new(bytes.Buffer)
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category chart: %w", err)
	}
	return buf.Bytes(), nil
}
