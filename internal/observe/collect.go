package observe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Point is one collected data point. Histograms report their sample count.
type Point struct {
	Name       string `json:"name"`
	Attributes string `json:"attributes,omitempty"`
	Value      int64  `json:"value"`
}

func (p Point) String() string {
	if p.Attributes == "" {
		return fmt.Sprintf("%s %d", p.Name, p.Value)
	}
	return fmt.Sprintf("%s{%s} %d", p.Name, p.Attributes, p.Value)
}

// Recorder is a Metrics backed by an in-process sdk provider whose data can
// be read back with Collect. The CLI uses it to report a single run.
type Recorder struct {
	*Metrics
	reader *sdkmetric.ManualReader
}

// NewRecorder creates a Recorder with a fresh provider.
func NewRecorder() (*Recorder, error) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Recorder{Metrics: m, reader: reader}, nil
}

// Collect returns every data point recorded so far, sorted by name then
// attributes.
func (r *Recorder) Collect(ctx context.Context) ([]Point, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	var points []Point
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name, Attributes: attrString(dp.Attributes.ToSlice()), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name + ".count", Attributes: attrString(dp.Attributes.ToSlice()), Value: int64(dp.Count)})
				}
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Name != points[j].Name {
			return points[i].Name < points[j].Name
		}
		return points[i].Attributes < points[j].Attributes
	})
	return points, nil
}

func attrString(kvs []attribute.KeyValue) string {
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	return strings.Join(parts, ",")
}
