package metrics

import (
	"bytes"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// Metric names exposed at /metrics.
const (
	ConversionsTotal   = "unitconv_conversions_total"
	TableReloadsTotal  = "unitconv_table_reloads_total"
	TableUnits         = "unitconv_table_units"
	TableEdges         = "unitconv_table_edges"
	reloadResultOK     = "ok"
	reloadResultFailed = "error"
)

// Registry holds the current metric values. It is safe for concurrent use.
type Registry struct {
	mu          sync.Mutex
	conversions map[string]float64 // outcome -> count
	reloads     map[string]float64 // result -> count
	units       float64
	edges       float64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		conversions: make(map[string]float64),
		reloads:     make(map[string]float64),
	}
}

// ObserveConversion counts one conversion with the given outcome.
func (r *Registry) ObserveConversion(outcome string) {
	r.mu.Lock()
	r.conversions[outcome]++
	r.mu.Unlock()
}

// ObserveReload counts a table reload; a nil err is a success.
func (r *Registry) ObserveReload(err error) {
	result := reloadResultOK
	if err != nil {
		result = reloadResultFailed
	}
	r.mu.Lock()
	r.reloads[result]++
	r.mu.Unlock()
}

// SetTable records the size of the graph currently being served.
func (r *Registry) SetTable(g *unitgraph.Graph) {
	r.mu.Lock()
	r.units = float64(g.Len())
	r.edges = float64(g.EdgeCount())
	r.mu.Unlock()
}

// Gather snapshots every family, sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	return []*dto.MetricFamily{
		counterFamily(ConversionsTotal, "Conversions answered, by outcome.", "outcome", r.conversions),
		gaugeFamily(TableEdges, "Directed edges in the served unit graph.", r.edges),
		counterFamily(TableReloadsTotal, "Equivalence table reloads, by result.", "result", r.reloads),
		gaugeFamily(TableUnits, "Units in the served unit graph.", r.units),
	}
}

// Handler serves the registry in the text exposition format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var buf bytes.Buffer
		for _, mf := range r.Gather() {
			// The text encoder rejects families without samples.
			if len(mf.GetMetric()) == 0 {
				continue
			}
			if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
				slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
				http.Error(w, "encode metrics", http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		_, _ = w.Write(buf.Bytes())
	})
}

func counterFamily(name, help, label string, values map[string]float64) *dto.MetricFamily {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String(label), Value: proto.String(k)}},
			Counter: &dto.Counter{Value: proto.Float64(values[k])},
		})
	}
	return mf
}

func gaugeFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
