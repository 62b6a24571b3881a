// Package metrics records search statistics in Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/javiermolinar/weekfit/internal/solver"
)

// PromObserver implements solver.Observer with Prometheus metrics.
type PromObserver struct {
	searches *prometheus.CounterVec
	nodes    prometheus.Counter
	pruned   prometheus.Counter
	unplaced prometheus.Gauge
	fatigue  prometheus.Gauge
	duration prometheus.Histogram
}

var _ solver.Observer = (*PromObserver)(nil)

// NewPromObserver registers the search metrics on reg. If reg is nil, the
// default registerer is used. If the collectors are already registered,
// the existing ones are reused.
func NewPromObserver(reg prometheus.Registerer) (*PromObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PromObserver{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekfit_searches_total",
			Help: "Total number of finished searches by status",
		}, []string{"status"}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weekfit_search_nodes_total",
			Help: "Search tree nodes explored",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weekfit_search_pruned_total",
			Help: "Candidates cut by the fatigue bound",
		}),
		unplaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekfit_unplaced_tasks",
			Help: "Tasks left off the grid by the last search",
		}),
		fatigue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekfit_total_fatigue",
			Help: "Total fatigue of the last search result",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weekfit_search_duration_seconds",
			Help:    "Wall time of one search",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	var err error
	if o.searches, err = register(reg, o.searches); err != nil {
		return nil, err
	}
	if o.nodes, err = register(reg, o.nodes); err != nil {
		return nil, err
	}
	if o.pruned, err = register(reg, o.pruned); err != nil {
		return nil, err
	}
	if o.unplaced, err = register(reg, o.unplaced); err != nil {
		return nil, err
	}
	if o.fatigue, err = register(reg, o.fatigue); err != nil {
		return nil, err
	}
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveSearch records one finished search.
func (o *PromObserver) ObserveSearch(r *solver.Result) {
	o.searches.WithLabelValues(r.Status.String()).Inc()
	o.nodes.Add(float64(r.Stats.Nodes))
	o.pruned.Add(float64(r.Stats.Pruned))
	o.unplaced.Set(float64(len(r.Unplaced)))
	o.fatigue.Set(r.TotalFatigue)
	o.duration.Observe(r.Stats.Elapsed.Seconds())
}

// Dump writes every weekfit metric gathered from g as "name{labels} value"
// lines, sorted by name.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "weekfit_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			lines = append(lines, formatMetric(mf, m)...)
		}
	}
	sort.Strings(lines)

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func formatMetric(mf *dto.MetricFamily, m *dto.Metric) []string {
	base, lbl := mf.GetName(), labels(m.GetLabel())
	name := base + lbl
	switch mf.GetType() {
	case dto.MetricType_COUNTER:
		return []string{fmt.Sprintf("%s %g", name, m.GetCounter().GetValue())}
	case dto.MetricType_GAUGE:
		return []string{fmt.Sprintf("%s %g", name, m.GetGauge().GetValue())}
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return []string{
			fmt.Sprintf("%s_count%s %d", base, lbl, h.GetSampleCount()),
			fmt.Sprintf("%s_sum%s %g", base, lbl, h.GetSampleSum()),
		}
	default:
		return nil
	}
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
