// Package metrics exposes Prometheus counters for imports and enrichment.
// Every method is safe on a nil *Metrics so callers can leave it unset.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/bookstore-assistant/internal/catalog"
	"github.com/mrlokans/bookstore-assistant/internal/ledger"
)

const namespace = "bookstore"

// Import kinds used as label values.
const (
	KindCatalog = "catalog"
	KindSales   = "sales"
)

type Metrics struct {
	registry        *prometheus.Registry
	imports         *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec
	catalogChanges  *prometheus.CounterVec
	salesValue      prometheus.Counter
	stockSubtracted prometheus.Counter
	unmatchedLines  prometheus.Counter
	enrichLookups   *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Spreadsheet imports by kind and outcome.",
		}, []string{"kind", "status"}),
		rowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "Spreadsheet rows dropped during extraction.",
		}, []string{"kind"}),
		catalogChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_items_total",
			Help:      "Catalog items added or updated by merges.",
		}, []string{"change"}),
		salesValue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_value_total",
			Help:      "Sum of uploaded sales line values.",
		}),
		stockSubtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_subtracted_total",
			Help:      "Units removed from stock by sales uploads.",
		}),
		unmatchedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_unmatched_lines_total",
			Help:      "Sales lines whose ISBN is not in the catalog.",
		}),
		enrichLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_lookups_total",
			Help:      "Metadata lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.imports,
		m.rowsRejected,
		m.catalogChanges,
		m.salesValue,
		m.stockSubtracted,
		m.unmatchedLines,
		m.enrichLookups,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ImportFinished counts one import attempt.
func (m *Metrics) ImportFinished(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.imports.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) RowsRejected(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsRejected.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) CatalogMerged(report catalog.MergeReport) {
	if m == nil {
		return
	}
	m.catalogChanges.WithLabelValues("added").Add(float64(report.Added))
	m.catalogChanges.WithLabelValues("updated").Add(float64(report.Updated))
}

func (m *Metrics) SalesApplied(report ledger.SalesReport) {
	if m == nil {
		return
	}
	value, _ := report.TotalValue.Float64()
	m.salesValue.Add(value)
	m.stockSubtracted.Add(float64(report.StockSubtracted))
	m.unmatchedLines.Add(float64(report.Unmatched))
}

// EnrichmentFinished counts the lookups of one enrichment pass.
func (m *Metrics) EnrichmentFinished(enriched, skipped, failed int) {
	if m == nil {
		return
	}
	m.enrichLookups.WithLabelValues("enriched").Add(float64(enriched))
	m.enrichLookups.WithLabelValues("not_found").Add(float64(skipped))
	m.enrichLookups.WithLabelValues("failed").Add(float64(failed))
}
