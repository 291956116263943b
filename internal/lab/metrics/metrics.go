package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics provides observability for the membership, duplicate and merge
// services.
type Metrics struct {
	MembershipsOpened     prometheus.Counter
	MembershipsAutoClosed prometheus.Counter
	MembershipConflicts   *prometheus.CounterVec
	InvalidIntervals      prometheus.Counter
	ClusterDuration       *prometheus.HistogramVec
	ClustersFound         *prometheus.GaugeVec
	ClusterCacheLookups   *prometheus.CounterVec
	Merges                *prometheus.CounterVec
	MergeDuration         *prometheus.HistogramVec
	MergedSources         *prometheus.CounterVec
}

// New registers the lab metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MembershipsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "labmanager_memberships_opened_total",
			Help: "Total number of memberships created",
		}),
		MembershipsAutoClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "labmanager_memberships_auto_closed_total",
			Help: "Memberships closed automatically to make room for a new one",
		}),
		MembershipConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labmanager_membership_conflicts_total",
			Help: "Rejected membership writes that would overlap another membership of the same pair",
		}, []string{"operation"}),
		InvalidIntervals: f.NewCounter(prometheus.CounterOpts{
			Name: "labmanager_membership_invalid_intervals_total",
			Help: "Membership writes rejected because the start is after the end",
		}),
		ClusterDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labmanager_duplicate_cluster_duration_seconds",
			Help:    "Duration of a duplicate clustering pass",
			Buckets: durationBuckets,
		}, []string{"kind"}),
		ClustersFound: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "labmanager_duplicate_clusters",
			Help: "Number of duplicate clusters found by the last pass",
		}, []string{"kind"}),
		ClusterCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labmanager_duplicate_cache_lookups_total",
			Help: "Duplicate cluster cache lookups by result",
		}, []string{"kind", "result"}),
		Merges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labmanager_merges_total",
			Help: "Merge operations by kind and outcome",
		}, []string{"kind", "outcome"}),
		MergeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labmanager_merge_duration_seconds",
			Help:    "Duration of merge operations",
			Buckets: durationBuckets,
		}, []string{"kind"}),
		MergedSources: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labmanager_merged_sources_total",
			Help: "Entities removed by merges",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncrementMembershipsOpened() {
	m.MembershipsOpened.Inc()
}

func (m *Metrics) IncrementAutoClosed() {
	m.MembershipsAutoClosed.Inc()
}

// IncrementConflict records a rejected write; operation is "open", "update" or "merge".
func (m *Metrics) IncrementConflict(operation string) {
	m.MembershipConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementInvalidInterval() {
	m.InvalidIntervals.Inc()
}

// ObserveCluster records a clustering pass.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCluster(kind string, start time.Time, clusters int) {
	m.ClusterDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	m.ClustersFound.WithLabelValues(kind).Set(float64(clusters))
}

func (m *Metrics) IncrementCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ClusterCacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveMerge records a merge; outcome is "success" or the error code.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMerge(kind, outcome string, start time.Time, sources int) {
	m.Merges.WithLabelValues(kind, outcome).Inc()
	m.MergeDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if outcome == "success" {
		m.MergedSources.WithLabelValues(kind).Add(float64(sources))
	}
}
