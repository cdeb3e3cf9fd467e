package logic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"octodon/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_metrics.go -package mocks octodon/logic IMetrics,IRequestObserver

type IMetrics interface {
	StartApiRequestIn(label string) IRequestObserver
	StartProviderRequestOut(label string) IRequestObserver
	SnapshotLoaded()
	StatusCreated()
	ServiceStarted()
	SnapshotPostCount(count int)
}

type IRequestObserver interface {
	Finish()
}

type metrics struct {
	cfg                 *shared.Config
	apiRequestsIn       *prometheus.HistogramVec
	providerRequestsOut *prometheus.HistogramVec
	snapshotsLoaded     prometheus.Counter
	statusesCreated     prometheus.Counter
	serviceStarted      prometheus.Counter
	snapshotPostCount   prometheus.Gauge
}

func NewMetrics(cfg *shared.Config) IMetrics {

	res := metrics{}
	res.cfg = cfg

	res.apiRequestsIn = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "api_requests_in_duration",
		Help: "Duration in seconds of API requests served.",
	}, []string{"label"})
	prometheus.Register(res.apiRequestsIn)

	res.providerRequestsOut = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "provider_requests_out_duration",
		Help: "Duration in seconds of identity provider requests made.",
	}, []string{"label"})
	prometheus.Register(res.providerRequestsOut)

	res.snapshotsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshots_loaded",
		Help: "Number of snapshot loads from storage",
	})
	prometheus.Register(res.snapshotsLoaded)

	res.statusesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statuses_created",
		Help: "Number of statuses committed through the write path",
	})
	prometheus.Register(res.statusesCreated)

	res.serviceStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "service_started",
		Help: "Service has started up",
	})
	prometheus.Register(res.serviceStarted)

	res.snapshotPostCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_post_count",
		Help: "Number of posts in the last loaded snapshot",
	})
	prometheus.Register(res.snapshotPostCount)

	return &res
}

type requestObserver struct {
	label string
	start time.Time
	hgvec *prometheus.HistogramVec
}

func (ro *requestObserver) Finish() {
	now := time.Now()
	elapsed := float64(now.UnixMilli()-ro.start.UnixMilli()) / 1000.0
	ro.hgvec.WithLabelValues(ro.label).Observe(elapsed)
}

func (m *metrics) StartApiRequestIn(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.apiRequestsIn}
}

func (m *metrics) StartProviderRequestOut(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.providerRequestsOut}
}

func (m *metrics) SnapshotLoaded() {
	m.snapshotsLoaded.Add(1)
}

func (m *metrics) StatusCreated() {
	m.statusesCreated.Add(1)
}

func (m *metrics) ServiceStarted() {
	m.serviceStarted.Add(1)
}

func (m *metrics) SnapshotPostCount(count int) {
	m.snapshotPostCount.Set(float64(count))
}
