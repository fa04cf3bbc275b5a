// Package metrics exposes Prometheus collectors for the spatial core.
// A nil *Stats is valid and records nothing, so tests and tools can skip it.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worldcore"

// Stats groups every collector the map and the pathfinder touch.
type Stats struct {
	spectatorHits   prometheus.Counter
	spectatorMisses prometheus.Counter
	spectatorBypass prometheus.Counter
	pathSearches    *prometheus.CounterVec
	pathNodes       prometheus.Histogram
	placements      *prometheus.CounterVec
	sightChecks     *prometheus.CounterVec
	saveAttempts    *prometheus.CounterVec
	cleanedItems    prometheus.Counter
	phaseSeconds    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Stats {
	s := &Stats{
		spectatorHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spectator_cache_hits_total",
			Help:      "Spectator queries answered from a cache.",
		}),
		spectatorMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spectator_cache_misses_total",
			Help:      "Cacheable spectator queries that had to walk sectors.",
		}),
		spectatorBypass: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spectator_cache_bypass_total",
			Help:      "Spectator queries with custom ranges or a single floor.",
		}),
		pathSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_searches_total",
			Help:      "Pathfinder runs by outcome.",
		}, []string{"result"}),
		pathNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_nodes",
			Help:      "Nodes allocated per path search.",
			Buckets:   []float64{8, 16, 32, 64, 128, 256, 512},
		}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Entity placement attempts by outcome.",
		}, []string{"result"}),
		sightChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sight_checks_total",
			Help:      "Line of sight checks by outcome.",
		}, []string{"result"}),
		saveAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "house_save_attempts_total",
			Help:      "House persistence attempts by stage and outcome.",
		}, []string{"stage", "result"}),
		cleanedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleaned_items_total",
			Help:      "Items removed by map clean passes.",
		}),
		phaseSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_phase_seconds",
			Help:      "Wall time spent in each tick phase.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		}, []string{"phase"}),
	}
	reg.MustRegister(
		s.spectatorHits, s.spectatorMisses, s.spectatorBypass,
		s.pathSearches, s.pathNodes, s.placements, s.sightChecks,
		s.saveAttempts, s.cleanedItems, s.phaseSeconds,
	)
	return s
}

func (s *Stats) SpectatorHit() {
	if s != nil {
		s.spectatorHits.Inc()
	}
}

func (s *Stats) SpectatorMiss() {
	if s != nil {
		s.spectatorMisses.Inc()
	}
}

func (s *Stats) SpectatorBypass() {
	if s != nil {
		s.spectatorBypass.Inc()
	}
}

// PathSearch records one pathfinder run and the pool usage it needed.
func (s *Stats) PathSearch(found bool, nodes int) {
	if s == nil {
		return
	}
	s.pathSearches.WithLabelValues(outcome(found)).Inc()
	s.pathNodes.Observe(float64(nodes))
}

func (s *Stats) Placement(ok bool) {
	if s != nil {
		s.placements.WithLabelValues(outcome(ok)).Inc()
	}
}

func (s *Stats) SightCheck(clear bool) {
	if s == nil {
		return
	}
	result := "blocked"
	if clear {
		result = "clear"
	}
	s.sightChecks.WithLabelValues(result).Inc()
}

func (s *Stats) SaveAttempt(stage string, ok bool) {
	if s != nil {
		s.saveAttempts.WithLabelValues(stage, outcome(ok)).Inc()
	}
}

func (s *Stats) Cleaned(items int) {
	if s != nil {
		s.cleanedItems.Add(float64(items))
	}
}

// Handler serves the collectors registered on g.
// PhaseTime records how long one tick phase took.
func (s *Stats) PhaseTime(phase string, took time.Duration) {
	if s != nil {
		s.phaseSeconds.WithLabelValues(phase).Observe(took.Seconds())
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
