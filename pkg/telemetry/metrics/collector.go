package metrics

import (
	"sync"
	"time"

	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/flow/graph"

	"github.com/prometheus/client_golang/prometheus"
)

// Compile statuses.
const (
	StatusSuccess      = "success"
	StatusParseError   = "parse_error"
	StatusCompileError = "compile_error"
	StatusSystemError  = "system_error"
	StatusInvalidGraph = "invalid_graph"
)

// otherAgent replaces agent labels past the cardinality limit.
const otherAgent = "other"

// Collector is the orchestrator for all Prometheus metrics in flowc.
// It manages metric registration and provides a single interface for
// recording compile, import and store activity.
//
// Its Observe methods match the compiler's observer hooks, so a Collector
// can be handed to flow.WithObserver directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	compileMetrics *CompileMetrics
	cacheMetrics   *CacheMetrics
	storeMetrics   *StoreMetrics

	// Agent labels come from user code; cap them.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}
	if len(cfg.NodeCountBuckets) == 0 {
		cfg.NodeCountBuckets = append([]float64(nil), config.DefaultNodeCountBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		compileMetrics:     NewCompileMetrics(cfg, registry),
		cacheMetrics:       NewCacheMetrics(cfg, registry),
		storeMetrics:       NewStoreMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
}

// ObservePhase records the duration of one compilation phase
// ("parse", "compile", "validate", "encode").
func (c *Collector) ObservePhase(phase string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.compileMetrics.RecordPhase(phase, duration)
}

// ObserveCompile records a finished compilation.
//
// Parameters:
//   - status: one of the Status constants
//   - duration: total compilation time, parse included
func (c *Collector) ObserveCompile(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.compileMetrics.RecordCompile(status, duration)
}

// ObserveGraph records the shape of an emitted graph and the agents its
// computed nodes call.
func (c *Collector) ObserveGraph(stats graph.Stats, agents map[string]int) {
	if !c.config.Enabled {
		return
	}
	c.compileMetrics.RecordGraph(stats)
	for agent, n := range agents {
		if !c.cardinalityLimiter.Allow(agent) {
			agent = otherAgent
		}
		c.compileMetrics.RecordAgent(agent, n)
	}
}

// ObserveImports records import resolution for one compilation. Every
// resolved import that was not parsed was served from the module cache.
func (c *Collector) ObserveImports(resolved, parsed, cacheHits int) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordHits(cacheImports, cacheHits)
	c.cacheMetrics.RecordMisses(cacheImports, parsed)
	c.cacheMetrics.RecordResolved(cacheImports, resolved)
	c.cacheMetrics.UpdateSize(cacheImports, parsed)
}

// ObserveStore records one artifact store operation.
func (c *Collector) ObserveStore(op string, err error, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.storeMetrics.RecordOperation(op, err, duration)
}

// ObservePruned records artifacts removed by retention.
func (c *Collector) ObservePruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.storeMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
