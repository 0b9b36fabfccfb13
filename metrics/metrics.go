// ABOUTME: Prometheus metrics for running algorithms
// ABOUTME: Listener that records fitness, population size and step timing, plus the /metrics endpoint

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"popsearch/algorithm"
	"popsearch/solution"
)

// Collector owns a registry with one series per algorithm name
type Collector struct {
	registry *prometheus.Registry

	bestFitness    *prometheus.GaugeVec
	meanFitness    *prometheus.GaugeVec
	populationSize *prometheus.GaugeVec
	currentStep    *prometheus.GaugeVec
	stepsTotal     *prometheus.CounterVec
	bestUpdates    *prometheus.CounterVec
	finished       *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
}

// NewCollector creates and registers the metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		bestFitness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "popsearch_best_fitness",
				Help: "Best fitness found so far",
			},
			[]string{"algorithm"},
		),
		meanFitness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "popsearch_population_mean_fitness",
				Help: "Mean fitness of the current population",
			},
			[]string{"algorithm"},
		),
		populationSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "popsearch_population_size",
				Help: "Number of individuals in the current population",
			},
			[]string{"algorithm"},
		),
		currentStep: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "popsearch_current_step",
				Help: "Step number of the last population change",
			},
			[]string{"algorithm"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popsearch_steps_total",
				Help: "Total number of completed steps",
			},
			[]string{"algorithm"},
		),
		bestUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popsearch_best_updates_total",
				Help: "Total number of best-so-far improvements",
			},
			[]string{"algorithm"},
		),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popsearch_runs_finished_total",
				Help: "Total number of runs that delivered a final solution",
			},
			[]string{"algorithm"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popsearch_step_duration_seconds",
				Help:    "Time between consecutive population changes",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"algorithm"},
		),
	}

	c.registry.MustRegister(
		c.bestFitness, c.meanFitness, c.populationSize, c.currentStep,
		c.stepsTotal, c.bestUpdates, c.finished, c.stepDuration,
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve metrics on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// listener records events for one algorithm. It runs on the algorithm
// goroutine, so lastStep needs no locking.
type listener[S solution.Solution] struct {
	c        *Collector
	name     string
	lastStep time.Time
}

// Listen returns a listener that records an algorithm's events under name
func Listen[S solution.Solution](c *Collector, name string) algorithm.Listener[S] {
	return &listener[S]{c: c, name: name}
}

func (l *listener[S]) PopulationChanged(pop []S, step int) {
	now := time.Now()
	if !l.lastStep.IsZero() {
		l.c.stepDuration.WithLabelValues(l.name).Observe(now.Sub(l.lastStep).Seconds())
	}
	l.lastStep = now

	stats := solution.Summarise(pop)
	l.c.populationSize.WithLabelValues(l.name).Set(float64(stats.Size))
	l.c.meanFitness.WithLabelValues(l.name).Set(stats.Mean)
	l.c.currentStep.WithLabelValues(l.name).Set(float64(step))
	l.c.stepsTotal.WithLabelValues(l.name).Inc()
}

func (l *listener[S]) BestUpdated(best S, _ int) {
	l.c.bestFitness.WithLabelValues(l.name).Set(best.Fitness())
	l.c.bestUpdates.WithLabelValues(l.name).Inc()
}

func (l *listener[S]) FinalSolution(best S, _ int) {
	l.c.bestFitness.WithLabelValues(l.name).Set(best.Fitness())
	l.c.finished.WithLabelValues(l.name).Inc()
}
