// ABOUTME: Tests for the Prometheus listener and endpoint
// ABOUTME: Checks recorded values after a real run and the text exposition

package metrics

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popsearch/metaheuristic"
	"popsearch/problem"
	"popsearch/solution"
)

func vec(fitness ...float64) []*solution.RealVector {
	pop := make([]*solution.RealVector, len(fitness))
	for i, f := range fitness {
		pop[i] = solution.NewRealVector([]float64{f})
		pop[i].SetFitness(f)
	}
	return pop
}

func TestListenerRecordsEvents(t *testing.T) {
	c := NewCollector()
	l := Listen[*solution.RealVector](c, "toy")

	pop := vec(1, 2, 6)
	l.PopulationChanged(pop, 1)
	l.BestUpdated(pop[2], 1)
	l.PopulationChanged(vec(2, 4), 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.populationSize.WithLabelValues("toy")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.meanFitness.WithLabelValues("toy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.currentStep.WithLabelValues("toy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("toy")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.bestFitness.WithLabelValues("toy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bestUpdates.WithLabelValues("toy")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.stepDuration))

	l.FinalSolution(pop[2], 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("toy")))
}

func TestCollectorFollowsRun(t *testing.T) {
	p, err := problem.NewMaxOnes(16)
	require.NoError(t, err)
	ga, err := metaheuristic.NewElitistGA(p, metaheuristic.DefaultElitistGAParams(),
		metaheuristic.Options{MaxSteps: 25, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	c := NewCollector()
	ga.AddListener(Listen[*solution.BitVector](c, "elitist-ga"))
	require.NoError(t, ga.Run(context.Background()))

	assert.Equal(t, 25.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("elitist-ga")))
	assert.Equal(t, 50.0, testutil.ToFloat64(c.populationSize.WithLabelValues("elitist-ga")))
	assert.Equal(t, ga.Best().Fitness(), testutil.ToFloat64(c.bestFitness.WithLabelValues("elitist-ga")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("elitist-ga")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	l := Listen[*solution.RealVector](c, "toy")
	l.PopulationChanged(vec(1), 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(body, `popsearch_steps_total{algorithm="toy"} 1`), body)
	assert.Contains(t, body, "popsearch_population_size")
}

func TestServeStopsOnCancel(t *testing.T) {
	c := NewCollector()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
