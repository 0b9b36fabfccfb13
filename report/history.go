// ABOUTME: Per-step history of a run, recorded through the algorithm listener interface
// ABOUTME: Population statistics, best-so-far trace and the final solution

package report

import (
	"math"
	"sync"
	"time"

	"popsearch/algorithm"
	"popsearch/solution"
)

// Record is the population summary after one step
type Record struct {
	Step      int
	Size      int
	Best      float64
	Mean      float64
	Worst     float64
	BestSoFar float64
	Elapsed   time.Duration
}

// History accumulates records for one run. Safe for concurrent readers
// while the algorithm goroutine appends.
type History struct {
	mu sync.Mutex

	name         string
	start        time.Time
	records      []Record
	bestSoFar    float64
	improvements int

	finished     bool
	finalStep    int
	finalFitness float64
	final        string
}

// NewHistory creates an empty history for the named algorithm
func NewHistory(name string) *History {
	return &History{name: name, start: time.Now(), bestSoFar: math.Inf(-1)}
}

// Track returns a listener that feeds h
func Track[S solution.Solution](h *History) algorithm.Listener[S] {
	return algorithm.ListenerFuncs[S]{
		OnPopulation: func(pop []S, step int) { h.addPopulation(solution.Summarise(pop), step) },
		OnBest:       func(best S, _ int) { h.addBest(best.Fitness()) },
		OnFinal:      func(best S, step int) { h.finish(best.Fitness(), best.String(), step) },
	}
}

func (h *History) addPopulation(st solution.Stats, step int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.bestSoFar = max(h.bestSoFar, st.Best)
	h.records = append(h.records, Record{
		Step:      step,
		Size:      st.Size,
		Best:      st.Best,
		Mean:      st.Mean,
		Worst:     st.Worst,
		BestSoFar: h.bestSoFar,
		Elapsed:   time.Since(h.start),
	})
}

func (h *History) addBest(fitness float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.bestSoFar = max(h.bestSoFar, fitness)
	h.improvements++
}

func (h *History) finish(fitness float64, desc string, step int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.finished = true
	h.finalStep = step
	h.finalFitness = fitness
	h.final = desc
}

// Name returns the algorithm name
func (h *History) Name() string {
	return h.name
}

// Records returns a copy of every record so far
func (h *History) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of recorded steps
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// Improvements returns how many best-so-far updates were seen
func (h *History) Improvements() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.improvements
}

// BestSoFar returns the best fitness seen in any event
func (h *History) BestSoFar() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bestSoFar
}

// Final returns the final solution's description, fitness and step once the
// run has ended
func (h *History) Final() (desc string, fitness float64, step int, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.final, h.finalFitness, h.finalStep, h.finished
}

// sample picks at most n records spread evenly over the run, always
// including the first and the last
func sample(records []Record, n int) []Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	if n == 1 {
		return records[len(records)-1:]
	}

	out := make([]Record, 0, n)
	stride := float64(len(records)-1) / float64(n-1)
	for i := range n {
		out = append(out, records[int(math.Round(float64(i)*stride))])
	}
	return out
}
