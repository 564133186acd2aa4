package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ringBuffer is a fixed-capacity circular buffer of the most recent observations.
// It is owned by a single goroutine.
type ringBuffer struct {
	data []float64
	head int // next write position
	size int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{data: make([]float64, capacity)}
}

// Push adds v, overwriting the oldest value when full.
func (rb *ringBuffer) Push(v float64) {
	rb.data[rb.head] = v
	rb.head = (rb.head + 1) % len(rb.data)
	if rb.size < len(rb.data) {
		rb.size++
	}
}

// Full reports whether the buffer holds capacity values.
func (rb *ringBuffer) Full() bool {
	return rb.size == len(rb.data)
}

// Reset empties the buffer.
func (rb *ringBuffer) Reset() {
	rb.head = 0
	rb.size = 0
}

// AppendTo appends the buffered values oldest first.
func (rb *ringBuffer) AppendTo(dst []float64) []float64 {
	start := 0
	if rb.size == len(rb.data) {
		start = rb.head
	}
	for i := 0; i < rb.size; i++ {
		dst = append(dst, rb.data[(start+i)%len(rb.data)])
	}
	return dst
}

// windowStats holds every rolling statistic of one full window.
type windowStats struct {
	quantiles   []float64 // aligned with RollingQuantiles
	mean        float64
	nonZeroMean float64 // undefined if every value is zero
	std         float64 // sample std, undefined for a single value
	squaredSum  float64
	nonZeroProp float64
	zeroProp    float64
}

// windowAccumulator computes statistics over a trailing window with
// min periods equal to the window length.
type windowAccumulator struct {
	buf     *ringBuffer
	scratch []float64
	sorted  []float64
	nonZero []float64
}

func newWindowAccumulator(window int) *windowAccumulator {
	return &windowAccumulator{
		buf:     newRingBuffer(window),
		scratch: make([]float64, 0, window),
		sorted:  make([]float64, 0, window),
		nonZero: make([]float64, 0, window),
	}
}

// Reset prepares the accumulator for a new unit.
func (a *windowAccumulator) Reset() {
	a.buf.Reset()
}

// Push adds v and returns the statistics of the window ending at v.
// ok is false until the window is full; no partial windows are emitted.
func (a *windowAccumulator) Push(v float64) (windowStats, bool) {
	a.buf.Push(v)
	if !a.buf.Full() {
		return windowStats{}, false
	}

	window := a.buf.AppendTo(a.scratch[:0])
	n := float64(len(window))

	a.sorted = append(a.sorted[:0], window...)
	sort.Float64s(a.sorted)

	st := windowStats{
		quantiles:   make([]float64, len(RollingQuantiles)),
		mean:        stat.Mean(window, nil),
		nonZeroMean: Undefined(),
		std:         Undefined(),
	}
	for i, q := range RollingQuantiles {
		st.quantiles[i] = Quantile(a.sorted, q)
	}
	if len(window) > 1 {
		st.std = stat.StdDev(window, nil)
	}

	a.nonZero = a.nonZero[:0]
	for _, x := range window {
		st.squaredSum += x * x
		if x != 0 {
			a.nonZero = append(a.nonZero, x)
		}
	}
	if len(a.nonZero) > 0 {
		st.nonZeroMean = stat.Mean(a.nonZero, nil)
	}

	st.nonZeroProp = float64(len(a.nonZero)) / n
	// zero_prop is the complement of nonzero_prop.
	st.zeroProp = 1 - st.nonZeroProp

	a.scratch = window
	return st, true
}

// Quantile returns the q-quantile of sorted by linear interpolation between
// order statistics at q*(n-1). sorted must be pre-sorted ASC and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	idx := q * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
