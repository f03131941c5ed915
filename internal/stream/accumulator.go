package stream

import "fmt"

// AccumulatedVariant is the server-side reconstruction of one variant,
// built from the same event sequence the client receives. It exists only
// to be persisted once the whole generation succeeds.
type AccumulatedVariant struct {
	VariantIndex int     `json:"variantIndex"`
	Text         string  `json:"text"`
	Tone         string  `json:"tone"`
	Length       string  `json:"length"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Accumulator folds a generation event stream into per-variant results.
// It must be fed the exact event sequence written to the wire; feeding it
// a re-derived sequence risks drift between what the client saw and what
// gets persisted.
type Accumulator struct {
	variants  []AccumulatedVariant
	started   []bool
	completed []bool
}

// NewAccumulator creates an accumulator for n variants, indexed [0, n).
func NewAccumulator(n int) *Accumulator {
	return &Accumulator{
		variants:  make([]AccumulatedVariant, n),
		started:   make([]bool, n),
		completed: make([]bool, n),
	}
}

// Apply folds one event into the accumulator state. Terminal events are
// ignored. A content or complete event for a variant that never started,
// or a duplicate start/complete, is a programming-invariant violation in
// the producer and is reported as an error rather than silently absorbed.
func (a *Accumulator) Apply(ev Event) error {
	switch ev.Type {
	case EventDone, EventError:
		return nil
	}

	if ev.VariantIndex == nil {
		return fmt.Errorf("%s event without variant index", ev.Type)
	}
	i := *ev.VariantIndex
	if i < 0 || i >= len(a.variants) {
		return fmt.Errorf("variant index %d out of range [0,%d)", i, len(a.variants))
	}

	switch ev.Type {
	case EventStart:
		if a.started[i] {
			return fmt.Errorf("duplicate start for variant %d", i)
		}
		a.started[i] = true
		a.variants[i] = AccumulatedVariant{VariantIndex: i}
	case EventContent:
		if !a.started[i] {
			return fmt.Errorf("content for variant %d before start", i)
		}
		if a.completed[i] {
			return fmt.Errorf("content for variant %d after complete", i)
		}
		a.variants[i].Text += ev.Text
	case EventComplete:
		if ev.Metadata == nil {
			return fmt.Errorf("complete for variant %d without metadata", i)
		}
		if !a.started[i] {
			return fmt.Errorf("complete for variant %d before start", i)
		}
		if a.completed[i] {
			return fmt.Errorf("duplicate complete for variant %d", i)
		}
		a.completed[i] = true
		a.variants[i].Tone = ev.Metadata.Tone
		a.variants[i].Length = ev.Metadata.Length
		a.variants[i].Confidence = ev.Metadata.Confidence
		a.variants[i].Reasoning = ev.Metadata.Reasoning
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Finalize returns the ordered variant array. It fails unless every
// variant has reached its complete event.
func (a *Accumulator) Finalize() ([]AccumulatedVariant, error) {
	for i, done := range a.completed {
		if !done {
			return nil, fmt.Errorf("variant %d never completed", i)
		}
	}
	out := make([]AccumulatedVariant, len(a.variants))
	copy(out, a.variants)
	return out, nil
}

// MeanConfidence averages the confidence of the given variants.
func MeanConfidence(variants []AccumulatedVariant) float64 {
	if len(variants) == 0 {
		return 0
	}
	var sum float64
	for _, v := range variants {
		sum += v.Confidence
	}
	return sum / float64(len(variants))
}
