package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// WeightTotal is the sum every applicable weight vector must reach.
const WeightTotal = 100

var (
	ErrInvalidWeights = errors.New("invalid weights")
	ErrWeightInput    = errors.New("malformed weight input")
)

// InvalidWeightsError carries the computed total of a rejected vector.
type InvalidWeightsError struct {
	Total    int
	Negative bool
}

func (e *InvalidWeightsError) Error() string {
	if e.Negative {
		return fmt.Sprintf("weights contain a negative entry (total %d%%)", e.Total)
	}
	return fmt.Sprintf("weights must total %d%%, current total: %d%%", WeightTotal, e.Total)
}

// Deficit is how far the total is below 100; negative when it is above.
func (e *InvalidWeightsError) Deficit() int { return WeightTotal - e.Total }

func (e *InvalidWeightsError) Is(target error) bool { return target == ErrInvalidWeights }

// WeightVector holds an integer percentage per weighted criterion. It may be
// in any state while a user edits it; only Validate turns it into Weights.
type WeightVector [catalog.NumWeighted]int

// DefaultWeights returns the fixed default distribution.
func DefaultWeights() WeightVector {
	var w WeightVector
	for _, c := range catalog.WeightedCriteria() {
		w[c] = c.DefaultWeight()
	}
	return w
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() int {
	var total int
	for _, v := range w {
		total += v
	}
	return total
}

// WeightCheck is the live validation state of a vector.
type WeightCheck struct {
	Total   int  `json:"total"`
	Valid   bool `json:"valid"`
	Deficit int  `json:"deficit"`
}

// Check reports the total and whether the vector may be applied.
func (w WeightVector) Check() WeightCheck {
	total := w.Sum()
	valid := total == WeightTotal
	for _, v := range w {
		if v < 0 {
			valid = false
		}
	}
	return WeightCheck{Total: total, Valid: valid, Deficit: WeightTotal - total}
}

// Validate returns the applicable Weights, or an *InvalidWeightsError. The
// vector is never corrected.
func (w WeightVector) Validate() (*Weights, error) {
	for _, v := range w {
		if v < 0 {
			return nil, &InvalidWeightsError{Total: w.Sum(), Negative: true}
		}
	}
	if total := w.Sum(); total != WeightTotal {
		return nil, &InvalidWeightsError{Total: total}
	}
	return &Weights{vector: w}, nil
}

// Get returns the weight for c, 0 for non-weighted criteria.
func (w WeightVector) Get(c catalog.Criterion) int {
	if !c.Weighted() {
		return 0
	}
	return w[c]
}

// Map returns the vector keyed by criterion code.
func (w WeightVector) Map() map[string]int {
	m := make(map[string]int, len(w))
	for i, v := range w {
		m[catalog.Criterion(i).Code()] = v
	}
	return m
}

// WeightsFromMap builds a vector from code → percentage. Missing codes are 0.
func WeightsFromMap(m map[string]int) (WeightVector, error) {
	var w WeightVector
	for code, v := range m {
		c, err := catalog.ParseCriterion(code)
		if err != nil || !c.Weighted() {
			return WeightVector{}, fmt.Errorf("%w: criterion %q", ErrWeightInput, code)
		}
		w[c] = v
	}
	return w, nil
}

// ParseWeightInput reads raw per-criterion text as typed into a form. Blank
// entries count as zero. Values above 100 are capped at 100 rather than
// dropped, so the entry still counts toward the total and the check reports
// the overshoot. Anything that is not a whole non-negative number is rejected.
func ParseWeightInput(raw map[string]string) (WeightVector, error) {
	var w WeightVector
	for code, text := range raw {
		c, err := catalog.ParseCriterion(code)
		if err != nil || !c.Weighted() {
			return WeightVector{}, fmt.Errorf("%w: criterion %q", ErrWeightInput, code)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 || strings.HasPrefix(text, "+") {
			return WeightVector{}, fmt.Errorf("%w: %s=%q", ErrWeightInput, c.Code(), text)
		}
		w[c] = min(n, WeightTotal)
	}
	return w, nil
}

// Weights is a vector that has passed validation. The zero value is not
// usable; a nil *Weights means "use the catalog's precomputed scores".
type Weights struct {
	vector WeightVector
}

// Vector returns a copy of the validated percentages.
func (w *Weights) Vector() WeightVector {
	if w == nil {
		return DefaultWeights()
	}
	return w.vector
}

// Fraction returns c's weight as a 0–1 fraction.
func (w *Weights) Fraction(c catalog.Criterion) float64 {
	return float64(w.Vector().Get(c)) / WeightTotal
}
