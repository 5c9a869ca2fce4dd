/*
Package prediction holds the result of scoring a record with a local
model.
*/
package prediction

import (
	"encoding/json"
	"fmt"
	"sort"
)

/*
Bin is an entry of a distribution: a value of the objective field (a
category or a numeric bin center) and the number of training instances
holding it.
*/
type Bin struct {
	Value interface{}
	Count int
}

// MarshalJSON encodes a bin as a [value, count] pair.
func (b Bin) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{b.Value, b.Count})
}

// UnmarshalJSON decodes a [value, count] pair.
func (b *Bin) UnmarshalJSON(data []byte) error {
	var pair []interface{}
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("distribution bin expects a [value, count] pair, got %d elements", len(pair))
	}
	count, ok := pair[1].(float64)
	if !ok {
		return fmt.Errorf("distribution bin count must be a number, got %T", pair[1])
	}
	b.Value = pair[0]
	b.Count = int(count)
	return nil
}

// Distribution units
const (
	UnitCategories = "categories"
	UnitBins       = "bins"
	UnitCounts     = "counts"
)

/*
Record is the immutable result of a prediction: the output, the rules
satisfied on the way to it, the confidence and, when the model provides
them, the statistics of the training instances behind it.
*/
type Record struct {
	Output           interface{}        `json:"prediction"`
	Path             []string           `json:"path,omitempty"`
	Confidence       float64            `json:"confidence"`
	Distribution     []Bin              `json:"distribution,omitempty"`
	DistributionUnit string             `json:"distribution_unit,omitempty"`
	Count            int                `json:"count"`
	Median           *float64           `json:"median,omitempty"`
	Min              *float64           `json:"min,omitempty"`
	Max              *float64           `json:"max,omitempty"`
	Children         []string           `json:"next,omitempty"`
	Probabilities    map[string]float64 `json:"probabilities,omitempty"`
}

/*
Option sets an optional part of a Record on construction
*/
type Option func(*Record, *bool)

// WithDistribution sets the distribution and its unit.
func WithDistribution(bins []Bin, unit string) Option {
	return func(r *Record, _ *bool) {
		r.Distribution = bins
		r.DistributionUnit = unit
	}
}

// WithCount sets the instance count explicitly.
func WithCount(count int) Option {
	return func(r *Record, countSet *bool) {
		r.Count = count
		*countSet = true
	}
}

// WithMedian sets the median of the objective values.
func WithMedian(v float64) Option {
	return func(r *Record, _ *bool) { r.Median = &v }
}

// WithMin sets the minimum of the objective values.
func WithMin(v float64) Option {
	return func(r *Record, _ *bool) { r.Min = &v }
}

// WithMax sets the maximum of the objective values.
func WithMax(v float64) Option {
	return func(r *Record, _ *bool) { r.Max = &v }
}

// WithChildren sets the rules of the branches the record could not
// descend into.
func WithChildren(rules []string) Option {
	return func(r *Record, _ *bool) { r.Children = rules }
}

// WithProbabilities sets the per category probabilities.
func WithProbabilities(probs map[string]float64) Option {
	return func(r *Record, _ *bool) { r.Probabilities = probs }
}

/*
New takes an output, the path of rules that led to it, a confidence and
options and returns a Record. Unless WithCount is given, the count is
the sum of the instance counts of the distribution.
*/
func New(output interface{}, path []string, confidence float64, opts ...Option) *Record {
	r := &Record{Output: output, Path: path, Confidence: confidence}
	var countSet bool
	for _, opt := range opts {
		opt(r, &countSet)
	}
	if !countSet {
		for _, b := range r.Distribution {
			r.Count += b.Count
		}
	}
	return r
}

/*
ProbabilityOf takes a category and returns its probability according
to the prediction, or 0 if it has none.
*/
func (r *Record) ProbabilityOf(value string) float64 {
	return r.Probabilities[value]
}

func (r *Record) String() string {
	return fmt.Sprintf("%v %v", r.Output, r.Confidence)
}

/*
PredictedValue takes a map of category probabilities and returns the
most probable category and its probability. Ties go to the category
that sorts first.
*/
func PredictedValue(probs map[string]float64) (value string, prob float64) {
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i == 0 || probs[k] > prob {
			value = k
			prob = probs[k]
		}
	}
	return
}
