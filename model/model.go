/*
Package model builds local evaluators from resource documents and scores
input records with them.

There is one Evaluator implementation per supported Kind: TreeModel,
Ensemble, LogisticRegression and Deepnet. A Dispatcher resolves a
Reference to its document, builds the evaluator matching the document's
kind and forwards predictions to it. Evaluators are immutable once
built, so one evaluator or Dispatcher may serve concurrent predictions.
*/
package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/metrics"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/rs/zerolog"
)

/*
Evaluator is implemented by every local model.
*/
type Evaluator interface {
	// Kind returns the kind of the model's resource
	Kind() Kind
	// ResourceID returns the id of the model's resource
	ResourceID() string
	// Fields returns the field dictionary of the model
	Fields() field.Fields
	// ObjectiveField returns the id of the field the model predicts
	ObjectiveField() string
	// Predict takes an input record keyed by field id or name and
	// returns the prediction for it.
	Predict(record map[string]interface{}, opts Options) (*prediction.Record, error)
}

/*
Options tunes a prediction.
*/
type Options struct {
	// Normalize makes ensembles divide the combined member votes by
	// their grand total instead of by the number of members.
	Normalize bool
}

// PredictionError represents an error related with predictions
type PredictionError string

func (pe PredictionError) Error() string {
	return string(pe)
}

const (
	// ErrNoPrediction is returned when a record does not reach any node
	// a prediction can be taken from
	ErrNoPrediction = PredictionError("no prediction available for the record")
	// ErrMissingObjective is returned when building a model whose
	// document does not name an objective field it declares
	ErrMissingObjective = PredictionError("model has no usable objective field")
)

/*
ResolutionError is returned by New when a reference cannot be turned
into an evaluator: the document cannot be found or parsed, or its kind
is not one of Kinds.
*/
type ResolutionError struct {
	Reference string
	Err       error
}

func (re *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s into a local model (known kinds: %s): %v", re.Reference, knownKinds(), re.Err)
}

func (re *ResolutionError) Unwrap() error {
	return re.Err
}

/*
Option configures how evaluators are built.
*/
type Option func(*settings)

type settings struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func newSettings(opts []Option) *settings {
	s := &settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger evaluators report on.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithMetrics sets the metrics evaluators record on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// objective holds the keys model objects name their objective field with.
type objective struct {
	Field  string   `json:"objective_field"`
	Fields []string `json:"objective_fields"`
}

func (o objective) id() string {
	if o.Field != "" {
		return o.Field
	}
	if len(o.Fields) > 0 {
		return o.Fields[0]
	}
	return ""
}

/*
objectiveIn takes a field dictionary and candidate objective ids, and
returns the first candidate the dictionary declares.
*/
func objectiveIn(fields field.Fields, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if id, ok := fields.IDFor(c); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: candidates %s", ErrMissingObjective, strings.Join(candidates, ", "))
}

func decodeObject(doc *Document, v interface{}) error {
	if err := json.Unmarshal(doc.Object, v); err != nil {
		return fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	return nil
}

/*
argmax returns the index of the largest value, the first one on ties.
*/
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
