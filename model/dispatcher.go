package model

import (
	"context"
	"fmt"
	"time"

	"github.com/antoniomachine/bigml/prediction"
)

/*
Dispatcher is the local evaluator for a model reference of any supported
kind. It embeds the Evaluator built for the reference, so the model's
attributes are available on it directly, and it logs and measures the
predictions it forwards.
*/
type Dispatcher struct {
	Evaluator
	ref      Reference
	settings *settings
}

/*
New takes a Reference and a Resolver, resolves the reference to its
document and builds the evaluator for the document's kind. Any failure
(unresolvable reference, unknown kind, unparseable document) is returned
as a *ResolutionError naming the reference.
*/
func New(ctx context.Context, ref Reference, resolver Resolver, opts ...Option) (*Dispatcher, error) {
	s := newSettings(opts)
	fail := func(err error) (*Dispatcher, error) {
		s.logger.Debug().Err(err).Str("reference", ref.String()).Msg("cannot resolve model")
		return nil, &ResolutionError{Reference: ref.String(), Err: err}
	}
	if resolver == nil {
		resolver = &StoreResolver{}
	}
	doc, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return fail(err)
	}
	s.metrics.ObserveResolution(ref.Form.String())
	kind, err := doc.Kind()
	if err != nil {
		return fail(err)
	}
	var e Evaluator
	switch kind {
	case KindModel:
		e, err = NewTreeModel(doc, opts...)
	case KindEnsemble:
		e, err = NewEnsemble(ctx, doc, resolver, opts...)
	case KindLogisticRegression:
		e, err = NewLogisticRegression(doc, opts...)
	case KindDeepnet:
		e, err = NewDeepnet(doc, opts...)
	default:
		err = fmt.Errorf("unsupported kind %s", kind)
	}
	if err != nil {
		return fail(err)
	}
	s.logger.Debug().
		Str("resource", e.ResourceID()).
		Stringer("kind", e.Kind()).
		Str("objective", e.ObjectiveField()).
		Int("fields", len(e.Fields())).
		Msg("local model ready")
	return &Dispatcher{Evaluator: e, ref: ref, settings: s}, nil
}

// Reference returns the reference the dispatcher was built from.
func (d *Dispatcher) Reference() Reference {
	return d.ref
}

// Predict forwards the prediction to the underlying evaluator.
func (d *Dispatcher) Predict(record map[string]interface{}, opts Options) (*prediction.Record, error) {
	start := time.Now()
	r, err := d.Evaluator.Predict(record, opts)
	d.settings.metrics.ObservePrediction(d.Kind().String(), time.Since(start), err)
	if err != nil {
		d.settings.logger.Warn().Err(err).Str("resource", d.ResourceID()).Msg("prediction failed")
		return nil, err
	}
	return r, nil
}
