package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/multivote"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/antoniomachine/bigml/tree"
)

/*
Ensemble is a local ensemble of decision tree models whose predictions
are combined by vote.
*/
type Ensemble struct {
	resourceID string
	objective  string
	optype     field.Optype
	categories []string
	members    []*TreeModel
	fields     field.Fields
	settings   *settings
}

/*
NewEnsemble takes an ensemble document and a Resolver and returns the
Ensemble for it. The document object lists its members under "models",
either as resource ids, which are resolved with the resolver, or as
inline model documents.
*/
func NewEnsemble(ctx context.Context, doc *Document, resolver Resolver, opts ...Option) (*Ensemble, error) {
	obj := &struct {
		objective
		Models []json.RawMessage `json:"models"`
	}{}
	if err := decodeObject(doc, obj); err != nil {
		return nil, err
	}
	if len(obj.Models) == 0 {
		return nil, fmt.Errorf("decoding %s: ensemble has no models", doc.Resource)
	}
	e := &Ensemble{resourceID: doc.Resource, fields: field.Fields{}, settings: newSettings(opts)}
	for i, raw := range obj.Models {
		member, err := e.member(ctx, raw, resolver, opts)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: member %d: %v", doc.Resource, i, err)
		}
		e.members = append(e.members, member)
		for id, f := range member.Fields() {
			if _, ok := e.fields[id]; !ok {
				e.fields[id] = f
			}
		}
	}
	objectiveID, err := objectiveIn(e.fields, obj.id(), e.members[0].ObjectiveField())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", doc.Resource, err)
	}
	for _, m := range e.members {
		if m.ObjectiveField() != objectiveID {
			return nil, fmt.Errorf("decoding %s: member %s predicts %s instead of %s", doc.Resource, m.ResourceID(), m.ObjectiveField(), objectiveID)
		}
	}
	e.objective = objectiveID
	e.optype = e.fields[objectiveID].Optype
	if e.optype == field.Categorical {
		e.categories = e.categoriesOf(e.fields[objectiveID])
		if len(e.categories) == 0 {
			return nil, fmt.Errorf("decoding %s: no categories known for objective %s", doc.Resource, objectiveID)
		}
	}
	return e, nil
}

func (e *Ensemble) member(ctx context.Context, raw json.RawMessage, resolver Resolver, opts []Option) (*TreeModel, error) {
	var ref Reference
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		ref = ResourceRef(id)
	} else if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		ref = DocumentRef(raw)
	} else {
		return nil, fmt.Errorf("expected a resource id or a model document, got %s", raw)
	}
	if resolver == nil {
		resolver = &StoreResolver{}
	}
	doc, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	kind, err := doc.Kind()
	if err != nil {
		return nil, err
	}
	if kind != KindModel {
		return nil, fmt.Errorf("%s is not a model", doc.Resource)
	}
	return NewTreeModel(doc, opts...)
}

// categoriesOf returns the declared categories of the objective or,
// when it declares none, the sorted distribution values and leaf outputs
// of the members.
func (e *Ensemble) categoriesOf(f *field.Field) []string {
	if cats := f.Categories(); len(cats) > 0 {
		return cats
	}
	seen := map[string]bool{}
	for _, m := range e.members {
		m.Tree().Walk(false, func(n *tree.Node, _ int) error {
			for _, b := range n.Distribution {
				seen[fmt.Sprintf("%v", b.Value)] = true
			}
			if n.IsLeaf() && n.Output != nil {
				seen[fmt.Sprintf("%v", n.Output)] = true
			}
			return nil
		})
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Kind returns KindEnsemble
func (e *Ensemble) Kind() Kind { return KindEnsemble }

// ResourceID returns the id of the ensemble's resource
func (e *Ensemble) ResourceID() string { return e.resourceID }

// Fields returns the union of the field dictionaries of the members
func (e *Ensemble) Fields() field.Fields { return e.fields }

// ObjectiveField returns the id of the field the ensemble predicts
func (e *Ensemble) ObjectiveField() string { return e.objective }

// Members returns the models of the ensemble
func (e *Ensemble) Members() []*TreeModel { return e.members }

/*
Predict takes an input record and scores it with every member.

For a categorical objective each member votes with its class
probabilities over the objective categories (or all of it for its output
when it has none) and the votes are combined with multivote, normalized
when opts.Normalize is set. The output is the category with the most
combined votes and its share is the confidence.

For a numeric objective the member outputs and confidences are averaged.
*/
func (e *Ensemble) Predict(record map[string]interface{}, opts Options) (*prediction.Record, error) {
	votes := multivote.New()
	var count int
	for _, m := range e.members {
		r, err := m.Predict(record, opts)
		if err != nil {
			return nil, fmt.Errorf("predicting with %s: %w", m.ResourceID(), err)
		}
		count += r.Count
		vote, err := e.vote(r)
		if err != nil {
			return nil, fmt.Errorf("predicting with %s: %v", m.ResourceID(), err)
		}
		votes.Append(vote)
	}
	normalize := opts.Normalize && e.optype == field.Categorical
	combined, err := votes.Combine(normalize)
	if err != nil {
		return nil, fmt.Errorf("combining votes of %s: %w", e.resourceID, err)
	}
	e.settings.metrics.ObserveCombination()
	if len(combined) == 0 {
		return nil, ErrNoPrediction
	}
	if e.optype != field.Categorical {
		return prediction.New(combined[0], nil, combined[1], prediction.WithCount(count)), nil
	}
	probs := make(map[string]float64, len(e.categories))
	for i, c := range e.categories {
		probs[c] = combined[i]
	}
	best, confidence := prediction.PredictedValue(probs)
	return prediction.New(best, nil, confidence,
		prediction.WithCount(count),
		prediction.WithProbabilities(probs),
	), nil
}

func (e *Ensemble) vote(r *prediction.Record) ([]float64, error) {
	if e.optype != field.Categorical {
		v, err := field.ToFloat(r.Output)
		if err != nil {
			return nil, fmt.Errorf("numeric output expected: %v", err)
		}
		return []float64{v, r.Confidence}, nil
	}
	vote := make([]float64, len(e.categories))
	if len(r.Probabilities) == 0 {
		out := fmt.Sprintf("%v", r.Output)
		for i, c := range e.categories {
			if c == out {
				vote[i] = 1
			}
		}
		return vote, nil
	}
	for i, c := range e.categories {
		vote[i] = r.ProbabilityOf(c)
	}
	return vote, nil
}
