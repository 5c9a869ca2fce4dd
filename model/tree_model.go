package model

import (
	"encoding/json"
	"fmt"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/antoniomachine/bigml/tree"
	treejson "github.com/antoniomachine/bigml/tree/json"
)

/*
TreeModel is a local decision tree model.
*/
type TreeModel struct {
	resourceID string
	objective  string
	tree       *tree.Tree
	settings   *settings
}

/*
NewTreeModel takes a model document and returns the TreeModel for it.
The document object holds the tree under "model" ("fields" and "root")
and names the objective with "objective_field" or "objective_fields".
*/
func NewTreeModel(doc *Document, opts ...Option) (*TreeModel, error) {
	obj := &struct {
		objective
		Model json.RawMessage `json:"model"`
	}{}
	if err := decodeObject(doc, obj); err != nil {
		return nil, err
	}
	if len(obj.Model) == 0 {
		return nil, fmt.Errorf("decoding %s: no model tree available", doc.Resource)
	}
	t, err := treejson.DecodeTree(obj.Model)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	inner := &objective{}
	if err = json.Unmarshal(obj.Model, inner); err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	objectiveID, err := objectiveIn(t.Fields, obj.id(), inner.id())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", doc.Resource, err)
	}
	m := &TreeModel{
		resourceID: doc.Resource,
		objective:  objectiveID,
		tree:       t,
		settings:   newSettings(opts),
	}
	m.settings.logger.Debug().Str("resource", doc.Resource).Int("depth", t.MaxDepth()).Msg("decision tree decoded")
	return m, nil
}

// Kind returns KindModel
func (m *TreeModel) Kind() Kind { return KindModel }

// ResourceID returns the id of the model's resource
func (m *TreeModel) ResourceID() string { return m.resourceID }

// Fields returns the field dictionary of the model
func (m *TreeModel) Fields() field.Fields { return m.tree.Fields }

// ObjectiveField returns the id of the field the model predicts
func (m *TreeModel) ObjectiveField() string { return m.objective }

// Tree returns the decision tree of the model
func (m *TreeModel) Tree() *tree.Tree { return m.tree }

/*
Predict takes an input record and walks the tree with it. The prediction
holds the output and statistics of the node where the walk stopped, the
rules satisfied on the way there and the rules of that node's children.
Predictions for categorical objectives carry the class probabilities of
the node's distribution.
*/
func (m *TreeModel) Predict(record map[string]interface{}, opts Options) (*prediction.Record, error) {
	input, err := m.tree.Fields.Normalize(record)
	if err != nil {
		return nil, err
	}
	delete(input, m.objective)
	n, depth, path := m.tree.Descend(input)
	if n == nil {
		return nil, ErrNoPrediction
	}
	m.settings.metrics.ObserveDepth(depth)
	var extra []prediction.Option
	if f := m.tree.Fields[m.objective]; f.Optype == field.Categorical {
		if probs := n.Probabilities(); probs != nil {
			extra = append(extra, prediction.WithProbabilities(probs))
		}
	}
	return n.Prediction(path, n.ChildRules(m.tree.Fields, field.LabelName), extra...), nil
}
