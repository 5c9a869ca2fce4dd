package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/prediction"
)

/*
LogisticRegression is a local logistic regression classifier.
*/
type LogisticRegression struct {
	resourceID   string
	objective    string
	fields       field.Fields
	enc          *encoder
	classes      []string
	coefficients [][]float64
	bias         bool
}

type classCoefficients struct {
	Class        string
	Coefficients []float64
}

func (cc *classCoefficients) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coefficients expect a [class, coefficients] pair, got %d elements", len(pair))
	}
	var class interface{}
	if err := json.Unmarshal(pair[0], &class); err != nil {
		return err
	}
	cc.Class = fmt.Sprintf("%v", class)
	return json.Unmarshal(pair[1], &cc.Coefficients)
}

/*
NewLogisticRegression takes a logistic regression document and returns
the LogisticRegression for it. The document object holds "fields",
"coefficients" (a [class, coefficients] pair per class) and "bias" under
"logistic_regression", and may list its "input_fields" in model order.
With bias, every coefficient list ends with the intercept.
*/
func NewLogisticRegression(doc *Document, opts ...Option) (*LogisticRegression, error) {
	obj := &struct {
		objective
		InputFields []string `json:"input_fields"`
		LR          *struct {
			objective
			Fields       json.RawMessage     `json:"fields"`
			Coefficients []classCoefficients `json:"coefficients"`
			Bias         *bool               `json:"bias"`
		} `json:"logistic_regression"`
	}{}
	if err := decodeObject(doc, obj); err != nil {
		return nil, err
	}
	if obj.LR == nil || len(obj.LR.Fields) == 0 {
		return nil, fmt.Errorf("decoding %s: no logistic regression available", doc.Resource)
	}
	if len(obj.LR.Coefficients) == 0 {
		return nil, fmt.Errorf("decoding %s: no coefficients available", doc.Resource)
	}
	fields, err := field.DecodeJSON(obj.LR.Fields)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	objectiveID, err := objectiveIn(fields, obj.id(), obj.LR.id())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", doc.Resource, err)
	}
	enc, err := newEncoder(fields, obj.InputFields, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	lr := &LogisticRegression{
		resourceID: doc.Resource,
		objective:  objectiveID,
		fields:     fields,
		enc:        enc,
		bias:       obj.LR.Bias == nil || *obj.LR.Bias,
	}
	width := enc.width
	if lr.bias {
		width++
	}
	for _, cc := range obj.LR.Coefficients {
		if len(cc.Coefficients) != width {
			return nil, fmt.Errorf("decoding %s: class %s has %d coefficients, expected %d", doc.Resource, cc.Class, len(cc.Coefficients), width)
		}
		lr.classes = append(lr.classes, cc.Class)
		lr.coefficients = append(lr.coefficients, cc.Coefficients)
	}
	return lr, nil
}

// Kind returns KindLogisticRegression
func (lr *LogisticRegression) Kind() Kind { return KindLogisticRegression }

// ResourceID returns the id of the logistic regression's resource
func (lr *LogisticRegression) ResourceID() string { return lr.resourceID }

// Fields returns the field dictionary of the logistic regression
func (lr *LogisticRegression) Fields() field.Fields { return lr.fields }

// ObjectiveField returns the id of the field the model predicts
func (lr *LogisticRegression) ObjectiveField() string { return lr.objective }

/*
Predict takes an input record and returns the most probable class. The
score of each class is the logistic function of its linear combination
of the encoded inputs; scores are normalized into probabilities.
*/
func (lr *LogisticRegression) Predict(record map[string]interface{}, opts Options) (*prediction.Record, error) {
	x, err := lr.enc.encode(record)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(lr.classes))
	var total float64
	for i, w := range lr.coefficients {
		z := dot(w[:len(x)], x)
		if lr.bias {
			z += w[len(x)]
		}
		scores[i] = 1 / (1 + math.Exp(-z))
		total += scores[i]
	}
	if total == 0 {
		return nil, ErrNoPrediction
	}
	probs := make(map[string]float64, len(lr.classes))
	for i, c := range lr.classes {
		scores[i] /= total
		probs[c] = scores[i]
	}
	best, confidence := prediction.PredictedValue(probs)
	return prediction.New(best, nil, confidence, prediction.WithProbabilities(probs)), nil
}
