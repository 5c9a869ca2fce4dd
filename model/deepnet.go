package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/prediction"
)

// Activation functions of deepnet layers
const (
	Identity = "identity"
	Tanh     = "tanh"
	Sigmoid  = "sigmoid"
	ReLU     = "relu"
	Softmax  = "softmax"
)

type layer struct {
	Weights    [][]float64 `json:"weights"`
	Offset     []float64   `json:"offset"`
	Activation string      `json:"activation_function"`
}

func (l *layer) forward(x []float64) []float64 {
	y := make([]float64, len(l.Weights))
	for i, w := range l.Weights {
		y[i] = dot(w, x) + l.Offset[i]
	}
	return activate(l.Activation, y)
}

func activate(name string, y []float64) []float64 {
	switch name {
	case Tanh:
		for i := range y {
			y[i] = math.Tanh(y[i])
		}
	case Sigmoid:
		for i := range y {
			y[i] = 1 / (1 + math.Exp(-y[i]))
		}
	case ReLU:
		for i := range y {
			y[i] = math.Max(0, y[i])
		}
	case Softmax:
		top := y[argmax(y)]
		var total float64
		for i := range y {
			y[i] = math.Exp(y[i] - top)
			total += y[i]
		}
		for i := range y {
			y[i] /= total
		}
	}
	return y
}

type outputExposition struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
	Mean   float64  `json:"mean"`
	Stdev  float64  `json:"stdev"`
}

/*
Deepnet is a local deep neural network made of dense layers.
*/
type Deepnet struct {
	resourceID string
	objective  string
	fields     field.Fields
	enc        *encoder
	layers     []layer
	output     outputExposition
}

/*
NewDeepnet takes a deepnet document and returns the Deepnet for it. The
document object holds "fields" and "network" under "deepnet". The
network lists dense "layers" (weights as one row per output, offsets and
an activation function) and an "output_exposition" that is either
categorical with the class "values" or numeric with the "mean" and
"stdev" used to scale the output back.
*/
func NewDeepnet(doc *Document, opts ...Option) (*Deepnet, error) {
	obj := &struct {
		objective
		InputFields []string `json:"input_fields"`
		Deepnet     *struct {
			objective
			Fields  json.RawMessage `json:"fields"`
			Network struct {
				Layers           []layer          `json:"layers"`
				OutputExposition outputExposition `json:"output_exposition"`
			} `json:"network"`
		} `json:"deepnet"`
	}{}
	if err := decodeObject(doc, obj); err != nil {
		return nil, err
	}
	if obj.Deepnet == nil || len(obj.Deepnet.Fields) == 0 {
		return nil, fmt.Errorf("decoding %s: no deepnet available", doc.Resource)
	}
	fields, err := field.DecodeJSON(obj.Deepnet.Fields)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	objectiveID, err := objectiveIn(fields, obj.id(), obj.Deepnet.id())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", doc.Resource, err)
	}
	enc, err := newEncoder(fields, obj.InputFields, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	dn := &Deepnet{
		resourceID: doc.Resource,
		objective:  objectiveID,
		fields:     fields,
		enc:        enc,
		layers:     obj.Deepnet.Network.Layers,
		output:     obj.Deepnet.Network.OutputExposition,
	}
	if err = dn.validate(); err != nil {
		return nil, fmt.Errorf("decoding %s: %v", doc.Resource, err)
	}
	return dn, nil
}

func (dn *Deepnet) validate() error {
	if len(dn.layers) == 0 {
		return fmt.Errorf("network has no layers")
	}
	width := dn.enc.width
	for i, l := range dn.layers {
		switch l.Activation {
		case Identity, Tanh, Sigmoid, ReLU, Softmax:
		case "":
			dn.layers[i].Activation = Identity
		default:
			return fmt.Errorf("layer %d: unknown activation function %q", i, l.Activation)
		}
		if len(l.Weights) == 0 || len(l.Offset) != len(l.Weights) {
			return fmt.Errorf("layer %d: %d weight rows and %d offsets", i, len(l.Weights), len(l.Offset))
		}
		for j, w := range l.Weights {
			if len(w) != width {
				return fmt.Errorf("layer %d: weight row %d has %d values, expected %d", i, j, len(w), width)
			}
		}
		width = len(l.Weights)
	}
	switch dn.output.Type {
	case "categorical":
		if len(dn.output.Values) != width {
			return fmt.Errorf("network has %d outputs for %d classes", width, len(dn.output.Values))
		}
	case "numeric":
		if width != 1 {
			return fmt.Errorf("network has %d outputs for a numeric objective", width)
		}
	default:
		return fmt.Errorf("unknown output type %q", dn.output.Type)
	}
	return nil
}

// Kind returns KindDeepnet
func (dn *Deepnet) Kind() Kind { return KindDeepnet }

// ResourceID returns the id of the deepnet's resource
func (dn *Deepnet) ResourceID() string { return dn.resourceID }

// Fields returns the field dictionary of the deepnet
func (dn *Deepnet) Fields() field.Fields { return dn.fields }

// ObjectiveField returns the id of the field the deepnet predicts
func (dn *Deepnet) ObjectiveField() string { return dn.objective }

/*
Predict takes an input record and runs the forward pass on its encoding.
Categorical outputs are turned into class probabilities (with softmax
unless the last layer already applies it) and the most probable class is
predicted; numeric outputs are scaled back with the objective's mean and
standard deviation.
*/
func (dn *Deepnet) Predict(record map[string]interface{}, opts Options) (*prediction.Record, error) {
	y, err := dn.enc.encode(record)
	if err != nil {
		return nil, err
	}
	for i := range dn.layers {
		y = dn.layers[i].forward(y)
	}
	if dn.output.Type == "numeric" {
		stdev := dn.output.Stdev
		if stdev == 0 {
			stdev = 1
		}
		return prediction.New(y[0]*stdev+dn.output.Mean, nil, 0), nil
	}
	if dn.layers[len(dn.layers)-1].Activation != Softmax {
		y = activate(Softmax, y)
	}
	probs := make(map[string]float64, len(y))
	for i, c := range dn.output.Values {
		probs[c] = y[i]
	}
	best, confidence := prediction.PredictedValue(probs)
	return prediction.New(best, nil, confidence, prediction.WithProbabilities(probs)), nil
}
