package model

import (
	"fmt"

	"github.com/antoniomachine/bigml/field"
)

/*
encoder turns an input record into the numeric vector linear and neural
models score. Numeric fields take one slot holding their value (0 when
absent). Categorical fields take one slot per category, set to 1 for the
record's category (all 0 when absent or unknown). Fields of any other
optype are not model inputs.
*/
type encoder struct {
	fields field.Fields
	inputs []string
	width  int
}

/*
newEncoder takes the field dictionary, the ids of the input fields in
model order (nil to use every field by column) and the objective id,
which is never an input.
*/
func newEncoder(fields field.Fields, inputs []string, objective string) (*encoder, error) {
	if inputs == nil {
		for _, f := range fields.Sorted(field.ByColumn) {
			inputs = append(inputs, f.ID)
		}
	}
	enc := &encoder{fields: fields}
	for _, id := range inputs {
		if id == objective {
			continue
		}
		f, ok := fields[id]
		if !ok {
			return nil, fmt.Errorf("input field %s is not declared", id)
		}
		switch f.Optype {
		case field.Numeric:
			enc.width++
		case field.Categorical:
			if len(f.Categories()) == 0 {
				return nil, fmt.Errorf("categorical input field %s declares no categories", id)
			}
			enc.width += len(f.Categories())
		default:
			continue
		}
		enc.inputs = append(enc.inputs, id)
	}
	return enc, nil
}

func (enc *encoder) encode(record map[string]interface{}) ([]float64, error) {
	input, err := enc.fields.Normalize(record)
	if err != nil {
		return nil, err
	}
	x := make([]float64, 0, enc.width)
	for _, id := range enc.inputs {
		f := enc.fields[id]
		v, present := input[id]
		if f.Optype == field.Numeric {
			var n float64
			if present {
				n = v.(float64)
			}
			x = append(x, n)
			continue
		}
		s := fmt.Sprintf("%v", v)
		for _, c := range f.Categories() {
			if present && c == s {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}
	return x, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
