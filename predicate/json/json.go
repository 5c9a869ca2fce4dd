/*
Package json decodes the predicates of model documents.
*/
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/antoniomachine/bigml/predicate"
)

type jsonPredicate struct {
	Op       string      `json:"op"`
	Operator string      `json:"operator"`
	Field    string      `json:"field"`
	Value    interface{} `json:"value"`
	Term     *string     `json:"term"`
}

/*
DecodeSet takes the raw JSON found under a node's "predicates" (or
"predicate") key and returns the predicate.Set it describes.
Accepted forms are:
  - the literal true, decoded as a set with a single AlwaysTrue entry
  - a predicate object with "op" (or "operator"), "field", "value" and
    an optional "term"
  - a list mixing the two forms above
*/
func DecodeSet(data []byte) (predicate.Set, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decoding predicates: %v", err)
		}
		set := make(predicate.Set, 0, len(raws))
		for i, raw := range raws {
			e, err := DecodeEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding predicate %d: %v", i, err)
			}
			set = append(set, e)
		}
		return set, nil
	}
	e, err := DecodeEntry(data)
	if err != nil {
		return nil, err
	}
	return predicate.Set{e}, nil
}

/*
DecodeEntry takes the raw JSON for a single entry, either the literal
true or a predicate object, and returns the matching predicate.Entry.
*/
func DecodeEntry(data []byte) (predicate.Entry, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) {
		return predicate.AlwaysTrue{}, nil
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("expected true or a predicate object, got %s", data)
	}
	jp := &jsonPredicate{}
	if err := json.Unmarshal(data, jp); err != nil {
		return nil, err
	}
	return jp.Predicate()
}

func (jp *jsonPredicate) Predicate() (*predicate.Predicate, error) {
	op := jp.Op
	if op == "" {
		op = jp.Operator
	}
	operator, missing, err := predicate.ParseOperator(op)
	if err != nil {
		return nil, err
	}
	if jp.Field == "" {
		return nil, fmt.Errorf("predicate with operator %q has no field", op)
	}
	p := &predicate.Predicate{
		Operator: operator,
		Field:    jp.Field,
		Value:    jp.Value,
		Missing:  missing,
	}
	if jp.Term != nil {
		if *jp.Term == "" {
			return nil, fmt.Errorf("predicate on field %s has an empty term", jp.Field)
		}
		p.Term = *jp.Term
		if _, ok := jp.Value.(float64); !ok {
			return nil, fmt.Errorf("term predicate on field %s expects a numeric count, got %T", jp.Field, jp.Value)
		}
	}
	if operator == predicate.In {
		if _, ok := jp.Value.([]interface{}); !ok {
			return nil, fmt.Errorf("in predicate on field %s expects a list value, got %T", jp.Field, jp.Value)
		}
	}
	return p, nil
}
