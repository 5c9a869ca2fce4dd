/*
Package association holds the rules of association models and exports
them as CSV rows or JSON objects.
*/
package association

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
)

/*
Rule is an association rule: the items on its left hand side imply the
items on its right hand side with the given strength measures. Covers and
support are [count, fraction] pairs and may be absent.
*/
type Rule struct {
	ID         string    `json:"id"`
	LHS        []int     `json:"lhs"`
	RHS        []int     `json:"rhs"`
	LHSCover   []float64 `json:"lhs_cover"`
	RHSCover   []float64 `json:"rhs_cover"`
	Support    []float64 `json:"support"`
	Confidence float64   `json:"confidence"`
	Leverage   float64   `json:"leverage"`
	Lift       float64   `json:"lift"`
	PValue     float64   `json:"p_value"`
}

/*
Item is an entry of the item list the rule sides refer to by index.
*/
type Item struct {
	Name    string `json:"name"`
	FieldID string `json:"field_id"`
}

/*
Describe takes the item list of the association and renders the rule
with item names, as in "{bread, butter} -> {milk}". Indexes out of the
list are rendered as numbers.
*/
func (r *Rule) Describe(items []Item) string {
	return fmt.Sprintf("%s -> %s", describeSide(r.LHS, items), describeSide(r.RHS, items))
}

func describeSide(side []int, items []Item) string {
	names := make([]string, len(side))
	for i, idx := range side {
		if idx >= 0 && idx < len(items) {
			names[i] = items[idx].Name
		} else {
			names[i] = fmt.Sprintf("%d", idx)
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

/*
Association is the part of an association document the rules live in.
*/
type Association struct {
	Items []Item  `json:"items"`
	Rules []*Rule `json:"rules"`
}

/*
ReadAssociation takes an io.Reader with an association document and
returns its items and rules. The document may be a full resource (with
the association under "object"."associations"), the associations object
itself, or a bare object with "items" and "rules".
*/
func ReadAssociation(r io.Reader) (*Association, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading association: %v", err)
	}
	doc := &struct {
		Object *struct {
			Associations *Association `json:"associations"`
		} `json:"object"`
		Associations *Association `json:"associations"`
		Association
	}{}
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decoding association: %v", err)
	}
	a := &doc.Association
	switch {
	case doc.Object != nil && doc.Object.Associations != nil:
		a = doc.Object.Associations
	case doc.Associations != nil:
		a = doc.Associations
	}
	for i, rule := range a.Rules {
		if rule == nil {
			return nil, fmt.Errorf("decoding association: rule %d is null", i)
		}
	}
	return a, nil
}
