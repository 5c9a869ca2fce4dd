package json

import (
	"encoding/json"
	"fmt"

	"github.com/antoniomachine/bigml/prediction"
	predjson "github.com/antoniomachine/bigml/predicate/json"
	"github.com/antoniomachine/bigml/tree"
)

type node struct {
	ID               interface{}       `json:"id"`
	Predicates       json.RawMessage   `json:"predicates"`
	Predicate        json.RawMessage   `json:"predicate"`
	Children         []json.RawMessage `json:"children"`
	Output           interface{}       `json:"output"`
	Confidence       float64           `json:"confidence"`
	Distribution     []prediction.Bin  `json:"distribution"`
	Count            int               `json:"count"`
	ObjectiveSummary *objectiveSummary `json:"objective_summary"`
}

type objectiveSummary struct {
	Categories []prediction.Bin `json:"categories"`
	Bins       []prediction.Bin `json:"bins"`
	Counts     []prediction.Bin `json:"counts"`
	Median     *float64         `json:"median"`
	Minimum    *float64         `json:"minimum"`
	Maximum    *float64         `json:"maximum"`
}

/*
DecodeNode takes the raw JSON for a node document and returns the
*tree.Node it describes together with all the nodes under it.
A node document is a JSON object with the following fields:
  - "predicates": true, a predicate object or a list of both (see
    predicate/json). The singular "predicate" is accepted as well, and a
    node with neither is unconditional.
  - "children": an optional list of node documents.
  - "id", "output", "confidence", "count", "distribution" and
    "objective_summary" (categories, bins or counts, plus median,
    minimum and maximum): the optional statistics of decision trees.
*/
func DecodeNode(data []byte) (*tree.Node, error) {
	jn := &node{}
	if err := json.Unmarshal(data, jn); err != nil {
		return nil, fmt.Errorf("decoding node: %v", err)
	}
	return jn.Node()
}

func (jn *node) Node() (*tree.Node, error) {
	n := &tree.Node{
		Output:     jn.Output,
		Confidence: jn.Confidence,
		Count:      jn.Count,
	}
	if jn.ID != nil {
		n.ID = fmt.Sprintf("%v", jn.ID)
	}
	raw := jn.Predicates
	if isAbsent(raw) {
		raw = jn.Predicate
	}
	if isAbsent(raw) {
		raw = json.RawMessage("true")
	}
	set, err := predjson.DecodeSet(raw)
	if err != nil {
		return nil, fmt.Errorf("node %q: %v", n.ID, err)
	}
	n.Predicates = set
	n.Distribution, n.DistributionUnit = jn.Distribution, prediction.UnitCategories
	if s := jn.ObjectiveSummary; s != nil {
		switch {
		case len(s.Categories) > 0:
			n.Distribution, n.DistributionUnit = s.Categories, prediction.UnitCategories
		case len(s.Bins) > 0:
			n.Distribution, n.DistributionUnit = s.Bins, prediction.UnitBins
		case len(s.Counts) > 0:
			n.Distribution, n.DistributionUnit = s.Counts, prediction.UnitCounts
		}
		n.Median, n.Min, n.Max = s.Median, s.Minimum, s.Maximum
	}
	if len(n.Distribution) == 0 {
		n.DistributionUnit = ""
	}
	for i, rc := range jn.Children {
		child, err := DecodeNode(rc)
		if err != nil {
			return nil, fmt.Errorf("child %d of node %q: %v", i, n.ID, err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
