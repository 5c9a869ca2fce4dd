package tree

import (
	"fmt"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/predicate"
	"github.com/antoniomachine/bigml/prediction"
)

/*
Node is a node of the tree
*/
type Node struct {
	// An ID to identify the node in its document, if it has one
	ID string
	// The constraint this node imposes on records. A record may only
	// descend into the node when it satisfies every predicate.
	Predicates predicate.Set
	// The nodes directly under this node, in declaration order. The
	// first one whose predicates a record satisfies is the one the
	// record descends into.
	Children []*Node
	// The output for records that stop at this node, for decision trees.
	Output interface{}
	// The confidence of the output
	Confidence float64
	// The objective distribution of the training instances at this node
	Distribution     []prediction.Bin
	DistributionUnit string
	// The number of training instances at this node
	Count int
	// Statistics for numeric objectives
	Median, Min, Max *float64
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

/*
Prediction takes the path that led to the node and returns a
prediction.Record with the output and statistics of the node, the rules
of its children and any extra options given.
*/
func (n *Node) Prediction(path []string, childRules []string, extra ...prediction.Option) *prediction.Record {
	opts := []prediction.Option{prediction.WithDistribution(n.Distribution, n.DistributionUnit)}
	if n.Count > 0 {
		opts = append(opts, prediction.WithCount(n.Count))
	}
	if n.Median != nil {
		opts = append(opts, prediction.WithMedian(*n.Median))
	}
	if n.Min != nil {
		opts = append(opts, prediction.WithMin(*n.Min))
	}
	if n.Max != nil {
		opts = append(opts, prediction.WithMax(*n.Max))
	}
	if len(childRules) > 0 {
		opts = append(opts, prediction.WithChildren(childRules))
	}
	return prediction.New(n.Output, path, n.Confidence, append(opts, extra...)...)
}

/*
ChildRules takes the field dictionary and a label kind and returns the
rule of every child of the node, in declaration order.
*/
func (n *Node) ChildRules(fields field.Fields, label string) []string {
	if n.IsLeaf() {
		return []string{}
	}
	rules := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		rules = append(rules, c.Predicates.Rule(fields, label))
	}
	return rules
}

/*
Probabilities returns the share of training instances of every category
in the node's distribution, or nil when the distribution is empty.
*/
func (n *Node) Probabilities() map[string]float64 {
	var total int
	for _, b := range n.Distribution {
		total += b.Count
	}
	if total == 0 {
		return nil
	}
	probs := make(map[string]float64, len(n.Distribution))
	for _, b := range n.Distribution {
		probs[fmt.Sprintf("%v", b.Value)] += float64(b.Count) / float64(total)
	}
	return probs
}
