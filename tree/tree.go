/*
Package tree walks decision and anomaly trees.

A Tree is built once from a model document and never modified
afterwards, so any number of goroutines may traverse the same Tree at
the same time.
*/
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/antoniomachine/bigml/field"
)

// Tree represents a decision or anomaly tree. It is composed of
// its root node and the field dictionary shared by all its nodes.
type Tree struct {
	Root   *Node
	Fields field.Fields
}

// New takes a root Node and the fields its predicates refer to and
// returns a Tree.
func New(root *Node, fields field.Fields) *Tree {
	return &Tree{Root: root, Fields: fields}
}

/*
Traverse takes an input record keyed by field id and walks the tree from
its root. It returns the depth the record reached and the rules of the
nodes it descended into.

If the record does not satisfy the root's predicates it does not belong
in the tree and Traverse returns 0 and an empty path. Otherwise the
depth is 1 at the root, and at each level the record descends into the
first child, in declaration order, whose predicates it satisfies; the
walk stops at a node with no children or no satisfied child.
*/
func (t *Tree) Traverse(record map[string]interface{}) (int, []string) {
	_, depth, path := t.Descend(record)
	return depth, path
}

/*
Descend walks the tree like Traverse and also returns the node where the
walk stopped, which is nil when the root's predicates are not satisfied.
*/
func (t *Tree) Descend(record map[string]interface{}) (*Node, int, []string) {
	if t.Root == nil {
		return nil, 0, []string{}
	}
	return descend(t.Root, record, t.Fields, []string{}, 0)
}

/*
Traverse walks the subtree under n the way Tree.Traverse does, starting
with the given path and depth. A depth of 0 marks n as a root whose own
predicates must be satisfied first.
*/
func Traverse(n *Node, record map[string]interface{}, fields field.Fields, path []string, depth int) (int, []string) {
	path = append([]string{}, path...)
	_, depth, path = descend(n, record, fields, path, depth)
	return depth, path
}

func descend(n *Node, record map[string]interface{}, fields field.Fields, path []string, depth int) (*Node, int, []string) {
	if depth == 0 {
		if !n.Predicates.Apply(record, fields) {
			return nil, 0, []string{}
		}
		depth++
	}
	for _, child := range n.Children {
		if child.Predicates.Apply(record, fields) {
			path = append(path, child.Predicates.Rule(fields, field.LabelName))
			return descend(child, record, fields, path, depth+1)
		}
	}
	return n, depth, path
}

/*
ListFields takes an io.Writer and a field ordering function (nil orders
by column) and writes a line with the name and optype of every field of
the tree. It returns the fields of the tree.
*/
func (t *Tree) ListFields(w io.Writer, less func(a, b *field.Field) bool) (field.Fields, error) {
	for _, f := range t.Fields.Sorted(less) {
		if _, err := fmt.Fprintf(w, "[%-32s: %s]\n", f.Name, f.Optype); err != nil {
			return nil, err
		}
	}
	return t.Fields, nil
}

// Walk takes a bottomup boolean and an error-returning function and
// goes through the tree calling the function with every node.
// Walk will call the function with a parent node before calling it
// for its children if bottomup is false, and after its children if
// bottomup is true. If a call returns an error, the walk is aborted
// and the error is returned.
func (t *Tree) Walk(bottomup bool, f func(*Node, int) error) error {
	if t.Root == nil {
		return nil
	}
	return walk(t.Root, 1, bottomup, f)
}

func walk(n *Node, depth int, bottomup bool, f func(*Node, int) error) error {
	if !bottomup {
		if err := f(n, depth); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := walk(child, depth+1, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		return f(n, depth)
	}
	return nil
}

/*
Validate returns an error if a predicate in the tree refers to a field
the tree does not declare.
*/
func (t *Tree) Validate() error {
	if t.Root == nil {
		return fmt.Errorf("tree has no root node")
	}
	return t.Walk(false, func(n *Node, _ int) error {
		for _, p := range n.Predicates.Predicates() {
			if _, ok := t.Fields[p.Field]; !ok {
				return fmt.Errorf("node %q: predicate on undeclared field %s", n.ID, p.Field)
			}
		}
		return nil
	})
}

// MaxDepth returns the depth of the deepest leaf.
func (t *Tree) MaxDepth() int {
	var deepest int
	t.Walk(false, func(_ *Node, depth int) error {
		if depth > deepest {
			deepest = depth
		}
		return nil
	})
	return deepest
}

func (t *Tree) String() string {
	if t.Root == nil {
		return ""
	}
	return t.subtreeString(t.Root)
}

func (t *Tree) subtreeString(n *Node) string {
	result := fmt.Sprintf("[%s]\n", n.ID)
	if rule := n.Predicates.Rule(t.Fields, field.LabelName); rule != "" {
		result = fmt.Sprintf("%s{ %s }\n", result, rule)
	}
	if n.Output != nil {
		result = fmt.Sprintf("%s{ %v (%v) }\n", result, n.Output, n.Confidence)
	}
	if !n.IsLeaf() {
		result = fmt.Sprintf("%s|\n", result)
	} else {
		result = fmt.Sprintf("%s \n", result)
	}
	for i, child := range n.Children {
		for j, line := range strings.Split(t.subtreeString(child), "\n") {
			if len(line) > 0 {
				if j == 0 {
					result = fmt.Sprintf("%s|__%s\n", result, line)
				} else {
					if i == len(n.Children)-1 {
						result = fmt.Sprintf("%s   %s\n", result, line)
					} else {
						result = fmt.Sprintf("%s|  %s\n", result, line)
					}
				}
			}
		}
	}
	return result
}
