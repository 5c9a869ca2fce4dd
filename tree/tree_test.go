package tree

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/predicate"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fields = field.Fields{
	"000000": {ID: "000000", Name: "x", Optype: field.Numeric, Column: 0},
	"000001": {ID: "000001", Name: "colour", Optype: field.Categorical, Column: 1},
}

func lt(v float64) *predicate.Predicate {
	return &predicate.Predicate{Operator: predicate.LessThan, Field: "000000", Value: v}
}

func ge(v float64) *predicate.Predicate {
	return &predicate.Predicate{Operator: predicate.GreaterOrEqual, Field: "000000", Value: v}
}

func is(v string) *predicate.Predicate {
	return &predicate.Predicate{Operator: predicate.Equal, Field: "000001", Value: v}
}

// testTree builds
//
//	root (true)
//	|__ a: x < 5
//	|   |__ a1: colour = red
//	|   |__ a2: x < 3
//	|__ b: x >= 5
func testTree() *Tree {
	return New(&Node{
		ID:         "root",
		Predicates: predicate.Set{predicate.AlwaysTrue{}},
		Children: []*Node{
			{ID: "a", Predicates: predicate.Set{lt(5)}, Output: "a", Children: []*Node{
				{ID: "a1", Predicates: predicate.Set{is("red")}, Output: "a1"},
				{ID: "a2", Predicates: predicate.Set{lt(3)}, Output: "a2"},
			}},
			{ID: "b", Predicates: predicate.Set{ge(5)}, Output: "b"},
		},
	}, fields)
}

func TestTraverseLiteralRootAdvances(t *testing.T) {
	depth, path := testTree().Traverse(map[string]interface{}{})
	assert.Equal(t, 1, depth)
	assert.Equal(t, []string{}, path)
}

func TestTraverseRootFails(t *testing.T) {
	tr := testTree()
	tr.Root.Predicates = predicate.Set{lt(0)}
	depth, path := tr.Traverse(map[string]interface{}{"000000": 1.0})
	assert.Equal(t, 0, depth)
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestTraversePath(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]interface{}
		depth  int
		path   []string
	}{
		{"deepest", map[string]interface{}{"000000": 2.0, "000001": "blue"}, 3, []string{"x < 5", "x < 3"}},
		{"stops without match", map[string]interface{}{"000000": 4.0}, 2, []string{"x < 5"}},
		{"leaf", map[string]interface{}{"000000": 7.0}, 2, []string{"x >= 5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depth, path := testTree().Traverse(tt.record)
			assert.Equal(t, tt.depth, depth)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestTraverseFirstMatchWins(t *testing.T) {
	// both a1 and a2 are satisfied, a1 is declared first
	n, depth, path := testTree().Descend(map[string]interface{}{"000000": 1.0, "000001": "red"})
	require.NotNil(t, n)
	assert.Equal(t, "a1", n.ID)
	assert.Equal(t, 3, depth)
	assert.Equal(t, []string{"x < 5", "colour = red"}, path)
}

func TestTraverseFromSubtree(t *testing.T) {
	tr := testTree()
	depth, path := Traverse(tr.Root.Children[0], map[string]interface{}{"000000": 1.0}, fields, []string{"x < 5"}, 2)
	assert.Equal(t, 3, depth)
	assert.Equal(t, []string{"x < 5", "x < 3"}, path)

	depth, path = Traverse(tr.Root.Children[1], map[string]interface{}{"000000": 1.0}, fields, nil, 0)
	assert.Equal(t, 0, depth)
	assert.Equal(t, []string{}, path)
}

func TestTraverseKeepsCallerPath(t *testing.T) {
	tr := testTree()
	prefix := make([]string, 1, 4)
	prefix[0] = "x < 5"
	backing := prefix[:2]
	_, path := Traverse(tr.Root.Children[0], map[string]interface{}{"000000": 1.0}, fields, prefix, 2)
	assert.Equal(t, []string{"x < 5", "x < 3"}, path)
	assert.Equal(t, "", backing[1])
	assert.Equal(t, []string{"x < 5"}, prefix)
}

func TestTraverseConcurrent(t *testing.T) {
	tr := testTree()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(x float64) {
			defer wg.Done()
			depth, _ := tr.Traverse(map[string]interface{}{"000000": x})
			assert.True(t, depth >= 2)
		}(float64(i))
	}
	wg.Wait()
}

func TestDescendNilRoot(t *testing.T) {
	n, depth, path := (&Tree{}).Descend(map[string]interface{}{})
	assert.Nil(t, n)
	assert.Equal(t, 0, depth)
	assert.Empty(t, path)
}

func TestListFields(t *testing.T) {
	var buf bytes.Buffer
	fs, err := testTree().ListFields(&buf, nil)
	require.NoError(t, err)
	assert.Len(t, fs, 2)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "x")
	assert.Contains(t, string(lines[0]), "numeric")
	assert.Contains(t, string(lines[1]), "categorical")
}

func TestWalkOrder(t *testing.T) {
	var top, bottom []string
	tr := testTree()
	require.NoError(t, tr.Walk(false, func(n *Node, _ int) error { top = append(top, n.ID); return nil }))
	require.NoError(t, tr.Walk(true, func(n *Node, _ int) error { bottom = append(bottom, n.ID); return nil }))
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, top)
	assert.Equal(t, []string{"a1", "a2", "a", "b", "root"}, bottom)

	stop := errors.New("stop")
	assert.Equal(t, stop, tr.Walk(false, func(*Node, int) error { return stop }))
	assert.Equal(t, 3, tr.MaxDepth())
}

func TestValidate(t *testing.T) {
	tr := testTree()
	require.NoError(t, tr.Validate())
	tr.Root.Children[1].Predicates = predicate.Set{&predicate.Predicate{Operator: predicate.Equal, Field: "000009", Value: 1.0}}
	assert.Error(t, tr.Validate())
	assert.Error(t, (&Tree{}).Validate())
}

func TestString(t *testing.T) {
	s := testTree().String()
	assert.Contains(t, s, "[root]")
	assert.Contains(t, s, "|__[a]")
	assert.Contains(t, s, "{ x < 5 }")
}

func TestNodePrediction(t *testing.T) {
	median := 2.0
	n := &Node{Output: 2.5, Confidence: 0.3, Median: &median}
	r := n.Prediction([]string{"x < 5"}, []string{"x < 3"})
	assert.Equal(t, 2.5, r.Output)
	assert.Equal(t, []string{"x < 3"}, r.Children)
	assert.Equal(t, 2.0, *r.Median)
	assert.Equal(t, 0, r.Count)
}

func TestNodeChildRules(t *testing.T) {
	tr := testTree()
	assert.Equal(t, []string{"x < 5", "x >= 5"}, tr.Root.ChildRules(tr.Fields, field.LabelName))
	assert.Equal(t, []string{}, tr.Root.Children[1].ChildRules(tr.Fields, field.LabelName))
}

func TestNodeProbabilities(t *testing.T) {
	n := &Node{Distribution: []prediction.Bin{{Value: "yes", Count: 3}, {Value: "no", Count: 1}}}
	assert.Equal(t, map[string]float64{"yes": 0.75, "no": 0.25}, n.Probabilities())
	assert.Nil(t, (&Node{}).Probabilities())

	r := n.Prediction(nil, nil, prediction.WithProbabilities(n.Probabilities()))
	assert.Equal(t, 0.75, r.ProbabilityOf("yes"))
	assert.Equal(t, 4, r.Count)
}
