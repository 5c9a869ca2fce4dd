package json

import (
	"strings"
	"testing"

	"github.com/antoniomachine/bigml/prediction"
	"github.com/antoniomachine/bigml/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anomalyTree = `{
	"fields": {
		"000000": {"name": "src_bytes", "optype": "numeric", "column_number": 0},
		"000001": {"name": "protocol", "optype": "categorical", "column_number": 1}
	},
	"predicates": true,
	"children": [
		{"predicates": [{"op": "<", "field": "000000", "value": 100},
		                {"op": "=", "field": "000001", "value": "tcp"}],
		 "children": [{"predicates": [{"op": ">=", "field": "000000", "value": 50}]}]},
		{"predicates": [{"op": ">=", "field": "000000", "value": 100}]}
	]
}`

func TestReadAnomalyTree(t *testing.T) {
	tr, err := ReadTree(strings.NewReader(anomalyTree))
	require.NoError(t, err)
	assert.Len(t, tr.Fields, 2)
	assert.Equal(t, predicate.Set{predicate.AlwaysTrue{}}, tr.Root.Predicates)
	require.Len(t, tr.Root.Children, 2)

	depth, path := tr.Traverse(map[string]interface{}{"000000": 60.0, "000001": "tcp"})
	assert.Equal(t, 3, depth)
	assert.Equal(t, []string{"src_bytes < 100 and protocol = tcp", "src_bytes >= 50"}, path)

	depth, path = tr.Traverse(map[string]interface{}{"000000": 60.0, "000001": "udp"})
	assert.Equal(t, 1, depth)
	assert.Empty(t, path)
}

const decisionTree = `{
	"fields": {
		"000002": {"name": "petal length", "optype": "numeric"},
		"000004": {"name": "species", "optype": "categorical"}
	},
	"root": {
		"id": 0, "predicate": true, "output": "Iris-setosa", "confidence": 0.26,
		"count": 150,
		"objective_summary": {"categories": [["Iris-setosa", 50], ["Iris-versicolor", 100]]},
		"children": [
			{"id": 1, "predicate": {"operator": "<=", "field": "000002", "value": 2.45},
			 "output": "Iris-setosa", "confidence": 0.93, "distribution": [["Iris-setosa", 50]]},
			{"id": 2, "predicate": {"operator": ">", "field": "000002", "value": 2.45},
			 "output": "Iris-versicolor", "confidence": 0.6,
			 "objective_summary": {"bins": [[4.1, 60], [5.5, 40]], "median": 4.3, "minimum": 3, "maximum": 6.9}}
		]
	}
}`

func TestDecodeDecisionTree(t *testing.T) {
	tr, err := DecodeTree([]byte(decisionTree))
	require.NoError(t, err)
	assert.Equal(t, "0", tr.Root.ID)
	assert.Equal(t, 150, tr.Root.Count)
	assert.Equal(t, prediction.UnitCategories, tr.Root.DistributionUnit)

	n, depth, path := tr.Descend(map[string]interface{}{"000002": 1.4})
	require.NotNil(t, n)
	assert.Equal(t, "1", n.ID)
	assert.Equal(t, 2, depth)
	assert.Equal(t, []string{"petal length <= 2.45"}, path)
	assert.Equal(t, []prediction.Bin{{Value: "Iris-setosa", Count: 50}}, n.Distribution)

	right := tr.Root.Children[1]
	assert.Equal(t, prediction.UnitBins, right.DistributionUnit)
	require.NotNil(t, right.Median)
	assert.Equal(t, 4.3, *right.Median)
	assert.Equal(t, 3.0, *right.Min)
	assert.Equal(t, 6.9, *right.Max)
}

func TestDecodeNodeWithoutPredicates(t *testing.T) {
	n, err := DecodeNode([]byte(`{"predicates": null, "children": [{}]}`))
	require.NoError(t, err)
	assert.True(t, n.Predicates.Unconditional())
	require.Len(t, n.Children, 1)
	assert.True(t, n.Children[0].Predicates.Unconditional())
	assert.Empty(t, n.DistributionUnit)
}

func TestDecodeTreeErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":         `{`,
		"no fields":        `{"predicates": true}`,
		"undeclared field": `{"fields": {}, "predicates": [{"op": "<", "field": "000000", "value": 1}]}`,
		"bad child":        `{"fields": {}, "predicates": true, "children": [{"predicates": false}]}`,
		"bad distribution": `{"fields": {}, "distribution": [[1]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTree([]byte(doc))
			assert.Error(t, err)
		})
	}
}
