package model

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"

	"github.com/antoniomachine/bigml/docstore"
	"github.com/antoniomachine/bigml/metrics"
	"github.com/antoniomachine/bigml/multivote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		id   string
		kind Kind
		ok   bool
	}{
		{"model/1", KindModel, true},
		{"ensemble/abc", KindEnsemble, true},
		{"logisticregression/1", KindLogisticRegression, true},
		{"deepnet/1", KindDeepnet, true},
		{"cluster/1", 0, false},
		{"model", 0, false},
		{"model/", 0, false},
		{"/1", 0, false},
	}
	for _, tt := range tests {
		k, err := KindOf(tt.id)
		if !tt.ok {
			assert.Error(t, err, tt.id)
			continue
		}
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.kind, k)
	}
	assert.Equal(t, "logisticregression", KindLogisticRegression.String())
}

func TestTreeModelPredict(t *testing.T) {
	m, err := NewTreeModel(resolve(t, "model/1"))
	require.NoError(t, err)
	assert.Equal(t, "000001", m.ObjectiveField())

	r, err := m.Predict(map[string]interface{}{"petal length": 1.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "setosa", r.Output)
	assert.Equal(t, 0.9, r.Confidence)
	assert.Equal(t, []string{"petal length < 2.45"}, r.Path)
	assert.Equal(t, 0.96, r.ProbabilityOf("setosa"))
	assert.Equal(t, 50, r.Count)
	assert.Empty(t, r.Children)

	r, err = m.Predict(map[string]interface{}{"000000": "3"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "versicolor", r.Output)
}

func TestTreeModelMissingInputStopsAtRoot(t *testing.T) {
	m, err := NewTreeModel(resolve(t, "model/1"))
	require.NoError(t, err)
	r, err := m.Predict(map[string]interface{}{"species": "setosa"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "setosa", r.Output)
	assert.Equal(t, []string{}, r.Path)
	assert.Equal(t, []string{"petal length < 2.45", "petal length >= 2.45"}, r.Children)
	assert.Equal(t, 100, r.Count)

	_, err = m.Predict(map[string]interface{}{"petal length": "long"}, Options{})
	assert.Error(t, err)
}

func TestTreeModelRequiresObjective(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"resource": "model/9", "object": {"objective_field": "000009",
		"model": {"fields": ` + irisFields + `, "root": {"output": "setosa"}}}}`))
	require.NoError(t, err)
	_, err = NewTreeModel(doc)
	assert.True(t, errors.Is(err, ErrMissingObjective))
}

func TestEnsembleCategorical(t *testing.T) {
	e, err := NewEnsemble(context.Background(), resolve(t, "ensemble/1"), testResolver(t))
	require.NoError(t, err)
	require.Len(t, e.Members(), 2)
	assert.Equal(t, "000001", e.ObjectiveField())

	r, err := e.Predict(map[string]interface{}{"petal length": 3.0}, Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, "versicolor", r.Output)
	assert.Equal(t, 0.68, r.Confidence)
	assert.Equal(t, 0.32, r.ProbabilityOf("setosa"))
	assert.Equal(t, 100, r.Count)

	votes := multivote.New([]float64{0.04, 0.96}, []float64{0.6, 0.4})
	combined, err := votes.Combine(false)
	require.NoError(t, err)
	r, err = e.Predict(map[string]interface{}{"petal length": 3.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, combined[1], r.Confidence)
}

const unlabelledFields = `{
	"000000": {"name": "x", "optype": "numeric", "column_number": 0},
	"000001": {"name": "label", "optype": "categorical", "column_number": 1}}`

func TestEnsembleCategoriesFromLeafOutputs(t *testing.T) {
	doc := `{"resource": "ensemble/3", "object": {"objective_field": "000001", "models": [
		{"resource": "model/5", "object": {"objective_field": "000001", "model": {"fields": ` + unlabelledFields + `,
			"root": {"output": "yes", "confidence": 0.7}}}}]}}`
	d, err := New(context.Background(), DocumentRef([]byte(doc)), nil)
	require.NoError(t, err)
	r, err := d.Predict(map[string]interface{}{"x": 1}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "yes", r.Output)
	assert.Equal(t, 1.0, r.ProbabilityOf("yes"))
}

func TestEnsembleWithoutCategories(t *testing.T) {
	doc := `{"resource": "ensemble/4", "object": {"objective_field": "000001", "models": [
		{"resource": "model/6", "object": {"objective_field": "000001", "model": {"fields": ` + unlabelledFields + `,
			"root": {"confidence": 0.7}}}}]}}`
	_, err := New(context.Background(), DocumentRef([]byte(doc)), nil)
	assert.Error(t, err)
}

func TestEnsembleNumericAverages(t *testing.T) {
	e, err := NewEnsemble(context.Background(), resolve(t, "ensemble/2"), nil)
	require.NoError(t, err)
	for _, normalize := range []bool{false, true} {
		r, err := e.Predict(map[string]interface{}{"x": 1.0}, Options{Normalize: normalize})
		require.NoError(t, err)
		assert.Equal(t, 15.0, r.Output)
		assert.Equal(t, 2.0, r.Confidence)
		assert.Equal(t, 10, r.Count)
	}
}

func TestEnsembleMissingMember(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"resource": "ensemble/3", "object": {"models": ["model/1", "model/404"]}}`))
	require.NoError(t, err)
	_, err = NewEnsemble(context.Background(), doc, testResolver(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model/404")

	doc, err = ParseDocument([]byte(`{"resource": "ensemble/4", "object": {"models": []}}`))
	require.NoError(t, err)
	_, err = NewEnsemble(context.Background(), doc, testResolver(t))
	assert.Error(t, err)
}

func TestLogisticRegression(t *testing.T) {
	lr, err := NewLogisticRegression(resolve(t, "logisticregression/1"))
	require.NoError(t, err)

	r, err := lr.Predict(map[string]interface{}{"x": 2.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a", r.Output)
	assert.InDelta(t, 0.8808, r.Confidence, 1e-3)
	assert.InDelta(t, 1.0, r.ProbabilityOf("a")+r.ProbabilityOf("b"), 1e-9)

	r, err = lr.Predict(map[string]interface{}{"x": 0.0, "colour": "blue"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "b", r.Output)
}

func TestLogisticRegressionCoefficientShape(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"resource": "logisticregression/2", "object": {
		"objective_field": "000001",
		"logistic_regression": {"fields": ` + regressionFields + `,
			"coefficients": [["a", [1, 2, 3]]]}}}`))
	require.NoError(t, err)
	_, err = NewLogisticRegression(doc)
	assert.Error(t, err)
}

func TestDeepnetCategorical(t *testing.T) {
	dn, err := NewDeepnet(resolve(t, "deepnet/1"))
	require.NoError(t, err)

	r, err := dn.Predict(map[string]interface{}{"x": 2.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "pos", r.Output)
	assert.InDelta(t, 0.8808, r.Confidence, 1e-3)

	r, err = dn.Predict(map[string]interface{}{"x": -1.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "neg", r.Output)
	assert.InDelta(t, 0.7311, r.Confidence, 1e-3)
}

func TestDeepnetNumeric(t *testing.T) {
	dn, err := NewDeepnet(resolve(t, "deepnet/2"))
	require.NoError(t, err)
	r, err := dn.Predict(map[string]interface{}{"x": 3.0}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 24.0, r.Output)
}

func TestDeepnetShapeErrors(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"resource": "deepnet/3", "object": {"objective_field": "000001", "deepnet": {
		"fields": ` + regressionFields + `,
		"network": {"layers": [{"weights": [[2, 1]], "offset": [1]}],
			"output_exposition": {"type": "numeric"}}}}}`))
	require.NoError(t, err)
	_, err = NewDeepnet(doc)
	assert.Error(t, err)
}

func TestDispatcherKinds(t *testing.T) {
	resolver := testResolver(t)
	for id, kind := range map[string]Kind{
		"model/1":              KindModel,
		"ensemble/1":           KindEnsemble,
		"logisticregression/1": KindLogisticRegression,
		"deepnet/1":            KindDeepnet,
	} {
		d, err := New(context.Background(), ResourceRef(id), resolver)
		require.NoError(t, err, id)
		assert.Equal(t, kind, d.Kind())
		assert.Equal(t, id, d.ResourceID())
		assert.NotEmpty(t, d.Fields())
	}
}

func TestDispatcherReferenceForms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(model1), 0o644))
	for _, ref := range []Reference{DocumentRef([]byte(model1)), PathRef(path), ResourceRef("model/1")} {
		d, err := New(context.Background(), ref, testResolver(t))
		require.NoError(t, err, ref.String())
		r, err := d.Predict(map[string]interface{}{"petal length": 1.0}, Options{})
		require.NoError(t, err)
		assert.Equal(t, "setosa", r.Output)
	}
	assert.Equal(t, "document of model/1", DocumentRef([]byte(model1)).String())
}

func TestDispatcherResolutionErrors(t *testing.T) {
	refs := map[string]Reference{
		"unknown kind":      DocumentRef([]byte(`{"resource": "cluster/1", "object": {}}`)),
		"missing resource":  ResourceRef("model/404"),
		"unparseable":       DocumentRef([]byte(`{"resource": `)),
		"no resource id":    DocumentRef([]byte(`{"object": {}}`)),
		"missing file":      PathRef(filepath.Join(t.TempDir(), "none.json")),
		"broken model tree": DocumentRef([]byte(`{"resource": "model/5", "object": {"model": {}}}`)),
	}
	for name, ref := range refs {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), ref, testResolver(t))
			var re *ResolutionError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, ref.String(), re.Reference)
			assert.Contains(t, err.Error(), "model, ensemble, logisticregression, deepnet")
		})
	}
	_, err := New(context.Background(), ResourceRef("model/404"), testResolver(t))
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
	_, err = New(context.Background(), ResourceRef("model/1"), nil)
	assert.Error(t, err)
}

func TestDispatcherMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	d, err := New(context.Background(), ResourceRef("ensemble/1"), testResolver(t), WithMetrics(m))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = d.Predict(map[string]interface{}{"petal length": 1.0}, Options{Normalize: true})
		require.NoError(t, err)
	}
	_, err = d.Predict(map[string]interface{}{"petal length": "x"}, Options{})
	require.Error(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Predictions.WithLabelValues("ensemble")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionErrors.WithLabelValues("ensemble")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Combinations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("store")))
}

func TestDispatcherConcurrentPredictions(t *testing.T) {
	d, err := New(context.Background(), ResourceRef("ensemble/1"), testResolver(t))
	require.NoError(t, err)
	var wg sync.WaitGroup
	results := make([]interface{}, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := d.Predict(map[string]interface{}{"petal length": float64(i % 8)}, Options{Normalize: true})
			if err == nil {
				results[i] = r.Output
			}
		}(i)
	}
	wg.Wait()
	for i, out := range results {
		if i%8 < 3 {
			assert.Equal(t, "setosa", out, i)
		} else {
			assert.Equal(t, "versicolor", out, i)
		}
	}
}
