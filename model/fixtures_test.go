package model

import (
	"context"
	"testing"

	"github.com/antoniomachine/bigml/docstore"
	"github.com/stretchr/testify/require"
)

const irisFields = `{
	"000000": {"name": "petal length", "optype": "numeric", "column_number": 0},
	"000001": {"name": "species", "optype": "categorical", "column_number": 1,
		"summary": {"categories": [["setosa", 50], ["versicolor", 50]]}}}`

const model1 = `{"resource": "model/1", "object": {"objective_field": "000001", "model": {
	"fields": ` + irisFields + `,
	"root": {"predicate": true, "output": "setosa", "confidence": 0.5,
		"objective_summary": {"categories": [["setosa", 50], ["versicolor", 50]]},
		"children": [
			{"predicate": {"operator": "<", "field": "000000", "value": 2.45},
				"output": "setosa", "confidence": 0.9,
				"objective_summary": {"categories": [["setosa", 48], ["versicolor", 2]]}},
			{"predicate": {"operator": ">=", "field": "000000", "value": 2.45},
				"output": "versicolor", "confidence": 0.9,
				"objective_summary": {"categories": [["setosa", 2], ["versicolor", 48]]}}]}}}}`

const model2 = `{"resource": "model/2", "object": {"objective_fields": ["000001"], "model": {
	"fields": ` + irisFields + `,
	"root": {"predicate": true, "output": "setosa", "confidence": 0.5,
		"objective_summary": {"categories": [["setosa", 50], ["versicolor", 50]]},
		"children": [
			{"predicate": {"operator": "<", "field": "000000", "value": 5},
				"output": "setosa", "confidence": 0.4,
				"objective_summary": {"categories": [["setosa", 30], ["versicolor", 20]]}},
			{"predicate": {"operator": ">=", "field": "000000", "value": 5},
				"output": "versicolor", "confidence": 0.9,
				"objective_summary": {"categories": [["versicolor", 50]]}}]}}}}`

const ensemble1 = `{"resource": "ensemble/1", "object": {"objective_field": "000001",
	"models": ["model/1", "model/2"]}}`

const regressionFields = `{
	"000000": {"name": "x", "optype": "numeric", "column_number": 0},
	"000001": {"name": "y", "optype": "numeric", "column_number": 1}}`

const numericEnsemble = `{"resource": "ensemble/2", "object": {"objective_field": "000001", "models": [
	{"resource": "model/3", "object": {"objective_field": "000001", "model": {"fields": ` + regressionFields + `,
		"root": {"output": 10, "confidence": 1, "count": 4}}}},
	{"resource": "model/4", "object": {"objective_field": "000001", "model": {"fields": ` + regressionFields + `,
		"root": {"output": 20, "confidence": 3, "count": 6}}}}]}}`

const logistic1 = `{"resource": "logisticregression/1", "object": {
	"objective_field": "000002",
	"input_fields": ["000000", "000001"],
	"logistic_regression": {
		"bias": true,
		"fields": {
			"000000": {"name": "x", "optype": "numeric", "column_number": 0},
			"000001": {"name": "colour", "optype": "categorical", "column_number": 1,
				"summary": {"categories": [["red", 3], ["blue", 2]]}},
			"000002": {"name": "class", "optype": "categorical", "column_number": 2,
				"summary": {"categories": [["a", 3], ["b", 2]]}}},
		"coefficients": [["a", [1, 0, 0, 0]], ["b", [-1, 0, 2, 0]]]}}}`

const deepnetFields = `{
	"000000": {"name": "x", "optype": "numeric", "column_number": 0},
	"000001": {"name": "label", "optype": "categorical", "column_number": 1,
		"summary": {"categories": [["pos", 1], ["neg", 1]]}}}`

const deepnet1 = `{"resource": "deepnet/1", "object": {"objective_field": "000001", "deepnet": {
	"fields": ` + deepnetFields + `,
	"network": {
		"layers": [
			{"weights": [[1], [-1]], "offset": [0, 0], "activation_function": "relu"},
			{"weights": [[1, 0], [0, 1]], "offset": [0, 0], "activation_function": "softmax"}],
		"output_exposition": {"type": "categorical", "values": ["pos", "neg"]}}}}}`

const deepnet2 = `{"resource": "deepnet/2", "object": {"objective_field": "000001", "deepnet": {
	"fields": ` + regressionFields + `,
	"network": {
		"layers": [{"weights": [[2]], "offset": [1], "activation_function": "identity"}],
		"output_exposition": {"type": "numeric", "mean": 10, "stdev": 2}}}}}`

func testResolver(t *testing.T) *StoreResolver {
	s := docstore.NewMemoryStore()
	ctx := context.Background()
	for id, doc := range map[string]string{
		"model/1":              model1,
		"model/2":              model2,
		"ensemble/1":           ensemble1,
		"ensemble/2":           numericEnsemble,
		"logisticregression/1": logistic1,
		"deepnet/1":            deepnet1,
		"deepnet/2":            deepnet2,
	} {
		require.NoError(t, s.Put(ctx, id, []byte(doc)))
	}
	return &StoreResolver{Store: s}
}

func resolve(t *testing.T, id string) *Document {
	doc, err := testResolver(t).Resolve(context.Background(), ResourceRef(id))
	require.NoError(t, err)
	return doc
}
