package main

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antoniomachine/bigml/batch"
	"github.com/antoniomachine/bigml/config"
	"github.com/antoniomachine/bigml/docstore"
	"github.com/antoniomachine/bigml/model"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{}`), 0o644))

	ref, err := parseReference(path)
	require.NoError(t, err)
	assert.Equal(t, model.FormPath, ref.Form)

	ref, err = parseReference("ensemble/5f3c")
	require.NoError(t, err)
	assert.Equal(t, model.FormResource, ref.Form)
	assert.Equal(t, "ensemble/5f3c", ref.ID)

	_, err = parseReference("not-a-model")
	assert.Error(t, err)
}

func TestPredictCmdConfigValidate(t *testing.T) {
	pcc := &predictCmdConfig{outputFormat: "jsonl"}
	assert.Error(t, pcc.Validate())
	pcc.modelRef = "model/1"
	assert.Error(t, pcc.Validate())
	pcc.input = `{"a": 1}`
	assert.NoError(t, pcc.Validate())
	pcc.inputFile = "records.csv"
	assert.Error(t, pcc.Validate())
	pcc.input = ""
	pcc.outputFormat = "xml"
	assert.Error(t, pcc.Validate())
}

func TestWriteCSVResults(t *testing.T) {
	results := []batch.Result{
		{Index: 0, Prediction: prediction.New("Iris-setosa", nil, 0.9)},
		{Index: 1, Err: errors.New("no prediction")},
	}
	var buf bytes.Buffer
	require.NoError(t, writeCSVResults(context.Background(), &buf, results))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "index,prediction,confidence,error", lines[0])
	assert.Equal(t, "0,Iris-setosa,0.9,?", lines[1])
	assert.Equal(t, "1,?,?,no prediction", lines[2])
}

func TestWriteJSONResults(t *testing.T) {
	results := []batch.Result{
		{Index: 0, Prediction: prediction.New(3.5, nil, 0.2)},
		{Index: 1, Err: errors.New("no prediction")},
	}
	var buf bytes.Buffer
	require.NoError(t, writeJSONResults(&buf, results))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"prediction":3.5`)
	assert.JSONEq(t, `{"index": 1, "error": "no prediction"}`, lines[1])
}

func TestImportDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := docstore.NewMemoryStore()

	good := filepath.Join(dir, "model.json")
	require.NoError(t, ioutil.WriteFile(good, []byte(`{"resource": "model/1", "object": {}}`), 0o644))
	id, err := importDocument(ctx, store, good)
	require.NoError(t, err)
	assert.Equal(t, "model/1", id)
	_, err = store.Get(ctx, "model/1")
	assert.NoError(t, err)

	bad := filepath.Join(dir, "source.json")
	require.NoError(t, ioutil.WriteFile(bad, []byte(`{"resource": "source/1"}`), 0o644))
	_, err = importDocument(ctx, store, bad)
	assert.Error(t, err)
}

func TestCheckImportBackend(t *testing.T) {
	err := checkImportBackend(config.Store{Backend: config.BackendMemory})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
	assert.NoError(t, checkImportBackend(config.Store{Backend: config.BackendDir, Dir: t.TempDir()}))
}

func TestImportRefusesDefaultStore(t *testing.T) {
	t.Setenv("BIGML_STORE_BACKEND", config.BackendMemory)
	rcc := &rootCmdConfig{}
	defer rcc.Cancel()
	icc := &importCmdConfig{rootCmdConfig: rcc, files: []string{"model.json"}}
	assert.Equal(t, 1, icc.run())
}

func TestRootCancel(t *testing.T) {
	rcc := &rootCmdConfig{}
	rcc.Cancel()
	ctx := rcc.Context()
	rcc.Cancel()
	assert.Error(t, ctx.Err())
}
