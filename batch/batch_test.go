package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/antoniomachine/bigml/dataset"
	"github.com/antoniomachine/bigml/model"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doubler struct {
	calls int64
}

func (d *doubler) Predict(record map[string]interface{}, opts model.Options) (*prediction.Record, error) {
	atomic.AddInt64(&d.calls, 1)
	x, ok := record["x"].(float64)
	if !ok {
		return nil, errors.New("no x")
	}
	return prediction.New(2*x, nil, 1), nil
}

func TestRunPreservesOrder(t *testing.T) {
	records := make([]dataset.Record, 100)
	for i := range records {
		records[i] = dataset.Record{"x": float64(i)}
	}
	records[7] = dataset.Record{}
	d := &doubler{}
	results, err := Run(context.Background(), d, records, 8)
	require.NoError(t, err)
	require.Len(t, results, 100)
	assert.Equal(t, int64(100), d.calls)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if i == 7 {
			assert.Error(t, r.Err)
			assert.Nil(t, r.Prediction)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, 2*float64(i), r.Prediction.Output)
	}
}

func TestRunEmptyAndSingleWorker(t *testing.T) {
	results, err := Run(context.Background(), &doubler{}, nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = Run(context.Background(), &doubler{}, []dataset.Record{{"x": 1.0}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, results[0].Prediction.Output)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &doubler{}, []dataset.Record{{"x": 1.0}}, 2)
	assert.Error(t, err)
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(ctx, &Task{Index: i}))
	}
	t0, err := q.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, t0.Index)
	t1, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, &Task{Index: 3}))
	require.NoError(t, q.Push(ctx, &Task{Index: 4}))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pending)
	assert.Equal(t, 2, running)

	require.NoError(t, q.Complete(ctx, t0.Index))
	require.NoError(t, q.Complete(ctx, t1.Index))

	var order []int
	for {
		task, err := q.Pull(ctx)
		require.NoError(t, err)
		if task == nil {
			break
		}
		order = append(order, task.Index)
		require.NoError(t, q.Complete(ctx, task.Index))
	}
	assert.Equal(t, []int{2, 3, 4}, order)
	pending, running, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending+running)
	assert.Equal(t, "{Task 4}", fmt.Sprint(&Task{Index: 4}))
}
