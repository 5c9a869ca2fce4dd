package batch

import (
	"context"
	"fmt"

	"github.com/antoniomachine/bigml/dataset"
)

/*
Task is a record waiting to be scored, along with its position in the
batch results.
*/
type Task struct {
	Index  int
	Record dataset.Record
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %d}", t.Index)
}

/*
Queue hands out the tasks of a batch to workers. A worker pulls a task,
scores its record and then completes it.

Every method takes a context whose cancellation makes it return the
context's error.
*/
type Queue interface {
	// Push adds a pending task at the end of the queue.
	Push(context.Context, *Task) error
	// Pull takes the first pending task and marks it as in flight. It
	// returns nil and no error when nothing is pending.
	Pull(context.Context) (*Task, error)
	// Complete forgets the in-flight task at index.
	Complete(ctx context.Context, index int) error
	// Count returns the number of pending and in-flight tasks.
	Count(context.Context) (pending int, inFlight int, err error)
}

type memQueue struct {
	pending  []*Task
	inFlight map[int]*Task
	// sem holds a token while the queue is being modified
	sem chan struct{}
}

// NewQueue returns a Queue kept in process memory.
func NewQueue() Queue {
	return &memQueue{
		inFlight: make(map[int]*Task),
		sem:      make(chan struct{}, 1),
	}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	return mq.locked(ctx, func() {
		mq.pending = append(mq.pending, t)
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, error) {
	var t *Task
	err := mq.locked(ctx, func() {
		if len(mq.pending) == 0 {
			return
		}
		t = mq.pending[0]
		mq.pending[0] = nil
		mq.pending = mq.pending[1:]
		mq.inFlight[t.Index] = t
	})
	return t, err
}

func (mq *memQueue) Complete(ctx context.Context, index int) error {
	return mq.locked(ctx, func() {
		delete(mq.inFlight, index)
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, inFlight int
	err := mq.locked(ctx, func() {
		pending, inFlight = len(mq.pending), len(mq.inFlight)
	})
	return pending, inFlight, err
}

func (mq *memQueue) locked(ctx context.Context, f func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case mq.sem <- struct{}{}:
	}
	defer func() { <-mq.sem }()
	f()
	return nil
}
