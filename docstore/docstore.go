/*
Package docstore defines where resource documents are looked up by their
resource id ("model/5f3c...") when a model reference does not carry the
document itself. Documents are opaque JSON byte slices to the store.

The subpackages provide backends on redis, bolt, SQL databases and
MongoDB. The store is not a cache: documents are placed in it by the
operator, for instance with the import command.
*/
package docstore

import (
	"context"
	"sync"
)

/*
Store is an interface to a place where resource documents are kept by
resource id.

All its methods take a context that may allow cancelling the operation
(thus forcing the return of an error) if the implementation allows it.
*/
type Store interface {
	// Get takes a resource id and returns the document stored for it,
	// an error wrapping ErrNotFound if there is none, or another error
	// if the store cannot be queried.
	Get(ctx context.Context, id string) ([]byte, error)
	// Put takes a resource id and a document and stores the document
	// under the id, replacing any previous one.
	Put(ctx context.Context, id string, doc []byte) error
	// Close releases the resources held by the store.
	Close(ctx context.Context) error
}

// StoreError represents an error related with document stores
type StoreError string

func (se StoreError) Error() string {
	return string(se)
}

// ErrNotFound is returned when a store holds no document for an id
const ErrNotFound = StoreError("document not found")

type memoryStore struct {
	docs map[string][]byte
	lock *sync.RWMutex
}

// NewMemoryStore returns an implementation
// of Store with the process memory space
// as underlying backend
func NewMemoryStore() Store {
	return &memoryStore{
		docs: make(map[string][]byte),
		lock: &sync.RWMutex{},
	}
}

func (ms *memoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := ms.withRLock(ctx, func(ctx context.Context) error {
		d, ok := ms.docs[id]
		if !ok {
			return NotFound(id)
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (ms *memoryStore) Put(ctx context.Context, id string, doc []byte) error {
	return ms.withLock(ctx, func(ctx context.Context) error {
		ms.docs[id] = append([]byte(nil), doc...)
		return nil
	})
}

func (ms *memoryStore) Close(ctx context.Context) error {
	return nil
}

func (ms *memoryStore) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.Lock()
		select {
		case <-ctx.Done():
			ms.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.Unlock()
	}
	return f(ctx)
}

func (ms *memoryStore) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.RLock()
		select {
		case <-ctx.Done():
			ms.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.RUnlock()
	}
	return f(ctx)
}
