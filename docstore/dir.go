package docstore

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

/*
NotFound takes a resource id and returns an error wrapping ErrNotFound
that names it. Backends use it so callers can match any miss with
errors.Is.
*/
func NotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

type dirStore struct {
	dir string
}

/*
NewDirStore takes a directory and returns a Store keeping every document
in a file of its own inside it, named after the resource id with the
slash replaced by an underscore ("model_5f3c....json"). The directory is
created if it does not exist.
*/
func NewDirStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating document directory %q: %v", dir, err)
	}
	return &dirStore{dir}, nil
}

func (ds *dirStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := ds.pathFor(id)
	if err != nil {
		return nil, err
	}
	doc, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving document %q: %v", id, err)
	}
	return doc, nil
}

func (ds *dirStore) Put(ctx context.Context, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := ds.pathFor(id)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err = ioutil.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("storing document %q: %v", id, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storing document %q: %v", id, err)
	}
	return nil
}

func (ds *dirStore) Close(ctx context.Context) error {
	return nil
}

func (ds *dirStore) pathFor(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid resource id %q", id)
	}
	return filepath.Join(ds.dir, strings.Replace(id, "/", "_", -1)+".json"), nil
}
