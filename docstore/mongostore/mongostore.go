/*
Package mongostore provides a docstore.Store that uses a MongoDB
database as backend.
*/
package mongostore

import (
	"context"
	"fmt"
	"strings"

	"github.com/antoniomachine/bigml/docstore"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const (
	resourcesCollectionName = "resources"
)

type resource struct {
	ID       string `bson:"_id"`
	Kind     string `bson:"kind"`
	Document []byte `bson:"document"`
}

type mongoStore struct {
	session *mgo.Session
}

/*
New takes a MongoDB database session and returns a docstore.Store that
works on the default database for that session.
*/
func New(session *mgo.Session) docstore.Store {
	return &mongoStore{session}
}

/*
Dial takes a MongoDB URL and returns a docstore.Store on the database it
names, or an error if it fails to connect to it.
*/
func Dial(url string) (docstore.Store, error) {
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %v", err)
	}
	return New(session), nil
}

func (ms *mongoStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := ms.session.Copy()
	defer session.Close()
	r := &resource{}
	if err := lookupError(id, session.DB("").C(resourcesCollectionName).Find(bson.M{"_id": id}).One(r)); err != nil {
		return nil, err
	}
	return r.Document, nil
}

func lookupError(id string, err error) error {
	if err == mgo.ErrNotFound {
		return docstore.NotFound(id)
	}
	if err != nil {
		return fmt.Errorf("retrieving document %q: %v", id, err)
	}
	return nil
}

// newResource returns the record a document is kept as, with the kind
// taken from the resource id.
func newResource(id string, doc []byte) *resource {
	r := &resource{ID: id, Document: doc}
	if i := strings.Index(id, "/"); i > 0 {
		r.Kind = id[:i]
	}
	return r
}

func (ms *mongoStore) Put(ctx context.Context, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := ms.session.Copy()
	defer session.Close()
	_, err := session.DB("").C(resourcesCollectionName).UpsertId(id, newResource(id, doc))
	if err != nil {
		return fmt.Errorf("storing document %q: %v", id, err)
	}
	return nil
}

func (ms *mongoStore) Close(ctx context.Context) error {
	ms.session.Close()
	return nil
}
