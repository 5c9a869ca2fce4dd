/*
Package redisstore provides a docstore.Store backed by a redis DB.
*/
package redisstore

import (
	"context"
	"fmt"

	"github.com/antoniomachine/bigml/docstore"
	"gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

//New builds a docstore.Store backed by a redis DB
//that keeps each document under the key prefix:id
func New(rc *redis.Client, prefix string) docstore.Store {
	return &redisStore{rc, prefix}
}

/*
Dial takes the address, password and database number of a redis server
and a key prefix, and returns a docstore.Store on it, or an error if the
server cannot be reached.
*/
func Dial(addr, password string, db int, prefix string) (docstore.Store, error) {
	rc := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rc.Ping().Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %v", addr, err)
	}
	return New(rc, prefix), nil
}

func (rs *redisStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return document(id)(rs.rc.Get(rs.keyFor(id)).Bytes())
}

// document returns a function turning the reply for id into a document
// or a docstore error.
func document(id string) func([]byte, error) ([]byte, error) {
	return func(data []byte, err error) ([]byte, error) {
		if err == redis.Nil {
			return nil, docstore.NotFound(id)
		}
		if err != nil {
			return nil, fmt.Errorf("retrieving document %q: %v", id, err)
		}
		return data, nil
	}
}

func (rs *redisStore) Put(ctx context.Context, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	redisID := rs.keyFor(id)
	_, err := rs.rc.Set(redisID, doc, 0).Result()
	if err != nil {
		return fmt.Errorf("storing document %q in redis: %v", redisID, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, id)
}
