/*
Package backend opens the docstore.Store a configuration selects.
*/
package backend

import (
	"context"
	"fmt"

	"github.com/antoniomachine/bigml/config"
	"github.com/antoniomachine/bigml/docstore"
	"github.com/antoniomachine/bigml/docstore/boltstore"
	"github.com/antoniomachine/bigml/docstore/mongostore"
	"github.com/antoniomachine/bigml/docstore/redisstore"
	"github.com/antoniomachine/bigml/docstore/sqlstore"
)

/*
Open takes the store configuration and returns the document store it
selects, or an error if the backend is unknown or cannot be reached.
*/
func Open(ctx context.Context, cfg config.Store) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return docstore.NewMemoryStore(), nil
	case config.BackendDir:
		return docstore.NewDirStore(cfg.Dir)
	case config.BackendRedis:
		return redisstore.Dial(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case config.BackendBolt:
		return boltstore.Open(cfg.Path)
	case config.BackendSQLite:
		return sqlstore.Open(ctx, sqlstore.SQLite3, cfg.Path)
	case config.BackendPostgres:
		return sqlstore.Open(ctx, sqlstore.Postgres, cfg.URL)
	case config.BackendMongo:
		return mongostore.Dial(cfg.URL)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
