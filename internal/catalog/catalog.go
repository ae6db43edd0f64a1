// Package catalog discovers and caches the structural metadata of the target
// database: tables, columns, types, keys, and row counts.
package catalog

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Introspector performs one live discovery pass against the database.
type Introspector interface {
	Introspect(ctx context.Context) (*text2sql.SchemaSnapshot, error)
}

// Catalog caches the snapshot produced by an Introspector. The first
// Snapshot call introspects; later calls return the cached snapshot without a
// database round-trip until Refresh is called. Concurrent first-population is
// tolerated: duplicate discovery passes may run, and the last writer wins.
type Catalog struct {
	introspector Introspector
	log          logrus.FieldLogger

	mu   sync.RWMutex
	snap *text2sql.SchemaSnapshot
}

// New creates a Catalog backed by the given introspector.
func New(introspector Introspector, log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Catalog{introspector: introspector, log: log}
}

// Snapshot implements text2sql.SchemaCatalog.
func (c *Catalog) Snapshot(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return c.Refresh(ctx)
}

// Refresh implements text2sql.SchemaCatalog. It always re-introspects.
func (c *Catalog) Refresh(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	snap, err := c.introspector.Introspect(ctx)
	if err != nil {
		return nil, text2sql.NewSchemaDiscoveryError(err)
	}
	c.log.WithFields(logrus.Fields{
		"database": snap.Database,
		"tables":   snap.TableCount(),
	}).Info("schema discovered")

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap, nil
}
