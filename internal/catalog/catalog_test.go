package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibranibeny/text2sql"
)

type fakeIntrospector struct {
	snap  *text2sql.SchemaSnapshot
	err   error
	calls int
}

func (f *fakeIntrospector) Introspect(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

func TestSnapshotCachesFirstDiscovery(t *testing.T) {
	intro := &fakeIntrospector{snap: &text2sql.SchemaSnapshot{Database: "SalesDB"}}
	c := New(intro, nil)

	first, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, intro.calls, "second Snapshot must not re-introspect")
}

func TestRefreshAlwaysIntrospects(t *testing.T) {
	intro := &fakeIntrospector{snap: &text2sql.SchemaSnapshot{Database: "SalesDB"}}
	c := New(intro, nil)

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, intro.calls)

	// The refreshed snapshot is what later Snapshot calls return.
	intro.snap = &text2sql.SchemaSnapshot{Database: "OtherDB"}
	refreshed, err := c.Refresh(context.Background())
	require.NoError(t, err)
	cached, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, refreshed, cached)
}

func TestSnapshotWrapsDiscoveryFailure(t *testing.T) {
	intro := &fakeIntrospector{err: errors.New("connection refused")}
	c := New(intro, nil)

	_, err := c.Snapshot(context.Background())
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeSchemaDiscovery))
	assert.Contains(t, err.Error(), "connection refused")

	// A failed discovery leaves nothing cached.
	_, err = c.Snapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, intro.calls)
}
