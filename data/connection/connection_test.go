package connection

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ncobase/docpage/data/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutStores(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, c.MG)
	assert.Nil(t, c.RC)
	assert.Nil(t, c.FS)
	assert.NoError(t, c.Ping(ctx))
	assert.Empty(t, c.Close(ctx))
	assert.Empty(t, c.Close(ctx))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(ctx, &config.Config{Redis: &config.Redis{Addr: mr.Addr(), DialTimeout: time.Second}})
	require.NoError(t, err)
	require.NotNil(t, c.RC)
	assert.NoError(t, c.Ping(ctx))
	assert.Empty(t, c.Close(ctx))
	assert.Nil(t, c.RC)
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), &config.Config{Redis: &config.Redis{Addr: addr, DialTimeout: 200 * time.Millisecond}})
	assert.Error(t, err)
}

func TestNewMongoEmptyConfig(t *testing.T) {
	_, err := newMongoClient(context.Background(), &config.MongoDB{})
	assert.Error(t, err)
	_, err = newFirestoreClient(context.Background(), &config.Firestore{})
	assert.Error(t, err)
}
