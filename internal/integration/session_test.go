package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Sessions live in Redis so instances share them; this covers the store
// round trip against a real server.
func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7")
	if err != nil {
		t.Skipf("docker unavailable: %s", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	defer client.Close()

	sessionManager := scs.New()
	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = time.Minute

	sessionCtx, err := sessionManager.Load(ctx, "")
	require.NoError(t, err)

	sessionManager.Put(sessionCtx, "customerID", 42)

	token, _, err := sessionManager.Commit(sessionCtx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	reloaded, err := sessionManager.Load(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 42, sessionManager.GetInt(reloaded, "customerID"))
}
