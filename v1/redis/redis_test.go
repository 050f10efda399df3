package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chemsource/sourcing/v1/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (t *testObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, ctx)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Port: 6380, KeyPrefix: "app:"}.withDefaults()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
}

func TestNewClient_AppliesPrefix(t *testing.T) {
	client, err := NewClient(Config{KeyPrefix: "sourcing:"}, nil)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "sourcing:jobs", client.key("jobs"))
	assert.Equal(t, "localhost:6379", client.cfg.Address())
}

func TestNewClient_BadCACert(t *testing.T) {
	_, err := NewClient(Config{TLS: TLSConfig{Enabled: true, CACertPath: "/nonexistent/ca.pem"}}, nil)
	require.Error(t, err)
}

func TestAcquireLock_UnreachableServer(t *testing.T) {
	client, err := NewClient(Config{Host: "127.0.0.1", Port: 1, MaxRetries: -1, DialTimeout: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer client.Close()

	obs := &testObserver{}
	client.WithObserver(obs)

	_, err = Locker{Client: client}.Lock(context.Background(), "jobs", time.Second)
	require.Error(t, err)
	assert.False(t, IsLockNotAcquired(err))

	require.Len(t, obs.operations, 1)
	assert.Equal(t, "redis", obs.operations[0].Component)
	assert.Equal(t, "lock", obs.operations[0].Operation)
	assert.Equal(t, "jobs", obs.operations[0].Resource)
	assert.Equal(t, "error", obs.operations[0].Status())
}

func TestKeepAlive_StopsPromptly(t *testing.T) {
	client, err := NewClient(Config{Host: "127.0.0.1", Port: 1, MaxRetries: -1, DialTimeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer client.Close()

	lock := &Lock{client: client, key: "jobs", token: "t", ttl: 30 * time.Millisecond}
	stop := lock.KeepAlive(context.Background())
	time.Sleep(60 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		stop()
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop")
	}
}

func TestIsLockNotAcquired(t *testing.T) {
	assert.True(t, IsLockNotAcquired(errors.Join(errors.New("ctx"), ErrLockNotAcquired)))
	assert.False(t, IsLockNotAcquired(ErrLockNotHeld))
}

func TestClose_Twice(t *testing.T) {
	client, err := NewClient(Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
