package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "painel/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAINEL_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAINEL_TEST_VALUE") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("PAINEL_TEST_VALUE"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "99999")
	_, err := LoadAndValidateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")

	t.Setenv("PORT", "8081")
	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
}

func TestInitSQLite(t *testing.T) {
	repo, err := InitSQLite(applog.Discard(), filepath.Join(t.TempDir(), "db", "painel.db"))
	require.NoError(t, err)
	defer repo.Close()
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestRunUntilSignalStopsOnFailure(t *testing.T) {
	var stopped atomic.Bool
	boom := errors.New("boom")

	err := RunUntilSignal(context.Background(), applog.Discard(), time.Second,
		Service{
			Name: "blocking",
			Run: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			Stop: func(context.Context) error {
				stopped.Store(true)
				return nil
			},
		},
		Service{
			Name: "failing",
			Run:  func(context.Context) error { return boom },
		},
	)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.True(t, stopped.Load())
}

func TestRunUntilSignalParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunUntilSignal(ctx, applog.Discard(), time.Second, Service{
			Name: "idle",
			Run: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunUntilSignal did not return after cancel")
	}
}
