package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "ingest", "clusters", "events", "runs", "pipelines", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestLoadServices_Memoised(t *testing.T) {
	calls := 0
	SetBootstrap(func(context.Context) (*Services, error) {
		calls++
		return &Services{}, nil
	})
	t.Cleanup(func() { SetBootstrap(nil) })

	first, err := loadServices(context.Background())
	require.NoError(t, err)
	second, err := loadServices(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadServices_Errors(t *testing.T) {
	SetBootstrap(nil)
	_, err := loadServices(context.Background())
	assert.EqualError(t, err, "services not configured")

	SetBootstrap(func(context.Context) (*Services, error) { return nil, errors.New("no embedder") })
	t.Cleanup(func() { SetBootstrap(nil) })
	_, err = loadServices(context.Background())
	assert.EqualError(t, err, "no embedder")
}

func TestCloseServices(t *testing.T) {
	closed := false
	SetBootstrap(func(context.Context) (*Services, error) {
		return &Services{Close: func() error { closed = true; return nil }}, nil
	})
	t.Cleanup(func() { SetBootstrap(nil) })
	_, err := loadServices(context.Background())
	require.NoError(t, err)

	closeServices()

	assert.True(t, closed)
	assert.Nil(t, services)
}

func TestSetVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	SetVersion("")
	assert.Equal(t, old, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
