package config_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight-core/pkg/config"
)

func TestConnStringReadBeforeWriteFailsFast(t *testing.T) {
	cs := config.NewConnString()

	_, err := cs.Get()
	require.ErrorIs(t, err, config.ErrNotInitialized)
}

func TestConnStringWriteOnce(t *testing.T) {
	cs := config.NewConnString()

	require.NoError(t, cs.Set("postgres://localhost/tasklight"))

	dsn, err := cs.Get()
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/tasklight", dsn)

	err = cs.Set("postgres://localhost/other")
	require.ErrorIs(t, err, config.ErrAlreadyInitialized)

	// first write sticks
	dsn, err = cs.Get()
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/tasklight", dsn)
}

func TestConnStringRejectsEmpty(t *testing.T) {
	cs := config.NewConnString()
	require.Error(t, cs.Set(""))

	_, err := cs.Get()
	require.ErrorIs(t, err, config.ErrNotInitialized)
}

func TestConnStringConcurrentReaders(t *testing.T) {
	cs := config.NewConnString()
	require.NoError(t, cs.Set("postgres://localhost/tasklight"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dsn, err := cs.Get()
			require.NoError(t, err)
			require.Equal(t, "postgres://localhost/tasklight", dsn)
		}()
	}
	wg.Wait()
}
