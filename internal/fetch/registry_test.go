package fetch

import (
	"encoding/json"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	e, release := r.Register()
	assert.Regexp(t, regexp.MustCompile(`^painel_cb_[0-9a-z]{26}$`), e.Name())
	assert.Equal(t, 1, r.Len())

	select {
	case <-e.Done():
		t.Fatal("entry settled before invoke")
	default:
	}

	require.NoError(t, r.Invoke(e.Name(), json.RawMessage(`{"a":1}`)))
	require.NoError(t, r.Invoke(e.Name(), json.RawMessage(`{"a":2}`)))
	<-e.Done()
	assert.JSONEq(t, `{"a":1}`, string(e.Payload()))

	release()
	release()
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Invoke(e.Name(), json.RawMessage(`{}`)), ErrUnknownCallback)
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Invoke("painel_cb_missing", json.RawMessage(`null`)), ErrUnknownCallback)
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	const n = 64

	names := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, release := r.Register()
			defer release()
			names <- e.Name()
			assert.NoError(t, r.Invoke(e.Name(), json.RawMessage(`true`)))
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]bool, n)
	for name := range names {
		assert.False(t, seen[name], "duplicate callback name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, 0, r.Len())
}
