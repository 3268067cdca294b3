package credstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnv is an environment lookup with no overrides set.
func noEnv(string) string { return "" }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	if len(opts) == 0 {
		opts = []Option{WithEnvLookup(noEnv)}
	}
	return New(NewMemoryBackend(), opts...)
}

func TestStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("anthropic", "sk-abc"))

	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "anthropic", cred.ProviderID)
	assert.Equal(t, "sk-abc", cred.Secret)
}

func TestStore_SetTrimsSecret(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("anthropic", "  sk-abc  "))

	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "sk-abc", cred.Secret)
}

func TestStore_SetBlankSecret(t *testing.T) {
	store := newTestStore(t)

	err := store.Set("anthropic", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSecret)

	assert.Nil(t, store.Get("anthropic"))
}

func TestStore_SetOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("anthropic", "first"))
	require.NoError(t, store.Set("anthropic", "second"))

	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "second", cred.Secret)
}

func TestStore_GetAbsent(t *testing.T) {
	store := newTestStore(t)

	assert.Nil(t, store.Get("anthropic"))
	assert.False(t, store.Has("anthropic"))
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	// Deleting an absent entry is a success, not an error.
	require.NoError(t, store.Delete("anthropic"))

	require.NoError(t, store.Set("anthropic", "sk-abc"))
	require.NoError(t, store.Delete("anthropic"))
	assert.Nil(t, store.Get("anthropic"))

	require.NoError(t, store.Delete("anthropic"))
}

func TestStore_EnvOverrideWins(t *testing.T) {
	env := map[string]string{
		"ANTHROPIC_API_KEY": "env-key",
	}
	store := New(NewMemoryBackend(), WithEnvLookup(func(key string) string {
		return env[key]
	}))

	// Persist a different value; the environment must still win.
	require.NoError(t, store.Set("anthropic", "stored-key"))

	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "env-key", cred.Secret)
}

func TestStore_EnvOverrideTrimmedAndBlankIgnored(t *testing.T) {
	env := map[string]string{
		"ANTHROPIC_API_KEY":     "  padded-key  ",
		"GITHUBCOPILOT_API_KEY": "   ",
	}
	store := New(NewMemoryBackend(), WithEnvLookup(func(key string) string {
		return env[key]
	}))

	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "padded-key", cred.Secret)

	// Blank override falls through to persisted storage (absent here).
	assert.Nil(t, store.Get("githubCopilot"))
}

func TestStore_EnvKeyDerivation(t *testing.T) {
	assert.Equal(t, "ANTHROPIC_API_KEY", EnvKey("anthropic"))
	assert.Equal(t, "GITHUBCOPILOT_API_KEY", EnvKey("githubCopilot"))
	assert.Equal(t, "OPENAICODEX_API_KEY", EnvKey("openAICodex"))
}

func TestStore_Resolve(t *testing.T) {
	env := map[string]string{"ANTHROPIC_API_KEY": "env-key"}
	store := New(NewMemoryBackend(), WithEnvLookup(func(key string) string {
		return env[key]
	}))
	require.NoError(t, store.Set("openAICodex", "stored-key"))

	_, source := store.Resolve("anthropic")
	assert.Equal(t, SourceEnvironment, source)

	_, source = store.Resolve("openAICodex")
	assert.Equal(t, SourceStored, source)

	cred, source := store.Resolve("googleGeminiCli")
	assert.Nil(t, cred)
	assert.Equal(t, SourceNone, source)
}

// failingBackend fails every operation, for exercising StoreError wrapping.
type failingBackend struct{ err error }

func (b failingBackend) Put(string, []byte) error   { return b.err }
func (b failingBackend) Get(string) ([]byte, error) { return nil, b.err }
func (b failingBackend) Delete(string) error        { return b.err }

func TestStore_BackendFailureWrappedAsStoreError(t *testing.T) {
	backendErr := errors.New("disk full")
	store := New(failingBackend{err: backendErr}, WithEnvLookup(noEnv))

	err := store.Set("anthropic", "sk-abc")
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "set", storeErr.Op)
	assert.ErrorIs(t, err, backendErr)

	err = store.Delete("anthropic")
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete", storeErr.Op)

	// Read failures surface as an absent credential, not an error.
	assert.Nil(t, store.Get("anthropic"))
}

func TestStore_SetDeletesBeforeWrite(t *testing.T) {
	// A backend whose Delete fails must abort Set before Put runs, so a
	// partial failure never leaves two conflicting entries.
	backend := &orderingBackend{inner: NewMemoryBackend()}
	store := New(backend, WithEnvLookup(noEnv))

	require.NoError(t, store.Set("anthropic", "sk-abc"))
	require.Equal(t, []string{"delete", "put"}, backend.ops)

	backend.failDelete = true
	err := store.Set("anthropic", "sk-new")
	require.Error(t, err)

	// The previous value survives untouched.
	cred := store.Get("anthropic")
	require.NotNil(t, cred)
	assert.Equal(t, "sk-abc", cred.Secret)
}

type orderingBackend struct {
	inner      *MemoryBackend
	ops        []string
	failDelete bool
}

func (b *orderingBackend) Put(key string, value []byte) error {
	b.ops = append(b.ops, "put")
	return b.inner.Put(key, value)
}

func (b *orderingBackend) Get(key string) ([]byte, error) {
	return b.inner.Get(key)
}

func (b *orderingBackend) Delete(key string) error {
	b.ops = append(b.ops, "delete")
	if b.failDelete {
		return errors.New("delete failed")
	}
	return b.inner.Delete(key)
}
