package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

// memoryTokenStore is an in-memory token store for testing
type memoryTokenStore struct {
	token string
	saved bool
}

func (m *memoryTokenStore) Save(token string) error {
	m.token = token
	m.saved = true
	return nil
}

func (m *memoryTokenStore) Load() (string, error) {
	if m.token == "" {
		return "", tokenstore.ErrNotFound
	}
	return m.token, nil
}

func (m *memoryTokenStore) Delete() error {
	m.token = ""
	return nil
}

var _ tokenstore.Store = (*memoryTokenStore)(nil)

func TestStore_StartsLoadingWithPersistedToken(t *testing.T) {
	store := NewStore("abc123")

	sess := store.Current()
	assert.Equal(t, "abc123", sess.Token)
	assert.Nil(t, sess.User)
	assert.True(t, sess.Loading)
}

func TestStore_StartsSettledWithoutToken(t *testing.T) {
	store := NewStore("")

	sess := store.Current()
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
	assert.False(t, sess.Loading)
}

func TestStore_SubscribeInvokedAtRegistrationAndOnChange(t *testing.T) {
	store := NewStore("abc123")

	var seen []Session
	store.Subscribe(func(sess Session) {
		seen = append(seen, sess)
	})

	require.Len(t, seen, 1, "subscriber must fire synchronously at registration")
	assert.Equal(t, "abc123", seen[0].Token)

	store.Replace(Session{Token: "def456", Loading: false})

	require.Len(t, seen, 2, "subscriber must see the mutation before Replace returns")
	assert.Equal(t, "def456", seen[1].Token)
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore("")

	calls := 0
	unsubscribe := store.Subscribe(func(Session) { calls++ })
	unsubscribe()

	store.Replace(Session{Token: "abc123"})
	assert.Equal(t, 1, calls, "only the registration-time call should have happened")
}

func TestStore_ApplyIfTokenDiscardsStaleOutcome(t *testing.T) {
	store := NewStore("token-a")

	// The session moves on to token B while A's verification is in flight.
	store.Replace(Session{Token: "token-b", User: &User{ID: "2"}, Loading: false})

	applied := store.applyIfToken("token-a", func(s *Session) {
		s.Token = ""
		s.User = nil
	})

	assert.False(t, applied)
	sess := store.Current()
	assert.Equal(t, "token-b", sess.Token, "stale outcome must not overwrite the newer session")
	require.NotNil(t, sess.User)
	assert.Equal(t, "2", sess.User.ID)
}

func TestStore_ApplyIfTokenAppliesCurrentOutcome(t *testing.T) {
	store := NewStore("token-a")

	applied := store.applyIfToken("token-a", func(s *Session) {
		s.User = &User{ID: "1", Role: "user"}
		s.Loading = false
	})

	assert.True(t, applied)
	sess := store.Current()
	require.NotNil(t, sess.User)
	assert.Equal(t, "1", sess.User.ID)
	assert.False(t, sess.Loading)
}

func TestStore_WaitReturnsOnceSettled(t *testing.T) {
	store := NewStore("abc123")

	go func() {
		time.Sleep(10 * time.Millisecond)
		store.applyIfToken("abc123", func(s *Session) {
			s.User = &User{ID: "1"}
			s.Loading = false
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sess, err := store.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Loading)
	require.NotNil(t, sess.User)
}

func TestStore_WaitHonorsContext(t *testing.T) {
	store := NewStore("abc123") // never settles

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := store.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := NewStore("abc123")
	store.Replace(Session{Token: "abc123", User: &User{ID: "1"}})

	store.Clear()
	first := store.Current()
	store.Clear()
	second := store.Current()

	assert.Equal(t, first, second)
	assert.Empty(t, second.Token)
	assert.Nil(t, second.User)
	assert.False(t, second.Loading)
}
