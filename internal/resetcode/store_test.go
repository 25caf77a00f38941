package resetcode

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb)
}

func TestIssueAndVerify(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, store.Verify(ctx, "alice@example.com", code))

	// Single use: the same code cannot be verified twice.
	assert.Equal(t, ErrNoCode, store.Verify(ctx, "alice@example.com", code))
}

func TestVerifyWithoutCode(t *testing.T) {
	store := newTestStore(t)

	err := store.Verify(context.Background(), "nobody@example.com", "123456")
	assert.Equal(t, ErrNoCode, err)
}

func TestWrongCodeIsRetryable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.Equal(t, ErrInvalid, store.Verify(ctx, "alice@example.com", wrong))

	// The mismatch must not consume the entry.
	require.NoError(t, store.Verify(ctx, "alice@example.com", code))
}

func TestCheckLeavesCodeForConsume(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)

	// Check alone never consumes: a caller whose follow-up work fails after
	// a successful check can come back and check again.
	require.NoError(t, store.Check(ctx, "alice@example.com", code))
	require.NoError(t, store.Check(ctx, "alice@example.com", code))

	require.NoError(t, store.Consume(ctx, "alice@example.com"))
	assert.Equal(t, ErrNoCode, store.Check(ctx, "alice@example.com", code))
}

func TestReissueReplacesCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)

	if first != second {
		assert.Equal(t, ErrInvalid, store.Verify(ctx, "alice@example.com", first))
	}
	require.NoError(t, store.Verify(ctx, "alice@example.com", second))
}

func TestExpiredCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issued := time.Now()
	store.Now = func() time.Time { return issued }

	code, err := store.Issue(ctx, "alice@example.com")
	require.NoError(t, err)

	// Just inside the window the code still works; just past it, it is
	// expired and the entry is gone.
	store.Now = func() time.Time { return issued.Add(Validity + time.Second) }
	assert.Equal(t, ErrExpired, store.Verify(ctx, "alice@example.com", code))
	assert.Equal(t, ErrNoCode, store.Verify(ctx, "alice@example.com", code))
}

func TestSeparateEmailsDoNotInterfere(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	codeA, err := store.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	_, err = store.Issue(ctx, "b@example.com")
	require.NoError(t, err)

	require.NoError(t, store.Verify(ctx, "a@example.com", codeA))
	assert.Equal(t, ErrNoCode, store.Verify(ctx, "a@example.com", codeA))
}
