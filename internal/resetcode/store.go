package resetcode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"taskboard/pkg/crypto"

	"github.com/go-redis/redis/v8"
)

// Validity is how long an issued code can be verified.
const Validity = 10 * time.Minute

var (
	ErrNoCode  = errors.New("no reset code found")
	ErrExpired = errors.New("reset code expired")
	ErrInvalid = errors.New("invalid reset code")
)

type entry struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Store keeps at most one live reset code per email in Redis. Expiry is
// decided against the stored expiresAt so an expired code is reported as
// expired (and removed) rather than silently missing; the Redis TTL is only
// a cleanup backstop for entries nobody verifies.
type Store struct {
	rdb *redis.Client

	// Now is the clock used for expiry checks, overridable in tests.
	Now func() time.Time
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, Now: time.Now}
}

func key(email string) string {
	return "resetcode:" + email
}

// Issue generates a fresh 6-digit code for the email, replacing any prior
// unconsumed code, and returns it.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := crypto.GenerateResetCode()
	if err != nil {
		return "", err
	}
	e := entry{
		Code:      code,
		ExpiresAt: s.Now().Add(Validity).Unix(),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(email), data, 2*Validity).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Check compares the supplied code against the stored one without consuming
// it. A mismatch leaves the entry in place so the correct code can still be
// retried until it expires; an expired entry is removed. Callers that accept
// the code must follow up with Consume.
func (s *Store) Check(ctx context.Context, email, code string) error {
	data, err := s.rdb.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return ErrNoCode
	}
	if err != nil {
		return err
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return err
	}

	if s.Now().Unix() > e.ExpiresAt {
		s.rdb.Del(ctx, key(email))
		return ErrExpired
	}
	if code != e.Code {
		return ErrInvalid
	}
	return nil
}

// Consume removes the entry for the email so an accepted code cannot be
// replayed.
func (s *Store) Consume(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, key(email)).Err()
}

// Verify checks the supplied code and, on a match, consumes it in one step.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	if err := s.Check(ctx, email, code); err != nil {
		return err
	}
	return s.Consume(ctx, email)
}
