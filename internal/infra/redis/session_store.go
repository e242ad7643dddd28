package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps anonymous quiz state in Redis, one hash per browser session:
//
//	HSET quiz:anon:{sessionID} {key} {json}
//
// The hash expires as a whole, matching cookie-backed session lifetime. A
// lifetime set with SetExpiry is kept in the hash under ttlField and wins
// over the store default on every later write.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

const ttlField = "__ttl_ms"

// setScript writes one field and re-arms the expiry from the session's own
// lifetime, falling back to the store default (ARGV[3], milliseconds).
var setScript = redis.NewScript(`
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
local ttl = tonumber(redis.call("HGET", KEYS[1], ARGV[4]) or ARGV[3])
if ttl > 0 then
	redis.call("PEXPIRE", KEYS[1], ttl)
end
return 1
`)

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sessionID, key string, dst any) (bool, error) {
	raw, err := s.client.HGet(ctx, s.key(sessionID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *SessionStore) Set(ctx context.Context, sessionID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return setScript.Run(ctx, s.client, []string{s.key(sessionID)}, key, raw, s.ttl.Milliseconds(), ttlField).Err()
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.key(sessionID), keys...).Err()
}

// SetExpiry changes the lifetime used for this session from now on. A
// non-positive ttl keeps the session until it is deleted.
func (s *SessionStore) SetExpiry(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(sessionID), ttlField, ttl.Milliseconds())
	if ttl > 0 {
		pipe.PExpire(ctx, s.key(sessionID), ttl)
	} else {
		pipe.Persist(ctx, s.key(sessionID))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:anon:" + sessionID
}
