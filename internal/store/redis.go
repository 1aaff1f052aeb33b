package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/moin-chess/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultNamespace = "chess"

var errNilRecord = errors.New("nil game record")

// RedisStore persists game records as JSON under <namespace>:game:<id>.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore wraps rdb. A ttl of 0 keeps records until evicted.
func NewRedisStore(rdb *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{rdb: rdb, namespace: strings.TrimSpace(namespace), ttl: ttl}
}

// OpenRedis connects to a redis:// or rediss:// URL and pings it.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := ParseRedisURL(rawURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) key(id string) string {
	return s.namespace + ":game:" + strings.TrimSpace(id)
}

// TryCreate relies on SETNX so two renders racing on a new id cannot both win.
func (s *RedisStore) TryCreate(ctx context.Context, id string, rec *domain.GameRecord) (bool, error) {
	if rec == nil {
		return false, errNilRecord
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal game record: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.key(id), raw, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *RedisStore) Read(ctx context.Context, id string) (*domain.GameRecord, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec domain.GameRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode game record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Overwrite(ctx context.Context, id string, rec *domain.GameRecord) error {
	if rec == nil {
		return errNilRecord
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal game record: %w", err)
	}
	return s.rdb.Set(ctx, s.key(id), raw, s.ttl).Err()
}

// ParseRedisURL turns redis://[:password@]host[:port][/db] into client options.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "6379"
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: host + ":" + port, Password: pass, DB: db}, nil
}
