package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix     = "refreshToken:"
	refreshUserPrefix = "refreshToken:user:"
	tmpPrefix         = "tmpToken:"
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func NewFromClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func refreshKey(token string) string { return refreshPrefix + token }

func refreshUserKey(userID uint64) string {
	return refreshUserPrefix + strconv.FormatUint(userID, 10)
}

func parseUserID(v string) (uint64, error) {
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New("redisstore: malformed user id " + strconv.Quote(v))
	}
	return id, nil
}

// SaveRefreshToken stores token as the user's only refresh token, dropping the previous one.
func (s *Store) SaveRefreshToken(ctx context.Context, userID uint64, token string, ttl time.Duration) error {
	userKey := refreshUserKey(userID)
	prev, err := s.rdb.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if prev != "" && prev != token {
			p.Del(ctx, refreshKey(prev))
		}
		p.Set(ctx, refreshKey(token), strconv.FormatUint(userID, 10), ttl)
		p.Set(ctx, userKey, token, ttl)
		return nil
	})
	return err
}

// GetRefreshTokenUser returns the owner of token, or redis.Nil if it is unknown or expired.
func (s *Store) GetRefreshTokenUser(ctx context.Context, token string) (uint64, error) {
	v, err := s.rdb.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		return 0, err
	}
	return parseUserID(v)
}

func (s *Store) DeleteRefreshToken(ctx context.Context, token string) error {
	uid, err := s.GetRefreshTokenUser(ctx, token)
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	userKey := refreshUserKey(uid)
	cur, err := s.rdb.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := []string{refreshKey(token)}
	if cur == token {
		keys = append(keys, userKey)
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// RevokeUser deletes whatever refresh token the user currently holds.
func (s *Store) RevokeUser(ctx context.Context, userID uint64) error {
	userKey := refreshUserKey(userID)
	token, err := s.rdb.Get(ctx, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.rdb.Del(ctx, refreshKey(token), userKey).Err()
}

func (s *Store) SaveTmpToken(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	return s.rdb.Set(ctx, tmpPrefix+token, strconv.FormatUint(userID, 10), ttl).Err()
}

// ConsumeTmpToken returns the user behind token and deletes it; redis.Nil if absent.
func (s *Store) ConsumeTmpToken(ctx context.Context, token string) (uint64, error) {
	v, err := s.rdb.GetDel(ctx, tmpPrefix+token).Result()
	if err != nil {
		return 0, err
	}
	return parseUserID(v)
}
