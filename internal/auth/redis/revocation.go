package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked token ids and the live token ids of each
// user in Redis. Every key expires with the tokens it describes.
type RevocationStore struct {
	client *goredis.Client
	prefix string
}

func NewRevocationStore(client *goredis.Client, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "bodega"
	}
	return &RevocationStore{client: client, prefix: prefix}
}

func (s *RevocationStore) revokedKey(tokenID string) string {
	return s.prefix + ":auth:revoked:" + tokenID
}

func (s *RevocationStore) sessionsKey(userID int64) string {
	return s.prefix + ":auth:sessions:" + strconv.FormatInt(userID, 10)
}

// Track records tokenID as a live session of userID.
func (s *RevocationStore) Track(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	key := s.sessionsKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SAdd(ctx, key, tokenID)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("track session: %w", err)
	}
	return nil
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser revokes every tracked session of userID and returns how many
// were revoked.
func (s *RevocationStore) RevokeUser(ctx context.Context, userID int64, ttl time.Duration) (int, error) {
	key := s.sessionsKey(userID)

	ids, err := s.client.SMembers(ctx, key).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range ids {
			pipe.Set(ctx, s.revokedKey(id), "1", ttl)
		}
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return len(ids), nil
}

// Ping is used by the health check.
func (s *RevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
