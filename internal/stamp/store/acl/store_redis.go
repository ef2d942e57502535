package acl

import (
	"context"

	"github.com/redis/go-redis/v9"

	id "meterai/pkg/domain"
)

const aclKeyPrefix = "stamp:acl:"

// RedisStore is a Redis-backed access list for deployments where several
// instances share read-gating state. Each token's list is a Redis set, which
// gives the same idempotent grant/revoke semantics as the in-memory store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed ACL store. The client lifecycle is
// managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func aclKey(tokenID id.TokenID) string {
	return aclKeyPrefix + tokenID.String()
}

func (s *RedisStore) Grant(ctx context.Context, tokenID id.TokenID, grantee id.Identity) error {
	return s.client.SAdd(ctx, aclKey(tokenID), grantee.String()).Err()
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID id.TokenID, grantee id.Identity) error {
	return s.client.SRem(ctx, aclKey(tokenID), grantee.String()).Err()
}

func (s *RedisStore) IsGranted(ctx context.Context, tokenID id.TokenID, grantee id.Identity) (bool, error) {
	granted, err := s.client.SIsMember(ctx, aclKey(tokenID), grantee.String()).Result()
	if err != nil {
		return false, err
	}
	return granted, nil
}
