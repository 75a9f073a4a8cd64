package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	SessionTokenPrefix = "login:user:token"
	SessionTokenExpire = 30 * time.Minute
)

// SessionRepository mirrors the latest access token per user so a login
// elsewhere invalidates older sessions.
type SessionRepository struct{}

func (r *SessionRepository) AddUserToken(userID, token string) error {
	key := fmt.Sprintf("%s:%s", SessionTokenPrefix, userID)
	if err := Client.Set(context.Background(), key, token, SessionTokenExpire).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) GetUserToken(userID string) (string, error) {
	key := fmt.Sprintf("%s:%s", SessionTokenPrefix, userID)
	token, err := Client.Get(context.Background(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// ExtendUserToken slides the session expiry on successful auth.
func (r *SessionRepository) ExtendUserToken(userID string) error {
	key := fmt.Sprintf("%s:%s", SessionTokenPrefix, userID)
	if _, err := Client.Expire(context.Background(), key, SessionTokenExpire).Result(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) DeleteUserToken(userID string) error {
	key := fmt.Sprintf("%s:%s", SessionTokenPrefix, userID)
	if err := Client.Del(context.Background(), key).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
