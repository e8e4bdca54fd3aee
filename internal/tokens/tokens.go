package tokens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Validated remote-service tokens, keyed by user id. Self-contained mode
// keeps them in a local map, otherwise they live in redis so multiple
// backend instances can share sessions.

type entry struct {
	token   string
	expires time.Time
}

var mutex sync.RWMutex
var hashmap = make(map[uint64]entry)

var sugar *zap.SugaredLogger
var redisClient *redis.Client
var redisCtx = context.Background()
var selfContained = true

func Setup(_sugar *zap.SugaredLogger, _redisClient *redis.Client, _selfContained bool) {
	sugar = _sugar
	redisClient = _redisClient
	selfContained = _selfContained

	if selfContained {
		go checkForLocalExpiredTokens()
	}
}

func checkForLocalExpiredTokens() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mutex.Lock()
		for userID, e := range hashmap {
			if e.expires.Before(time.Now()) {
				delete(hashmap, userID)
			}
		}
		mutex.Unlock()
	}
}

func key(userID uint64) string {
	return fmt.Sprintf("discord_token:%d", userID)
}

func Set(userID uint64, token string, expires time.Duration) error {
	if selfContained {
		sugar.Debugf("Caching token of user ID [%d] in hashmap", userID)

		mutex.Lock()
		defer mutex.Unlock()

		hashmap[userID] = entry{token, time.Now().Add(expires)}
		return nil
	}

	sugar.Debugf("Caching token of user ID [%d] in redis", userID)
	return redisClient.Set(redisCtx, key(userID), token, expires).Err()
}

func Get(userID uint64) (string, error) {
	if selfContained {
		mutex.RLock()
		defer mutex.RUnlock()

		e := hashmap[userID]
		if e.token == "" || e.expires.Before(time.Now()) {
			return "", nil
		}
		return e.token, nil
	}

	token, err := redisClient.Get(redisCtx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return token, nil
}

func Delete(userID uint64) error {
	if selfContained {
		mutex.Lock()
		defer mutex.Unlock()

		delete(hashmap, userID)
		return nil
	}

	return redisClient.Del(redisCtx, key(userID)).Err()
}
