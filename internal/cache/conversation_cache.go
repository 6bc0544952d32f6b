package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ConversationListTTL = 2 * time.Minute
)

// ConversationCache keeps the per-user combined conversation list for a short
// TTL. It caches only the rendered payload; unread counts inside it were
// recomputed at fill time, and every write path invalidates the affected
// users, so a hit never serves counts older than the TTL.
type ConversationCache struct {
	redis *RedisCache
}

func NewConversationCache(redis *RedisCache) *ConversationCache {
	return &ConversationCache{redis: redis}
}

func listKey(userID uint) string {
	return fmt.Sprintf("convlist:%d", userID)
}

func (cc *ConversationCache) GetList(userID uint, out interface{}) bool {
	if cc == nil || cc.redis == nil {
		return false
	}
	data, err := cc.redis.Get(listKey(userID))
	if err != nil || data == nil {
		return false
	}
	return msgpack.Unmarshal(data, out) == nil
}

func (cc *ConversationCache) SetList(userID uint, payload interface{}) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	return cc.redis.Set(listKey(userID), data, ConversationListTTL)
}

func (cc *ConversationCache) Invalidate(userIDs ...uint) {
	if cc == nil || cc.redis == nil {
		return
	}
	for _, id := range userIDs {
		_ = cc.redis.Delete(listKey(id))
	}
}
