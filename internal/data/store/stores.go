package store

import (
	"context"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
)

// GetStores returns the Redis-backed stores when enabled and reachable. When Redis is
// offline it falls back to in-memory stores, or returns nils if fallback is off.
func GetStores(ctx context.Context, settings config.Settings) (chatModel.ChatStore, jobModel.JobStore) {
	if settings.UseRedis {
		chatStore := GetRedisChatStore(ctx, settings)
		jobStore := GetRedisJobStore(ctx, settings)
		if chatStore != nil && jobStore != nil {
			return chatStore, jobStore
		}
		inMemLogger.Error("Redis stores are offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return nil, nil
		}
	}
	return InitInMemoryChatStore(), InitInMemoryJobStore()
}
