package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/data/redisStore"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

type RedisChatStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisChatStore returns nil when Redis is offline.
func GetRedisChatStore(ctx context.Context, settings config.Settings) *RedisChatStore {
	s := redisStore.GetRedisStore(ctx, settings, config.RedisChatStore)
	if s == nil {
		return nil
	}
	return TestChatStore(s)
}

func (s *RedisChatStore) SaveChat(ctx context.Context, visitorId string, state chatModel.State) error {
	log := s.logger.WithTrace(ctx).With("visitorId", visitorId)
	data, err := json.Marshal(state)
	if err != nil {
		log.Error("Error marshalling chat", "error", err)
		return err
	}
	if err = s.store.Set(ctx, visitorId, data, config.RedisChatStoreTTL); err != nil {
		log.Error("Error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully", "messages", len(state.Messages))
	return nil
}

func (s *RedisChatStore) GetChat(ctx context.Context, visitorId string) (chatModel.State, bool) {
	var state chatModel.State
	log := s.logger.WithTrace(ctx).With("visitorId", visitorId)

	val, err := s.store.Get(ctx, visitorId)
	if s.store.IsNil(err) {
		return state, false
	} else if err != nil {
		log.Error("Error getting chat", "error", err)
		return state, false
	}

	if err = json.Unmarshal([]byte(val), &state); err != nil {
		log.Error("Stored chat is corrupt, dropping it", "error", err)
		s.DeleteChat(ctx, visitorId)
		return chatModel.State{}, false
	}
	if err = s.store.Touch(ctx, visitorId, config.RedisChatStoreTTL); err != nil {
		log.Warn("Could not refresh chat expiry", "error", err)
	}
	return state, true
}

func (s *RedisChatStore) DeleteChat(ctx context.Context, visitorId string) {
	if err := s.store.Del(ctx, visitorId); err != nil {
		s.logger.Error("Error deleting chat", "visitorId", visitorId, "error", err)
	}
}

func TestChatStore(store *redisStore.Store) *RedisChatStore {
	return &RedisChatStore{
		store:  store,
		logger: logger_i.NewLogger("ChatStore"),
	}
}
