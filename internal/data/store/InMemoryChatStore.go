package store

import (
	"context"
	"sync"

	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
)

type InMemoryChatStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string]chatModel.State
}

func InitInMemoryChatStore() *InMemoryChatStore {
	return &InMemoryChatStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string]chatModel.State),
	}
}

func (store *InMemoryChatStore) SaveChat(ctx context.Context, visitorId string, state chatModel.State) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[visitorId] = state
	inMemLogger.Debug("Saved chat to store", "visitorId", visitorId, "messages", len(state.Messages))
	return nil
}

func (store *InMemoryChatStore) GetChat(ctx context.Context, visitorId string) (chatModel.State, bool) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	state, ok := store.chatMap[visitorId]
	return state, ok
}

func (store *InMemoryChatStore) DeleteChat(ctx context.Context, visitorId string) {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.chatMap, visitorId)
}
