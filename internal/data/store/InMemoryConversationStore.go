package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]docModel.ConversationTurn
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]docModel.ConversationTurn),
	}
}

func (store *InMemoryConversationStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryConversationStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]docModel.ConversationTurn, 0)
	return nil
}

func (store *InMemoryConversationStore) AppendTurns(ctx context.Context, id string, turns ...docModel.ConversationTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = append(store.chatMap[id], turns...)
	return nil
}

func (store *InMemoryConversationStore) GetRecentTurns(ctx context.Context, chatId string, limit int) ([]docModel.ConversationTurn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	turns := store.chatMap[chatId]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]docModel.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}
