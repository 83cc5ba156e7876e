package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/data/redisStore"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	st := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if st == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  st,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func chatKey(id string) string {
	return "chat:" + id
}

// chatInitMarker is the list entry written at chat creation so the key exists
// before the first turn. Reads skip it, it is not a turn record.
const chatInitMarker = "chat-init"

func (s *RedisConversationStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatKey(chatId))
	if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisConversationStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, chatKey(id)); err != nil && !s.store.IsNil(err) {
		log.Error("Error initializing chat", "error", err)
		return err
	}
	//the marker makes the key exist so ValidateChatId passes before the
	//first exchange lands
	if err := s.store.ListPush(ctx, chatKey(id), chatInitMarker); err != nil {
		log.Error("Error creating chat", "error", err)
		return err
	}
	if err := s.store.Expire(ctx, chatKey(id), config.RedisConversationStoreTTL); err != nil {
		log.Error("error setting chat ttl", "error:", err)
	}
	return nil
}

// AppendTurns pushes the turns onto the conversation list and refreshes its
// TTL so an active chat never expires mid-conversation.
func (s *RedisConversationStore) AppendTurns(ctx context.Context, id string, turns ...docModel.ConversationTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)

	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			log.Error("Error marshalling turn", "error", err)
			return err
		}
		values = append(values, data)
	}

	if len(values) > 0 {
		if err := s.store.ListPush(ctx, chatKey(id), values...); err != nil {
			log.Error("error saving chat", "error:", err)
			return err
		}
	}

	if err := s.store.Expire(ctx, chatKey(id), config.RedisConversationStoreTTL); err != nil {
		log.Error("error refreshing chat ttl", "error:", err)
	}
	log.Debug("Saved chat turns", "count", len(values))
	return nil
}

// GetRecentTurns returns the last limit turns, oldest first. Turns that do
// not unmarshal are skipped rather than failing the read.
func (s *RedisConversationStore) GetRecentTurns(ctx context.Context, chatId string, limit int) ([]docModel.ConversationTurn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting conversation history")

	raw, err := s.store.ListGetRecent(ctx, chatKey(chatId), limit)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]docModel.ConversationTurn, 0, len(raw))
	for _, entry := range raw {
		if entry == chatInitMarker {
			continue
		}
		var turn docModel.ConversationTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("Skipping unreadable turn", "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
