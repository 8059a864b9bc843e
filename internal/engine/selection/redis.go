// internal/engine/selection/redis.go

// Package selection provides access to persisted selection documents.
// The UI layer writes them; the engine only ever reads.
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pipeline-compiler/internal/common/database"
	commonerrors "pipeline-compiler/internal/common/errors"
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/engine/option"
)

// RedisStore loads per-instance selection documents from Redis. Each task
// instance holds one JSON document under {prefix}:{instanceID}.
type RedisStore struct {
	client *database.RedisClient
	prefix string
	logger logger.Logger
}

func NewRedisStore(client *database.RedisClient, prefix string, log logger.Logger) *RedisStore {
	if prefix == "" {
		prefix = "selections"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "selection-store"}),
	}
}

// Load fetches the selection document for a task instance. A missing key
// is not an error: the engine then synthesizes defaults for every option.
func (s *RedisStore) Load(ctx context.Context, instanceID string) (option.MapStore, error) {
	data, err := s.client.Get(ctx, s.key(instanceID))
	if errors.Is(err, redis.Nil) {
		return option.MapStore{}, nil
	}
	if err != nil {
		return nil, commonerrors.NewSelectionStoreUnavailableError(err)
	}

	var doc map[string]option.Selection
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		s.logger.Warn("stored selection document is not valid JSON, using defaults", map[string]interface{}{
			"instance": instanceID,
			"error":    err.Error(),
		})
		return option.MapStore{}, nil
	}
	return option.MapStore(doc), nil
}

func (s *RedisStore) key(instanceID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, instanceID)
}

// NewInstanceID mints an identifier for a fresh task instance.
func NewInstanceID() string {
	return uuid.NewString()
}

// LoadFile decodes a selection document from raw JSON, for the one-shot
// CLI path.
func LoadFile(data []byte) (option.MapStore, error) {
	var doc map[string]option.Selection
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, commonerrors.NewSelectionInvalidError(err.Error())
	}
	return option.MapStore(doc), nil
}
