package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	errx "github.com/frontdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// TranscriptArchive receives a finished call's full message sequence.
// Archiving is best-effort: the live call state is in-memory only, and an
// archive failure never affects the conversation.
type TranscriptArchive interface {
	Archive(ctx context.Context, callSID string, messages []*schema.Message) error
}

// RedisTranscriptArchive stores transcripts as Redis lists with a TTL.
type RedisTranscriptArchive struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTranscriptArchive(rdb redis.Cmdable, ttl time.Duration) *RedisTranscriptArchive {
	return &RedisTranscriptArchive{rdb: rdb, ttl: ttl}
}

func (r *RedisTranscriptArchive) transcriptKey(callSID string) string {
	return fmt.Sprintf("transcript:%s:messages", callSID)
}

// Archive appends the call's messages to the transcript list and refreshes
// its TTL.
func (r *RedisTranscriptArchive) Archive(ctx context.Context, callSID string, messages []*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}

	rows := make([]any, 0, len(messages))
	for i, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			logx.Error().Err(err).Str("call_sid", callSID).Int("index", i).Msg("failed to marshal transcript message")
			return fmt.Errorf("marshal transcript message at index %d: %w", i, err)
		}
		rows = append(rows, b)
	}

	key := r.transcriptKey(callSID)
	if err := r.rdb.RPush(ctx, key, rows...).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push transcript to redis")
		return errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire on transcript")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on transcript key")
		}
	}
	return nil
}

var _ TranscriptArchive = (*RedisTranscriptArchive)(nil)
