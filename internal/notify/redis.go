package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// streamMaxLen caps the stream so that idle subscribers do not grow it without bound
const streamMaxLen = 10000

// Stream publishes notifications on a Redis stream that in-app clients read
type Stream struct {
	logger *zap.Logger
	client redis.UniversalClient
	topic  string
	now    func() time.Time
}

// NewStream connects to Redis. addr may list several nodes separated by ',' or ';'.
func NewStream(ctx context.Context, logger *zap.Logger, cfg config.RedisConfig) (*Stream, error) {
	addrs := strings.FieldsFunc(cfg.Addr, func(r rune) bool { return r == ',' || r == ';' })
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Stream{
		logger: logger.Named("notify.redis"),
		client: client,
		topic:  cfg.Topic,
		now:    time.Now,
	}, nil
}

func (s *Stream) Channel() Channel { return ChannelPush }

func (s *Stream) Send(ctx context.Context, to *database.User, msg Rendered) error {
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.topic,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"user_id":   to.ID,
			"event":     string(msg.Event),
			"subject":   msg.Subject,
			"body":      msg.Body,
			"timestamp": s.now().Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add message to stream: %w", err)
	}
	s.logger.Debug("published notification", zap.String("stream", s.topic), zap.String("id", id))
	return nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}
