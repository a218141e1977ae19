package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"personality-quiz-system/internal/models"
)

// RedisCache holds composite quiz detail views. Entries are keyed by quiz id;
// every mutation to a quiz or its children invalidates the entry.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func detailKey(quizID string) string {
	return "quiz:detail:" + quizID
}

func (c *RedisCache) SetQuizDetail(detail *models.QuizDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, detailKey(detail.Quiz.ID), data, 24*time.Hour).Err()
}

func (c *RedisCache) GetQuizDetail(quizID string) (*models.QuizDetail, error) {
	data, err := c.client.Get(c.ctx, detailKey(quizID)).Bytes()
	if err != nil {
		return nil, err
	}

	var detail models.QuizDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *RedisCache) InvalidateQuiz(quizID string) error {
	return c.client.Del(c.ctx, detailKey(quizID)).Err()
}
