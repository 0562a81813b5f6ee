package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Cache-specific helpers are isolated here so quiz_service.go can focus on
// orchestration. The cache only ever holds public projections, so a stale or
// missing entry can always be rebuilt from the database.

func quizCacheKey(id int64) string {
	return fmt.Sprintf("quiz:%d", id)
}

func (s *QuizService) cachedQuiz(ctx context.Context, id int64) (*QuizResponse, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, quizCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("quiz cache read failed for %d: %v", id, err)
		}
		return nil, false
	}
	var response QuizResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, false
	}
	return &response, true
}

func (s *QuizService) storeQuiz(ctx context.Context, response *QuizResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, quizCacheKey(response.ID), raw, s.cacheTTL).Err(); err != nil {
		log.Printf("quiz cache write failed for %d: %v", response.ID, err)
	}
}

func (s *QuizService) invalidateQuiz(ctx context.Context, id int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, quizCacheKey(id)).Err(); err != nil {
		log.Printf("quiz cache invalidation failed for %d: %v", id, err)
	}
}
