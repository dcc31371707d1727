package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"mockexam-service/internal/models"

	"github.com/redis/go-redis/v9"
)

type LeaderboardRow struct {
	Rank       *int     `json:"rank"`
	Name       string   `json:"name"`
	Score      float64  `json:"score"`
	TotalMarks float64  `json:"totalMarks"`
	Percentage float64  `json:"percentage"`
	Accuracy   float64  `json:"accuracy"`
	TimeSpent  int      `json:"timeSpent"`
	Percentile *float64 `json:"percentile"`
}

type UserStanding struct {
	Rank       *int     `json:"rank"`
	Percentile *float64 `json:"percentile"`
	Score      float64  `json:"score"`
}

type Leaderboard struct {
	Rows              []LeaderboardRow `json:"leaderboard"`
	UserRank          *UserStanding    `json:"userRank"`
	TotalParticipants int64            `json:"totalParticipants"`
	CurrentPage       int              `json:"currentPage"`
	TotalPages        int              `json:"totalPages"`
}

type GlobalRow struct {
	Rank         int     `json:"rank"`
	Name         string  `json:"name"`
	BestScore    float64 `json:"bestScore"`
	AverageScore float64 `json:"averageScore"`
	TotalTests   int     `json:"totalTests"`
}

type GlobalStanding struct {
	Rank       int64   `json:"rank"`
	TotalUsers int64   `json:"totalUsers"`
	Percentile float64 `json:"percentile"`
}

type GlobalLeaderboard struct {
	TopPerformers []GlobalRow    `json:"topPerformers"`
	UserStanding  GlobalStanding `json:"userGlobalRank"`
}

// LeaderboardService serves rank-ordered pages. Per-test pages sit behind a
// short-TTL redis cache that the submit path invalidates; a nil redis client
// simply disables the cache.
type LeaderboardService struct {
	Results ResultStore
	Users   UserStore
	Redis   *redis.Client
	TTL     time.Duration
}

func NewLeaderboardService(results ResultStore, users UserStore, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{Results: results, Users: users, Redis: rdb, TTL: 30 * time.Second}
}

func (s *LeaderboardService) cacheKey(testID string, limit, page int) string {
	return fmt.Sprintf("leaderboard:test:%s:%d:%d", testID, limit, page)
}

// ForTest returns one page of the test's leaderboard plus the caller's own
// standing. The page body is cached per (test, limit, page); the user
// standing is always read fresh since it is cheap and caller-specific.
func (s *LeaderboardService) ForTest(ctx context.Context, testID, userID string, limit, page int) (*Leaderboard, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	board, err := s.cachedPage(ctx, testID, limit, page)
	if err != nil {
		return nil, err
	}

	standing, err := s.Results.FindUserStanding(ctx, testID, userID)
	if err == nil {
		board.UserRank = &UserStanding{
			Rank:       standing.Rank,
			Percentile: standing.Percentile,
			Score:      standing.Score.ObtainedMarks,
		}
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return board, nil
}

func (s *LeaderboardService) cachedPage(ctx context.Context, testID string, limit, page int) (*Leaderboard, error) {
	key := s.cacheKey(testID, limit, page)
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached Leaderboard
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	board, err := s.buildPage(ctx, testID, limit, page)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(board); err == nil {
			if err := s.Redis.Set(ctx, key, raw, s.TTL).Err(); err != nil {
				log.Printf("Failed to cache leaderboard %s: %v", key, err)
			}
		}
	}
	return board, nil
}

func (s *LeaderboardService) buildPage(ctx context.Context, testID string, limit, page int) (*Leaderboard, error) {
	results, err := s.Results.FindRanked(ctx, testID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.Results.CountByTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(results))
	for _, r := range results {
		name := ""
		if user, err := s.Users.FindByID(ctx, r.UserID); err == nil {
			name = user.Name
		}
		rows = append(rows, LeaderboardRow{
			Rank:       r.Rank,
			Name:       name,
			Score:      r.Score.ObtainedMarks,
			TotalMarks: r.Score.TotalMarks,
			Percentage: r.Score.Percentage,
			Accuracy:   math.Round(r.Accuracy()*100) / 100,
			TimeSpent:  r.TimeMetrics.TotalTime,
			Percentile: r.Percentile,
		})
	}
	return &Leaderboard{
		Rows:              rows,
		TotalParticipants: total,
		CurrentPage:       page,
		TotalPages:        int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Invalidate drops every cached page for the test. Key cardinality is tiny
// (a handful of limit/page combinations), so a SCAN is fine.
func (s *LeaderboardService) Invalidate(ctx context.Context, testID string) {
	if s.Redis == nil {
		return
	}
	pattern := fmt.Sprintf("leaderboard:test:%s:*", testID)
	iter := s.Redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.Redis.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to invalidate %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("Leaderboard cache scan failed for test %s: %v", testID, err)
	}
}

// Global ranks users across every test by their running stats.
func (s *LeaderboardService) Global(ctx context.Context, userID string, limit int) (*GlobalLeaderboard, error) {
	if limit <= 0 {
		limit = 20
	}
	top, err := s.Users.FindTopPerformers(ctx, limit)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	better, err := s.Users.CountWithBetterAverage(ctx, user.Stats.AverageScore)
	if err != nil {
		return nil, err
	}

	board := &GlobalLeaderboard{}
	for i, u := range top {
		board.TopPerformers = append(board.TopPerformers, GlobalRow{
			Rank:         i + 1,
			Name:         u.Name,
			BestScore:    u.Stats.BestScore,
			AverageScore: math.Round(u.Stats.AverageScore*100) / 100,
			TotalTests:   u.Stats.TotalTests,
		})
	}
	rank := better + 1
	board.UserStanding = GlobalStanding{
		Rank:       rank,
		TotalUsers: totalUsers,
		Percentile: math.Round(float64(totalUsers-rank+1)/float64(totalUsers)*100*100) / 100,
	}
	return board, nil
}
