package service

import (
	"context"
	"testing"
	"time"

	"mockexam-service/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func seedResult(t *testing.T, results *fakeResultStore, users *fakeUserStore, testID, name string, marks float64, rank int) string {
	t.Helper()
	userID := users.add(&models.User{Name: name, Email: name + "@example.com"})
	percentile := 100.0
	r := &models.Result{
		UserID:     userID,
		TestID:     testID,
		Rank:       &rank,
		Percentile: &percentile,
		Score:      models.Score{ObtainedMarks: marks, TotalMarks: 100},
	}
	if err := results.Create(context.Background(), r); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	return userID
}

func leaderboardFixture(t *testing.T) (*LeaderboardService, *fakeResultStore, *fakeUserStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	results := newFakeResultStore()
	users := newFakeUserStore()
	return NewLeaderboardService(results, users, rdb), results, users, mr
}

func TestLeaderboardServesCachedPage(t *testing.T) {
	svc, results, users, _ := leaderboardFixture(t)
	userID := seedResult(t, results, users, "test-1", "alice", 80, 1)

	board, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if len(board.Rows) != 1 || board.TotalParticipants != 1 {
		t.Fatalf("expected 1 row, got %d rows / %d participants", len(board.Rows), board.TotalParticipants)
	}
	if board.Rows[0].Name != "alice" {
		t.Errorf("expected row name alice, got %q", board.Rows[0].Name)
	}

	// New submissions are not visible until the cache entry expires or is
	// invalidated.
	seedResult(t, results, users, "test-1", "bob", 90, 1)

	board, err = svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if len(board.Rows) != 1 {
		t.Errorf("expected cached page with 1 row, got %d", len(board.Rows))
	}
}

func TestLeaderboardInvalidateDropsCache(t *testing.T) {
	svc, results, users, _ := leaderboardFixture(t)
	userID := seedResult(t, results, users, "test-1", "alice", 80, 1)

	if _, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1); err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	seedResult(t, results, users, "test-1", "bob", 90, 1)

	svc.Invalidate(context.Background(), "test-1")

	board, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if len(board.Rows) != 2 {
		t.Errorf("expected fresh page with 2 rows after invalidation, got %d", len(board.Rows))
	}
}

func TestLeaderboardCacheExpires(t *testing.T) {
	svc, results, users, mr := leaderboardFixture(t)
	userID := seedResult(t, results, users, "test-1", "alice", 80, 1)

	if _, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1); err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	seedResult(t, results, users, "test-1", "bob", 90, 1)

	mr.FastForward(svc.TTL + time.Second)

	board, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if len(board.Rows) != 2 {
		t.Errorf("expected fresh page after TTL, got %d rows", len(board.Rows))
	}
}

func TestLeaderboardUserStandingBypassesCache(t *testing.T) {
	svc, results, users, _ := leaderboardFixture(t)
	userID := seedResult(t, results, users, "test-1", "alice", 80, 1)

	// Prime the cache from another caller's perspective.
	outsider := users.add(&models.User{Name: "carol", Email: "carol@example.com"})
	board, err := svc.ForTest(context.Background(), "test-1", outsider, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if board.UserRank != nil {
		t.Errorf("expected no standing for a user without a result")
	}

	board, err = svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if board.UserRank == nil {
		t.Fatalf("expected a standing for a user with a result")
	}
	if board.UserRank.Rank == nil || *board.UserRank.Rank != 1 {
		t.Errorf("unexpected user rank: %+v", board.UserRank)
	}
	if board.UserRank.Score != 80 {
		t.Errorf("expected standing score 80, got %v", board.UserRank.Score)
	}
}

func TestLeaderboardWithoutRedis(t *testing.T) {
	results := newFakeResultStore()
	users := newFakeUserStore()
	svc := NewLeaderboardService(results, users, nil)

	userID := seedResult(t, results, users, "test-1", "alice", 80, 1)
	seedResult(t, results, users, "test-1", "bob", 90, 1)

	board, err := svc.ForTest(context.Background(), "test-1", userID, 10, 1)
	if err != nil {
		t.Fatalf("ForTest: %v", err)
	}
	if len(board.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(board.Rows))
	}
	// Invalidate must be a no-op, not a panic.
	svc.Invalidate(context.Background(), "test-1")
}

func TestGlobalLeaderboard(t *testing.T) {
	results := newFakeResultStore()
	users := newFakeUserStore()
	svc := NewLeaderboardService(results, users, nil)

	users.add(&models.User{Name: "alice", Email: "a@example.com", Stats: models.UserStats{TotalTests: 5, AverageScore: 80, BestScore: 95}})
	users.add(&models.User{Name: "bob", Email: "b@example.com", Stats: models.UserStats{TotalTests: 3, AverageScore: 60, BestScore: 70}})
	me := users.add(&models.User{Name: "carol", Email: "c@example.com", Stats: models.UserStats{TotalTests: 2, AverageScore: 70, BestScore: 75}})
	users.add(&models.User{Name: "dave", Email: "d@example.com", Stats: models.UserStats{TotalTests: 1, AverageScore: 50, BestScore: 50}})

	board, err := svc.Global(context.Background(), me, 10)
	if err != nil {
		t.Fatalf("Global: %v", err)
	}

	// Only alice averages higher, so carol sits at rank 2 of 4.
	if board.UserStanding.Rank != 2 {
		t.Errorf("expected global rank 2, got %d", board.UserStanding.Rank)
	}
	if board.UserStanding.TotalUsers != 4 {
		t.Errorf("expected 4 users, got %d", board.UserStanding.TotalUsers)
	}
	if board.UserStanding.Percentile != 75 {
		t.Errorf("expected percentile 75, got %v", board.UserStanding.Percentile)
	}
	if len(board.TopPerformers) != 4 {
		t.Errorf("expected 4 top performers, got %d", len(board.TopPerformers))
	}
}
