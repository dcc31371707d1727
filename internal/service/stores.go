package service

import (
	"context"

	"mockexam-service/internal/models"
	"mockexam-service/internal/ranking"
	"mockexam-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// Narrow store interfaces the services depend on. The mongo repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

type TestStore interface {
	FindAll(ctx context.Context, filter repository.TestFilter) ([]models.Test, error)
	FindByID(ctx context.Context, id string) (*models.Test, error)
	Create(ctx context.Context, test *models.Test) error
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	IncrementAttempts(ctx context.Context, id string) error
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	FindByID(ctx context.Context, id string) (*models.Attempt, error)
	FindInProgress(ctx context.Context, userID, testID string) (*models.Attempt, error)
	SaveAnswer(ctx context.Context, id, key string, entry models.AnswerEntry) error
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
}

type ResultStore interface {
	Create(ctx context.Context, result *models.Result) error
	FindByID(ctx context.Context, id string) (*models.Result, error)
	FindByUser(ctx context.Context, userID string) ([]models.Result, error)
	FindByUserAndTest(ctx context.Context, userID, testID string) ([]models.Result, error)
	FindByTest(ctx context.Context, testID string) ([]models.Result, error)
	FindRanked(ctx context.Context, testID string, limit, skip int) ([]models.Result, error)
	FindUserStanding(ctx context.Context, testID, userID string) (*models.Result, error)
	CountByTest(ctx context.Context, testID string) (int64, error)
	ApplyStandings(ctx context.Context, standings []ranking.Standing) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, update bson.M) error
	FindAll(ctx context.Context) ([]models.User, error)
	FindTopPerformers(ctx context.Context, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountWithBetterAverage(ctx context.Context, average float64) (int64, error)
}

// Publisher fans service events out to the message broker. A nil Publisher
// field means eventing is not configured.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// LeaderboardInvalidator drops cached leaderboard pages after a submission
// changes the standings.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context, testID string)
}
