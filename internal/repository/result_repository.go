package repository

import (
	"context"
	"errors"

	"mockexam-service/internal/models"
	"mockexam-service/internal/ranking"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("results")}
}

func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	res, err := r.Col.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return nil
}

func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.Result, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var result models.Result
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) FindByUser(ctx context.Context, userID string) ([]models.Result, error) {
	return r.find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}}))
}

func (r *ResultRepository) FindByUserAndTest(ctx context.Context, userID, testID string) ([]models.Result, error) {
	return r.find(ctx, bson.M{"user_id": userID, "test_id": testID},
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}}))
}

// FindByTest returns every result of a test in leaderboard order: obtained
// marks descending, total time ascending.
func (r *ResultRepository) FindByTest(ctx context.Context, testID string) ([]models.Result, error) {
	return r.find(ctx, bson.M{"test_id": testID},
		options.Find().SetSort(bson.D{
			{Key: "score.obtained_marks", Value: -1},
			{Key: "time_metrics.total_time", Value: 1},
		}))
}

// FindRanked pages through a test's results by their stored rank.
func (r *ResultRepository) FindRanked(ctx context.Context, testID string, limit, skip int) ([]models.Result, error) {
	return r.find(ctx, bson.M{"test_id": testID},
		options.Find().
			SetSort(bson.D{{Key: "rank", Value: 1}}).
			SetLimit(int64(limit)).
			SetSkip(int64(skip)))
}

func (r *ResultRepository) FindUserStanding(ctx context.Context, testID, userID string) (*models.Result, error) {
	var result models.Result
	err := r.Col.FindOne(ctx, bson.M{"test_id": testID, "user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "rank", Value: 1}})).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) CountByTest(ctx context.Context, testID string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"test_id": testID})
}

// ApplyStandings writes recomputed ranks and percentiles back in one bulk
// round trip. Interleaved recalculations for the same test are tolerated:
// the last pass to land wins.
func (r *ResultRepository) ApplyStandings(ctx context.Context, standings []ranking.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(standings))
	for _, s := range standings {
		objID, err := primitive.ObjectIDFromHex(s.ResultID)
		if err != nil {
			return err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": objID}).
			SetUpdate(bson.M{"$set": bson.M{"rank": s.Rank, "percentile": s.Percentile}}))
	}
	_, err := r.Col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *ResultRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Result, error) {
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Result
	for cur.Next(ctx) {
		var res models.Result
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, cur.Err()
}
