package repository

import (
	"context"
	"errors"
	"time"

	"mockexam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	if attempt.Answers == nil {
		attempt.Answers = map[string]models.AnswerEntry{}
	}
	res, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid.Hex()
	}
	return nil
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var attempt models.Attempt
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindInProgress returns the live attempt for a (user, test) pair, or
// ErrNotFound when there is none. At most one can exist because Start only
// creates after this lookup misses.
func (r *AttemptRepository) FindInProgress(ctx context.Context, userID, testID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{
		"user_id": userID,
		"test_id": testID,
		"status":  models.AttemptInProgress,
	}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// SaveAnswer overwrites a single answer key inside the attempt document.
// Last write wins per key; the single-document update is the only atomicity
// two racing tabs get.
func (r *AttemptRepository) SaveAnswer(ctx context.Context, id, key string, entry models.AnswerEntry) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"current_answers." + key: entry,
		"last_activity":          time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// TransitionStatus is a conditional status write: it only succeeds when the
// attempt is still in the expected state, which makes it the atomic claim
// submit relies on. Returns false when another writer won the race (or the
// attempt is gone).
func (r *AttemptRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, models.ErrNotFound
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": from},
		bson.M{"$set": bson.M{"status": to, "last_activity": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
