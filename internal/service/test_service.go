package service

import (
	"context"
	"time"

	"mockexam-service/internal/models"
	"mockexam-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

type TestService struct {
	Tests TestStore
	Users UserStore
}

func NewTestService(tests TestStore, users UserStore) *TestService {
	return &TestService{Tests: tests, Users: users}
}

// List returns active tests visible to the user, answers stripped. Free
// users never see premium tests in listings.
func (s *TestService) List(ctx context.Context, userID, testType, category string) ([]models.Test, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tests, err := s.Tests.FindAll(ctx, repository.TestFilter{
		Type:           testType,
		Category:       category,
		IncludePremium: user.Premium(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Test, len(tests))
	for i := range tests {
		out[i] = *tests[i].WithoutAnswers()
	}
	return out, nil
}

// Get serves one test, answers stripped; premium tests require entitlement.
func (s *TestService) Get(ctx context.Context, userID, testID string) (*models.Test, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive {
		return nil, models.ErrNotFound
	}
	if test.IsPremium && !user.Premium(time.Now()) {
		return nil, models.ErrEntitlementDenied
	}
	return test.WithoutAnswers(), nil
}

// Create validates and persists an authored test. Tests become effectively
// immutable once attempts reference them; edits never rescore past results.
func (s *TestService) Create(ctx context.Context, test *models.Test) error {
	test.Normalize()
	if err := test.Validate(); err != nil {
		return err
	}
	if test.Type == "" {
		test.Type = "full-length"
	}
	if test.Category == "" {
		test.Category = "IMA/INA/AFA"
	}
	test.IsActive = true
	test.AttemptsCount = 0
	return s.Tests.Create(ctx, test)
}

// Update replaces an authored test's content. Past results are never
// rescored; edits only affect attempts started afterwards.
func (s *TestService) Update(ctx context.Context, testID string, test *models.Test) error {
	test.Normalize()
	if err := test.Validate(); err != nil {
		return err
	}
	return s.Tests.Update(ctx, testID, bson.M{
		"title":            test.Title,
		"description":      test.Description,
		"type":             test.Type,
		"category":         test.Category,
		"sections":         test.Sections,
		"total_marks":      test.TotalMarks,
		"duration":         test.Duration,
		"negative_marking": test.NegativeMarking,
		"is_premium":       test.IsPremium,
	})
}

// AdminList includes inactive and premium tests with answers intact.
func (s *TestService) AdminList(ctx context.Context) ([]models.Test, error) {
	return s.Tests.FindAll(ctx, repository.TestFilter{IncludePremium: true, IncludeInactive: true})
}

func (s *TestService) SetActive(ctx context.Context, testID string, active bool) error {
	return s.Tests.Update(ctx, testID, bson.M{"is_active": active})
}

func (s *TestService) Delete(ctx context.Context, testID string) error {
	return s.Tests.Delete(ctx, testID)
}
