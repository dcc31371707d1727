package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mockexam-service/internal/models"
)

func catalogFixture(t *testing.T) (*TestService, *fakeTestStore, *fakeUserStore) {
	t.Helper()
	tests := newFakeTestStore()
	users := newFakeUserStore()
	return NewTestService(tests, users), tests, users
}

func sampleTest(title string, premium bool) *models.Test {
	return &models.Test{
		Title:     title,
		Duration:  60,
		IsActive:  true,
		IsPremium: premium,
		Sections: []models.Section{{
			Name: "English",
			Questions: []models.Question{
				{Question: "Pick one", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 1},
			},
		}},
	}
}

func TestListHidesPremiumFromFreeUsers(t *testing.T) {
	svc, tests, users := catalogFixture(t)
	freeUser := users.add(&models.User{Name: "free", Email: "f@x.com"})
	expires := time.Now().Add(24 * time.Hour)
	paidUser := users.add(&models.User{Name: "paid", Email: "p@x.com", IsPremium: true, PremiumExpiresAt: &expires})

	tests.add(sampleTest("open paper", false))
	tests.add(sampleTest("premium paper", true))

	visible, err := svc.List(context.Background(), freeUser, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 1 || visible[0].Title != "open paper" {
		t.Errorf("free user should see only the open paper, got %d tests", len(visible))
	}

	visible, err = svc.List(context.Background(), paidUser, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("premium user should see both tests, got %d", len(visible))
	}
}

func TestListStripsAnswers(t *testing.T) {
	svc, tests, users := catalogFixture(t)
	userID := users.add(&models.User{Name: "free", Email: "f@x.com"})
	tests.add(sampleTest("open paper", false))

	visible, err := svc.List(context.Background(), userID, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	q := visible[0].Sections[0].Questions[0]
	if q.CorrectAnswer != models.HiddenAnswer {
		t.Errorf("correct answer leaked in listing: %d", q.CorrectAnswer)
	}
}

func TestGetEnforcesGates(t *testing.T) {
	svc, tests, users := catalogFixture(t)
	freeUser := users.add(&models.User{Name: "free", Email: "f@x.com"})

	premiumID := tests.add(sampleTest("premium paper", true))
	inactive := sampleTest("retired paper", false)
	inactive.IsActive = false
	inactiveID := tests.add(inactive)

	if _, err := svc.Get(context.Background(), freeUser, premiumID); !errors.Is(err, models.ErrEntitlementDenied) {
		t.Errorf("premium test for free user: expected ErrEntitlementDenied, got %v", err)
	}
	if _, err := svc.Get(context.Background(), freeUser, inactiveID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("inactive test: expected ErrNotFound, got %v", err)
	}
}

func TestCreateValidatesAndDefaults(t *testing.T) {
	svc, _, _ := catalogFixture(t)

	bad := sampleTest("broken", false)
	bad.Sections[0].Questions[0].CorrectAnswer = 5
	if err := svc.Create(context.Background(), bad); !errors.Is(err, models.ErrValidation) {
		t.Errorf("out-of-range answer: expected ErrValidation, got %v", err)
	}

	good := sampleTest("fresh paper", false)
	good.IsActive = false
	if err := svc.Create(context.Background(), good); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if good.Type != "full-length" || good.Category != "IMA/INA/AFA" {
		t.Errorf("defaults not applied: type=%q category=%q", good.Type, good.Category)
	}
	if !good.IsActive {
		t.Errorf("created tests must start active")
	}
	if good.TotalMarks != 1 {
		t.Errorf("expected derived total marks 1, got %v", good.TotalMarks)
	}
}

func TestUpdateRejectsInvalidContent(t *testing.T) {
	svc, tests, _ := catalogFixture(t)
	id := tests.add(sampleTest("paper", false))

	bad := sampleTest("paper", false)
	bad.Duration = 0
	if err := svc.Update(context.Background(), id, bad); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
