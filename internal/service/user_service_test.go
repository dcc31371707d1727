package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mockexam-service/internal/auth"
	"mockexam-service/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, "test-secret")

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "  Asha.Rao@Example.COM ",
		Password: "hunter22",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "asha.rao@example.com" {
		t.Errorf("email not normalised: %q", user.Email)
	}
	if user.Password == "hunter22" {
		t.Errorf("password stored in plain text")
	}
	if got, err := auth.ParseToken(token, "test-secret"); err != nil || got != user.ID {
		t.Errorf("registration token does not resolve to the user: %v", err)
	}

	_, token, err = svc.Login(context.Background(), Credentials{Email: "asha.rao@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got, err := auth.ParseToken(token, "test-secret"); err != nil || got != user.ID {
		t.Errorf("login token does not resolve to the user: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, "test-secret")

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Name: "A B", Email: "not-an-email", Password: "secret1"}},
		{"short phone", RegisterInput{Name: "A B", Email: "a@b.com", Password: "secret1", Phone: "12345"}},
		{"letters in phone", RegisterInput{Name: "A B", Email: "a@b.com", Password: "secret1", Phone: "98765abcde"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.in)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, "test-secret")

	in := RegisterInput{Name: "A B", Email: "a@b.com", Password: "secret1"}
	if _, _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, err := svc.Register(context.Background(), in)
	if !errors.Is(err, models.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, "test-secret")

	if _, _, err := svc.Register(context.Background(), RegisterInput{Name: "A B", Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), Credentials{Email: "nobody@b.com", Password: "secret1"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestActivateAndDemotePremium(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, "test-secret")
	id := users.add(&models.User{Name: "A", Email: "a@b.com"})

	if err := svc.ActivatePremium(context.Background(), id, 30*24*time.Hour); err != nil {
		t.Fatalf("ActivatePremium: %v", err)
	}
	user, _ := users.FindByID(context.Background(), id)
	if !user.Premium(time.Now()) {
		t.Fatalf("expected live premium after activation")
	}

	if err := svc.DemoteExpiredPremium(context.Background(), id); err != nil {
		t.Fatalf("DemoteExpiredPremium: %v", err)
	}
	user, _ = users.FindByID(context.Background(), id)
	if user.Premium(time.Now()) {
		t.Errorf("expected premium off after demotion")
	}
}
