package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"mockexam-service/internal/event"
	"mockexam-service/internal/models"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"go.mongodb.org/mongo-driver/bson"
)

type Plan struct {
	Label    string
	Amount   int64 // IDR
	Duration time.Duration
}

var Plans = map[string]Plan{
	"monthly": {Label: "1 Month", Amount: 49000, Duration: 30 * 24 * time.Hour},
	"yearly":  {Label: "1 Year", Amount: 249000, Duration: 365 * 24 * time.Hour},
}

type CheckoutOrder struct {
	OrderID     string `json:"orderId"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	Plan        string `json:"plan"`
	PlanLabel   string `json:"planLabel"`
	Amount      int64  `json:"amount"`
}

// PaymentService sells premium plans through the Midtrans Snap checkout.
// Orders embed the user id and plan in the order id so the settlement
// notification can activate the right entitlement without extra state.
type PaymentService struct {
	Users     UserStore
	Events    Publisher
	ServerKey string
	snap      snap.Client
}

func NewPaymentService(users UserStore, serverKey string, production bool) *PaymentService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	s := &PaymentService{Users: users, ServerKey: serverKey}
	s.snap.New(serverKey, env)
	return s
}

func (s *PaymentService) CreateOrder(ctx context.Context, userID, planName string) (*CheckoutOrder, error) {
	plan, ok := Plans[planName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", models.ErrValidation, planName)
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orderID := fmt.Sprintf("premium-%s-%s-%s", planName, userID, uuid.NewString()[:8])
	resp, midErr := s.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: plan.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Name,
			Email: user.Email,
		},
	})
	if midErr != nil {
		return nil, midErr
	}
	return &CheckoutOrder{
		OrderID:     orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Plan:        planName,
		PlanLabel:   plan.Label,
		Amount:      plan.Amount,
	}, nil
}

// Notification is the subset of the Midtrans HTTP notification the service
// needs to settle an order.
type Notification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
}

// HandleNotification verifies the gateway signature and activates premium on
// settlement. Non-settlement statuses are acknowledged and ignored.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification) error {
	if !s.validSignature(n) {
		return fmt.Errorf("%w: bad payment signature", models.ErrForbidden)
	}
	if n.TransactionStatus != "settlement" && n.TransactionStatus != "capture" {
		return nil
	}

	planName, userID, err := parseOrderID(n.OrderID)
	if err != nil {
		return err
	}
	plan, ok := Plans[planName]
	if !ok {
		return fmt.Errorf("%w: unknown plan in order %q", models.ErrValidation, n.OrderID)
	}
	expiresAt := time.Now().Add(plan.Duration)
	if err := s.Users.Update(ctx, userID, bson.M{
		"is_premium":         true,
		"premium_expires_at": expiresAt,
	}); err != nil {
		return err
	}
	if s.Events != nil {
		if err := s.Events.Publish(event.PremiumActivated, map[string]interface{}{
			"user_id":    userID,
			"plan":       planName,
			"expires_at": expiresAt,
		}); err != nil {
			log.Printf("Failed to publish %s: %v", event.PremiumActivated, err)
		}
	}
	return nil
}

// validSignature checks sha512(order_id + status_code + gross_amount +
// server_key), the Midtrans notification contract.
func (s *PaymentService) validSignature(n Notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + s.ServerKey))
	return hex.EncodeToString(sum[:]) == n.SignatureKey
}

func parseOrderID(orderID string) (plan, userID string, err error) {
	parts := strings.SplitN(orderID, "-", 4)
	if len(parts) != 4 || parts[0] != "premium" {
		return "", "", fmt.Errorf("%w: malformed order id", models.ErrValidation)
	}
	return parts[1], parts[2], nil
}
