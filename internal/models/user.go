package models

import "time"

type UserStats struct {
	TotalTests     int     `bson:"total_tests" json:"totalTests"`
	AverageScore   float64 `bson:"average_score" json:"averageScore"`
	BestScore      float64 `bson:"best_score" json:"bestScore"`
	TotalTimeSpent int     `bson:"total_time_spent" json:"totalTimeSpent"` // seconds
}

type User struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	Name             string     `bson:"name" json:"name"`
	Email            string     `bson:"email" json:"email"`
	Password         string     `bson:"password" json:"-"`
	Phone            string     `bson:"phone,omitempty" json:"phone,omitempty"`
	IsAdmin          bool       `bson:"is_admin" json:"isAdmin"`
	IsPremium        bool       `bson:"is_premium" json:"isPremium"`
	PremiumExpiresAt *time.Time `bson:"premium_expires_at" json:"premiumExpiresAt"`
	TestsAttempted   int        `bson:"tests_attempted" json:"testsAttempted"`
	LastTestDate     *time.Time `bson:"last_test_date" json:"lastTestDate"`
	Stats            UserStats  `bson:"stats" json:"stats"`
	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
}

// Premium reports whether the user's premium entitlement is live at the
// given instant.
func (u *User) Premium(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(now) {
		return false
	}
	return true
}

// CanTakeFreeTest enforces the free-tier quota: one test per rolling 7-day
// window, measured from the user's last test date.
func (u *User) CanTakeFreeTest(now time.Time) bool {
	if u.Premium(now) {
		return true
	}
	if u.LastTestDate == nil {
		return true
	}
	return u.LastTestDate.Before(now.AddDate(0, 0, -7))
}
