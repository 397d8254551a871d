package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BudgetAlertMessage announces that a user's spending in a category went
// over the budget limit.
type BudgetAlertMessage struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Spent     float64   `json:"spent"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(userID int64, category string, limit, spent float64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Limit:     limit,
		Spent:     spent,
		Timestamp: time.Now().UTC(),
	}
}

// Overspend is how far Spent is above Limit.
func (m *BudgetAlertMessage) Overspend() float64 {
	return m.Spent - m.Limit
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
