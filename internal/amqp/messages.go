package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"presupuesto/internal/core"
)

// ExpenseCreatedMessage carries a saved expense to the ledger worker. The
// category name is resolved at publish time so the worker needs no store.
type ExpenseCreatedMessage struct {
	Expense      core.Expense `json:"expense"`
	CategoryName string       `json:"categoryName"`
	Timestamp    time.Time    `json:"timestamp"`
}

func NewExpenseCreatedMessage(e core.Expense, categoryName string) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		Expense:      e,
		CategoryName: categoryName,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON decodes a message body. Messages without an
// expense id are rejected.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Expense.ID == "" {
		return nil, errors.New("message without expense id")
	}
	return &msg, nil
}
