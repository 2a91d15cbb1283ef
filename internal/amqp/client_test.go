package amqp

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"presupuesto/internal/core"
)

func sampleExpense() core.Expense {
	return core.Expense{
		ID:          "e-1",
		CategoryID:  "1",
		Amount:      35000,
		Date:        time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Description: "almuerzo",
		UserID:      "u1",
		UserName:    "Papá",
	}
}

func TestExpenseCreatedMessageJSON(t *testing.T) {
	body, err := NewExpenseCreatedMessage(sampleExpense(), "Alimentación").ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := ExpenseCreatedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Expense.ID != "e-1" || msg.Expense.Amount != 35000 || msg.CategoryName != "Alimentación" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !msg.Expense.Date.Equal(sampleExpense().Date) {
		t.Fatalf("date changed: %v", msg.Expense.Date)
	}

	if _, err := ExpenseCreatedMessageFromJSON([]byte(`{"expense":{}}`)); err == nil {
		t.Fatalf("expected error for message without id")
	}
}

func TestDispatch(t *testing.T) {
	valid, _ := NewExpenseCreatedMessage(sampleExpense(), "Alimentación").ToJSON()
	okHandler := func(ctx context.Context, m *ExpenseCreatedMessage) error { return nil }
	failHandler := func(ctx context.Context, m *ExpenseCreatedMessage) error { return errors.New("sheets down") }

	tests := []struct {
		name    string
		body    []byte
		handler Handler
		want    outcome
	}{
		{"handled", valid, okHandler, ack},
		{"handler failure requeues", valid, failHandler, requeue},
		{"garbage is rejected", []byte("not json"), okHandler, reject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dispatch(context.Background(), slog.Default(), tt.body, tt.handler); got != tt.want {
				t.Fatalf("dispatch = %v, want %v", got, tt.want)
			}
		})
	}
}
