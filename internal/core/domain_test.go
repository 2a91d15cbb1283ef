package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestPesosValidate(t *testing.T) {
	if err := Pesos(1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Pesos(0).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := Pesos(-5).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	good := Expense{
		CategoryID:  "1",
		Amount:      150,
		Date:        now,
		Description: "mercado",
		UserID:      "u1",
		UserName:    "Papá",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(e *Expense)
		want error
	}{
		{"zero date", func(e *Expense) { e.Date = time.Time{} }, ErrInvalidDate},
		{"zero amount", func(e *Expense) { e.Amount = 0 }, ErrInvalidAmount},
		{"blank description", func(e *Expense) { e.Description = "   " }, ErrEmptyDescription},
		{"blank category", func(e *Expense) { e.CategoryID = "" }, ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mut(&e)
			if err := e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	long := good
	long.Description = strings.Repeat("a", 201)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long description")
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Ocio", Budget: 0}).Validate(); err != nil {
		t.Fatalf("zero budget should be allowed, got %v", err)
	}
	if err := (Category{Name: " ", Budget: 10}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{Name: "Ocio", Budget: -1}).Validate(); !errors.Is(err, ErrNegativeBudget) {
		t.Fatalf("expected ErrNegativeBudget, got %v", err)
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 5 {
		t.Fatalf("expected 5 seed categories, got %d", len(cats))
	}
	var total Pesos
	for i, c := range cats {
		if c.ID == "" || c.Name == "" || c.Icon == "" {
			t.Fatalf("seed %d incomplete: %+v", i, c)
		}
		total += c.Budget
	}
	if total != 2150 {
		t.Fatalf("expected seed budget 2150, got %d", total)
	}
}

func TestRandomColor(t *testing.T) {
	re := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		c := RandomColor(r)
		if !re.MatchString(c) {
			t.Fatalf("unexpected color %q", c)
		}
	}
	if !re.MatchString(RandomColor(nil)) {
		t.Fatalf("global generator produced bad color")
	}
}

func TestNewCategoryID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{9}$`)
	r := rand.New(rand.NewPCG(3, 4))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewCategoryID(r)
		if !re.MatchString(id) {
			t.Fatalf("unexpected id %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 50 {
		t.Fatalf("expected distinct ids, got %d", len(seen))
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrExtractionFailed, MsgExtractionFailed},
		{ErrExtractionUnavailable, MsgExtractionUnavailable},
		{ErrInvalidAmount, MsgInvalidAmount},
		{fmt.Errorf("%w: %w", ErrIncompleteData, ErrInvalidAmount), MsgInvalidAmount},
		{ErrIncompleteData, MsgIncompleteData},
		{ErrInvalidCredentials, MsgInvalidCredentials},
		{&ConfirmationRequiredError{Prompt: DeleteCategoryPrompt("Ocio")}, `¿Eliminar la categoría "Ocio"?`},
		{errors.New("boom"), MsgGeneric},
	}
	for i, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("case %d: expected %q, got %q", i, tc.want, got)
		}
	}
}
