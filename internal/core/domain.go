package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	// DefaultIcon is used when a category is saved without an icon.
	DefaultIcon = "📦"

	// UnknownCategoryName labels expenses whose category no longer exists.
	UnknownCategoryName = "Varios"
	// UnknownCategoryColor is the neutral color used for unknown categories.
	UnknownCategoryColor = "#94a3b8"

	maxDescriptionLen = 200
)

type (
	// Pesos is an amount of Colombian pesos. COP has no subunit in practice,
	// so amounts are whole numbers.
	Pesos int64

	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Budget Pesos  `json:"budget"` // monthly budget
		Color  string `json:"color"`
		Icon   string `json:"icon"`
	}

	Expense struct {
		ID          string    `json:"id"`
		CategoryID  string    `json:"categoryId"` // may reference a deleted category
		Amount      Pesos     `json:"amount"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		UserID      string    `json:"userId"`
		UserName    string    `json:"userName"`
	}

	// FamilyUser is a member of the household. The set is small and fixed,
	// loaded from configuration.
	FamilyUser struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		Avatar           string `json:"avatar"`
		Email            string `json:"-"`
		PasswordHash     string `json:"-"`
		TelegramUsername string `json:"-"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty category name")
	ErrNegativeBudget   = errors.New("negative budget")
	ErrInvalidDate      = errors.New("invalid date")
)

func (p Pesos) Validate() error {
	if p <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > maxDescriptionLen {
		return fmt.Errorf("description too long (max %d characters)", maxDescriptionLen)
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Budget < 0 {
		return ErrNegativeBudget
	}
	return nil
}

// DefaultCategories returns the seed set written when the category
// collection is empty on first load. IDs are fixed.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Alimentación", Budget: 500, Color: "#10b981", Icon: "🛒"},
		{ID: "2", Name: "Vivienda", Budget: 1200, Color: "#3b82f6", Icon: "🏠"},
		{ID: "3", Name: "Transporte", Budget: 200, Color: "#f59e0b", Icon: "🚗"},
		{ID: "4", Name: "Ocio", Budget: 150, Color: "#8b5cf6", Icon: "🎬"},
		{ID: "5", Name: "Otros", Budget: 100, Color: "#64748b", Icon: "📦"},
	}
}

// DefaultFamily is used when no household members are configured.
func DefaultFamily() []FamilyUser {
	return []FamilyUser{
		{ID: "u1", Name: "Papá", Avatar: "👨"},
		{ID: "u2", Name: "Mamá", Avatar: "👩"},
	}
}

// RandomColor returns "#" followed by six lowercase hex digits drawn from a
// uniform 24-bit value. A nil source uses the global generator.
func RandomColor(r *rand.Rand) string {
	var v uint32
	if r == nil {
		v = rand.Uint32N(1 << 24)
	} else {
		v = r.Uint32N(1 << 24)
	}
	return fmt.Sprintf("#%06x", v)
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCategoryID returns a random nine character base-36 identifier.
func NewCategoryID(r *rand.Rand) string {
	b := make([]byte, 9)
	for i := range b {
		var n int
		if r == nil {
			n = rand.IntN(len(idAlphabet))
		} else {
			n = r.IntN(len(idAlphabet))
		}
		b[i] = idAlphabet[n]
	}
	return string(b)
}
