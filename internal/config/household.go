package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"presupuesto/internal/core"
)

// Household is the family roster and the categories seeded into an empty
// store, read from HOUSEHOLD_FILE.
//
//	members:
//	  - id: u1
//	    name: Papá
//	    avatar: "👨"
//	    email: papa@example.com
//	    password_hash: "$2a$10$..."
//	    telegram: papa_tg
//	categories:
//	  - id: "1"
//	    name: Alimentación
//	    budget: 500
//	    color: "#10b981"
//	    icon: "🛒"
type Household struct {
	Members    []memberEntry   `yaml:"members"`
	Categories []categoryEntry `yaml:"categories"`
}

type memberEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Avatar       string `yaml:"avatar"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Telegram     string `yaml:"telegram"`
}

type categoryEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Budget int64  `yaml:"budget"`
	Color  string `yaml:"color"`
	Icon   string `yaml:"icon"`
}

// LoadHousehold reads path. An empty path yields the built-in defaults.
func LoadHousehold(path string) (*Household, error) {
	if strings.TrimSpace(path) == "" {
		return &Household{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read household file: %w", err)
	}
	return ParseHousehold(data)
}

// ParseHousehold decodes and validates a household document.
func ParseHousehold(data []byte) (*Household, error) {
	var h Household
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse household file: %w", err)
	}

	var problems []string
	seen := map[string]bool{}
	for i, m := range h.Members {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			problems = append(problems, fmt.Sprintf("member %d: id and name are required", i))
		}
		if seen[m.ID] {
			problems = append(problems, fmt.Sprintf("member %d: duplicate id '%s'", i, m.ID))
		}
		seen[m.ID] = true
	}
	seen = map[string]bool{}
	for i, c := range h.Categories {
		if strings.TrimSpace(c.ID) == "" {
			problems = append(problems, fmt.Sprintf("category %d: id is required", i))
		}
		if seen[c.ID] {
			problems = append(problems, fmt.Sprintf("category %d: duplicate id '%s'", i, c.ID))
		}
		seen[c.ID] = true
		if err := c.toCore().Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("category %d: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("household validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return &h, nil
}

func (c categoryEntry) toCore() core.Category {
	icon := c.Icon
	if icon == "" {
		icon = core.DefaultIcon
	}
	return core.Category{ID: c.ID, Name: c.Name, Budget: core.Pesos(c.Budget), Color: c.Color, Icon: icon}
}

// FamilyUsers returns the configured members, or the default pair.
func (h *Household) FamilyUsers() []core.FamilyUser {
	if len(h.Members) == 0 {
		return core.DefaultFamily()
	}
	out := make([]core.FamilyUser, 0, len(h.Members))
	for _, m := range h.Members {
		out = append(out, core.FamilyUser{
			ID:               m.ID,
			Name:             m.Name,
			Avatar:           m.Avatar,
			Email:            strings.ToLower(strings.TrimSpace(m.Email)),
			PasswordHash:     m.PasswordHash,
			TelegramUsername: strings.TrimPrefix(m.Telegram, "@"),
		})
	}
	return out
}

// SeedCategories returns the configured seed set, or the built-in one.
func (h *Household) SeedCategories() []core.Category {
	if len(h.Categories) == 0 {
		return core.DefaultCategories()
	}
	out := make([]core.Category, 0, len(h.Categories))
	for _, c := range h.Categories {
		out = append(out, c.toCore())
	}
	return out
}
