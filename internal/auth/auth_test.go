package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"presupuesto/internal/core"
)

func testFamily(t *testing.T) *Family {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewFamily([]core.FamilyUser{
		{ID: "u1", Name: "Papá", Email: "papa@casa.co", PasswordHash: string(hash), TelegramUsername: "papa_bot"},
		{ID: "u2", Name: "Mamá", Email: "mama@casa.co"},
	})
}

func TestSignIn(t *testing.T) {
	a := NewAuthenticator(testFamily(t), time.Hour, 10, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", " PAPA@casa.co ", "secreto", false},
		{"wrong password", "papa@casa.co", "otro", true},
		{"unknown email", "nadie@casa.co", "secreto", true},
		{"member without password", "mama@casa.co", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := a.SignIn(ctx, tt.email, tt.password)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidCredentials) {
					t.Fatalf("expected invalid credentials, got %v", err)
				}
				if core.UserMessage(err) != core.MsgInvalidCredentials {
					t.Fatalf("unexpected message %q", core.UserMessage(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Token == "" || s.UserID != "u1" {
				t.Fatalf("unexpected session %+v", s)
			}
			if got, ok := a.Lookup(s.Token); !ok || got.UserID != "u1" {
				t.Fatalf("session not found")
			}
		})
	}
}

func TestSignOut(t *testing.T) {
	a := NewAuthenticator(testFamily(t), time.Hour, 10, nil)
	s, err := a.SignIn(context.Background(), "papa@casa.co", "secreto")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	a.SignOut(context.Background(), s.Token)
	if _, ok := a.Lookup(s.Token); ok {
		t.Fatalf("session should be gone")
	}
	if _, ok := a.Lookup(""); ok {
		t.Fatalf("empty token must not resolve")
	}
}

func TestFamilyLookup(t *testing.T) {
	f := testFamily(t)
	if m, err := f.Member(""); err != nil || m.ID != "u1" {
		t.Fatalf("expected default member, got %+v %v", m, err)
	}
	if m, err := f.Member("u2"); err != nil || m.Name != "Mamá" {
		t.Fatalf("unexpected member %+v %v", m, err)
	}
	if _, err := f.Member("u9"); !errors.Is(err, core.ErrUnknownUser) {
		t.Fatalf("expected unknown user, got %v", err)
	}
	if m, err := f.ByTelegram("@Papa_Bot"); err != nil || m.ID != "u1" {
		t.Fatalf("unexpected telegram member %+v %v", m, err)
	}
	if _, err := f.ByTelegram("otro"); !errors.Is(err, core.ErrUnknownUser) {
		t.Fatalf("expected unknown user, got %v", err)
	}
	if len(NewFamily(nil).Members()) != 2 {
		t.Fatalf("expected default family")
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("clave")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("clave")) != nil {
		t.Fatalf("hash does not verify")
	}
}
