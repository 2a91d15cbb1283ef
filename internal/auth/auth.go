// Package auth signs family members in with email and password and keeps
// their sessions.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"presupuesto/internal/cache"
	"presupuesto/internal/core"
)

// Session is an opaque bearer token bound to a member.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Family is the fixed set of household members.
type Family struct {
	members []core.FamilyUser
}

func NewFamily(members []core.FamilyUser) *Family {
	if len(members) == 0 {
		members = core.DefaultFamily()
	}
	return &Family{members: members}
}

// Members returns a copy of the member list in configured order.
func (f *Family) Members() []core.FamilyUser {
	out := make([]core.FamilyUser, len(f.members))
	copy(out, f.members)
	return out
}

// Default is the first configured member.
func (f *Family) Default() core.FamilyUser {
	return f.members[0]
}

// Member looks a member up by id. An empty id selects the default member.
func (f *Family) Member(id string) (core.FamilyUser, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return f.Default(), nil
	}
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return core.FamilyUser{}, core.ErrUnknownUser
}

// ByTelegram finds the member linked to a Telegram username.
func (f *Family) ByTelegram(username string) (core.FamilyUser, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return core.FamilyUser{}, core.ErrUnknownUser
	}
	for _, m := range f.members {
		if m.TelegramUsername != "" && strings.EqualFold(m.TelegramUsername, username) {
			return m, nil
		}
	}
	return core.FamilyUser{}, core.ErrUnknownUser
}

func (f *Family) byEmail(email string) (core.FamilyUser, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return core.FamilyUser{}, false
	}
	for _, m := range f.members {
		if m.Email == email && m.PasswordHash != "" {
			return m, true
		}
	}
	return core.FamilyUser{}, false
}

// Authenticator checks credentials and tracks sessions in an LRU cache.
// Sessions are lost on restart.
type Authenticator struct {
	family   *Family
	sessions *cache.LRUCache[Session]
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewAuthenticator(family *Family, ttl time.Duration, maxSessions int, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		family:   family,
		sessions: cache.NewLRUCache[Session](maxSessions, ttl),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With("component", "auth"),
	}
}

// Sessions exposes the session cache so it can be swept periodically.
func (a *Authenticator) Sessions() cache.Cleaner {
	return a.sessions
}

// SignIn returns a new session or core.ErrInvalidCredentials. The error
// does not say whether the email or the password was wrong.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (Session, error) {
	m, ok := a.family.byEmail(email)
	if !ok {
		a.logger.WarnContext(ctx, "Sign-in rejected", "reason", "unknown_email")
		return Session{}, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		a.logger.WarnContext(ctx, "Sign-in rejected", "reason", "password_mismatch", "user_id", m.ID)
		return Session{}, core.ErrInvalidCredentials
	}

	s := Session{
		Token:     uuid.NewString(),
		UserID:    m.ID,
		UserName:  m.Name,
		ExpiresAt: a.now().Add(a.ttl),
	}
	a.sessions.Set(s.Token, s)
	a.logger.InfoContext(ctx, "Member signed in", "user_id", m.ID)
	return s, nil
}

// Lookup returns the live session for token.
func (a *Authenticator) Lookup(token string) (Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, false
	}
	return a.sessions.Get(token)
}

func (a *Authenticator) SignOut(ctx context.Context, token string) {
	if s, ok := a.Lookup(token); ok {
		a.logger.InfoContext(ctx, "Member signed out", "user_id", s.UserID)
	}
	a.sessions.Delete(token)
}

// HashPassword is used by tooling that writes household files.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
