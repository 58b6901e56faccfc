// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/plate-registry/internal/core"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken // by id
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *token
	stored.CreatedAt = time.Now()
	f.tokens[token.ID] = &stored
	return nil
}

func (f *fakeTokenRepo) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tokens {
		if t.TokenHash == tokenHash {
			found := *t
			return &found, nil
		}
	}
	return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
}

func (f *fakeTokenRepo) FindByID(
	_ context.Context,
	id string,
) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
	}
	found := *t
	return &found, nil
}

func (f *fakeTokenRepo) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("mark used: %w", core.ErrNotFound)
	}
	t.MarkAsUsed(replacedByID)
	return nil
}

func (f *fakeTokenRepo) RevokeByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("revoke: %w", core.ErrNotFound)
	}
	t.Revoke()
	return nil
}

func (f *fakeTokenRepo) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tokens {
		if t.FamilyID == familyID && !t.IsRevoked() {
			t.Revoke()
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(
	_ context.Context,
	userID string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tokens {
		if t.UserID == userID && !t.IsRevoked() {
			t.Revoke()
		}
	}
	return nil
}

func (f *fakeTokenRepo) GetActiveSessionsForUser(
	_ context.Context,
	userID string,
) ([]RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sessions []RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.IsValid() {
			sessions = append(sessions, *t)
		}
	}
	return sessions, nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, t := range f.tokens {
		if t.IsExpired() {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ Repository = (*fakeTokenRepo)(nil)

type fakeUserProvider struct {
	users map[string]*UserInfo // by username
}

func (f *fakeUserProvider) GetByUsername(
	_ context.Context,
	username string,
) (*UserInfo, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUserProvider) GetByID(
	_ context.Context,
	id string,
) (*UserInfo, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUserProvider) Create(
	_ context.Context,
	username, email, passwordHash, name string,
) (*UserInfo, error) {
	if _, exists := f.users[username]; exists {
		return nil, fmt.Errorf("create user: %w", ErrUsernameExists)
	}
	u := &UserInfo{
		ID:           "id-" + username,
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserProvider) IncrementTokenVersion(
	_ context.Context,
	userID string,
) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.TokenVersion++
			return nil
		}
	}
	return fmt.Errorf("increment version: %w", core.ErrNotFound)
}

func (f *fakeUserProvider) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return fmt.Errorf("update password: %w", core.ErrNotFound)
}

func newTestAuthService(t *testing.T) (*Service, *fakeTokenRepo, *fakeUserProvider) {
	t.Helper()

	hash, err := core.HashPassword("ministry-pass-1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	users := &fakeUserProvider{users: map[string]*UserInfo{
		"clerk": {
			ID:           "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			Username:     "clerk",
			Email:        "clerk@ministry.gov",
			PasswordHash: hash,
			Role:         "user",
		},
	}}

	repo := newFakeTokenRepo()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(repo, newTestJWTManager(t, 15*time.Minute), users, rdb)
	return svc, repo, users
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "clerk",
		Password: "ministry-pass-1",
	}, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("missing token material")
	}
	if resp.Tokens.TokenType != "Bearer" {
		t.Errorf("token type = %q", resp.Tokens.TokenType)
	}
	if resp.User.Username != "clerk" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "clerk",
		Password: "wrong",
	}, "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "ghost",
		Password: "anything",
	}, "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: "clerk",
		Password: "ministry-pass-1",
	}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(
		context.Background(),
		login.Tokens.RefreshToken,
		"", "",
	)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Tokens.RefreshToken == login.Tokens.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// the spent token cannot be replayed, and the replay kills the family
	_, err = svc.Refresh(context.Background(), login.Tokens.RefreshToken, "", "")
	if !errors.Is(err, ErrTokenReuse) {
		t.Fatalf("want ErrTokenReuse, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), refreshed.Tokens.RefreshToken, "", "")
	if !errors.Is(err, core.ErrTokenRevoked) {
		t.Fatalf("family member should be revoked after reuse, got %v", err)
	}
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "no-such-token", "", "")
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestAccessTokenBlacklist(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	jti := "token-jti-1"

	listed, err := svc.IsAccessTokenBlacklisted(ctx, jti)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if listed {
		t.Fatal("fresh jti already blacklisted")
	}

	if err := svc.RevokeAccessToken(ctx, jti, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	listed, err = svc.IsAccessTokenBlacklisted(ctx, jti)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !listed {
		t.Error("revoked jti not blacklisted")
	}

	// revoking an already-expired token is a no-op, not an error
	if err := svc.RevokeAccessToken(ctx, "stale", time.Now().Add(-time.Hour)); err != nil {
		t.Errorf("expired revoke: %v", err)
	}
}

func TestLogoutAllRevokesSessionsAndBumpsVersion(t *testing.T) {
	svc, repo, users := newTestAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Username: "clerk",
		Password: "ministry-pass-1",
	}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	userID := login.User.ID
	if err := svc.LogoutAll(ctx, userID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	sessions, err := repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("%d sessions still active", len(sessions))
	}

	if users.users["clerk"].TokenVersion != 1 {
		t.Errorf("token version = %d, want 1", users.users["clerk"].TokenVersion)
	}
}
