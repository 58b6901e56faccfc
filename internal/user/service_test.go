// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelamos/plate-registry/internal/auth"
	"github.com/angelamos/plate-registry/internal/core"
)

type fakeUserRepo struct {
	users map[string]*User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	found := *u
	return &found, nil
}

func (f *fakeUserRepo) GetByUsername(
	_ context.Context,
	username string,
) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) && !u.IsDeleted() {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
}

func (f *fakeUserRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && !u.IsDeleted() {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeUserRepo) Update(_ context.Context, user *User) error {
	stored, ok := f.users[user.ID]
	if !ok || stored.IsDeleted() {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	updated := *user
	f.users[user.ID] = &updated
	return nil
}

func (f *fakeUserRepo) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) IncrementTokenVersion(
	_ context.Context,
	id string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("increment version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (f *fakeUserRepo) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var matched []User
	for _, u := range f.users {
		if u.IsDeleted() {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(u.Username),
				strings.ToLower(params.Search)) &&
			!strings.Contains(strings.ToLower(u.Email),
				strings.ToLower(params.Search)) {
			continue
		}
		matched = append(matched, *u)
	}
	return matched, len(matched), nil
}

func (f *fakeUserRepo) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

var _ Repository = (*fakeUserRepo)(nil)

func seedUser(t *testing.T, repo *fakeUserRepo, id, username, role string) {
	t.Helper()
	err := repo.Create(context.Background(), &User{
		ID:       id,
		Username: username,
		Email:    username + "@ministry.gov",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, "u1", "clerk", RoleUser)

	_, err := svc.Create(ctx, "clerk", "other@ministry.gov", "hash", "Clerk Two")
	if !errors.Is(err, auth.ErrUsernameExists) {
		t.Errorf("duplicate username: want ErrUsernameExists, got %v", err)
	}

	_, err = svc.Create(ctx, "clerk2", "clerk@ministry.gov", "hash", "Clerk Two")
	if !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("duplicate email: want ErrEmailExists, got %v", err)
	}

	created, err := svc.Create(ctx, "clerk2", "Clerk2@Ministry.GOV", "hash", "Clerk Two")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "clerk2@ministry.gov" {
		t.Errorf("email not lowercased: %q", created.Email)
	}
	if created.Role != RoleUser {
		t.Errorf("new accounts default to user role, got %q", created.Role)
	}
}

func TestUpdateUserRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, "u1", "clerk", RoleUser)

	updated, err := svc.UpdateUserRole(ctx, "u1", RoleAdmin)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !updated.IsAdmin() {
		t.Error("role not updated")
	}

	if _, err := svc.UpdateUserRole(ctx, "u1", "superuser"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("invalid role: want ErrInvalidInput, got %v", err)
	}
}

func TestCanDeleteUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, "admin1", "warden", RoleAdmin)
	seedUser(t, repo, "admin2", "keeper", RoleAdmin)
	seedUser(t, repo, "u1", "clerk", RoleUser)
	seedUser(t, repo, "u2", "scribe", RoleUser)

	// anyone may delete themselves
	if err := svc.CanDeleteUser(ctx, "u1", "u1"); err != nil {
		t.Errorf("self delete: %v", err)
	}

	// a non-admin cannot delete others
	if err := svc.CanDeleteUser(ctx, "u1", "u2"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("user deleting user: want ErrForbidden, got %v", err)
	}

	// an admin may delete a plain user
	if err := svc.CanDeleteUser(ctx, "admin1", "u1"); err != nil {
		t.Errorf("admin deleting user: %v", err)
	}

	// but never another admin
	if err := svc.CanDeleteUser(ctx, "admin1", "admin2"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("admin deleting admin: want ErrForbidden, got %v", err)
	}
}

func TestGetMeRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	if _, err := svc.GetMe(context.Background(), ""); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}
