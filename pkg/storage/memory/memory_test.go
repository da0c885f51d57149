package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/storage"
)

func makeUser(id, email string) *api.User {
	return &api.User{
		ID:    id,
		Name:  "Test User",
		Email: email,
		Role:  api.RoleCustomer,
	}
}

func TestCreateAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUserByID failed: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "a@example.com")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on create")
	}
}

func TestFindNotFound(t *testing.T) {
	s := New()

	_, err := s.FindUserByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1")

	got, _ := s.FindUserByID(ctx, "u1")
	got.Name = "mutated"

	again, _ := s.FindUserByID(ctx, "u1")
	if again.Name != "Test User" {
		t.Errorf("stored user mutated through returned pointer: Name = %q", again.Name)
	}
}

func TestDuplicateIDAndEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1")

	if err := s.CreateUser(ctx, makeUser("u1", "other@example.com"), "h"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate id: expected ErrConflict, got %v", err)
	}
	if err := s.CreateUser(ctx, makeUser("u2", "A@Example.com"), "h"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email (case-insensitive): expected ErrConflict, got %v", err)
	}
}

func TestCredentials(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1")

	creds, err := s.GetCredentialsByEmail(ctx, "A@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetCredentialsByEmail failed: %v", err)
	}
	if creds.PasswordHash != "hash-1" || creds.User.ID != "u1" {
		t.Errorf("creds = %+v, want u1/hash-1", creds)
	}

	if _, err := s.GetCredentialsByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.UpdatePassword(ctx, "u1", "hash-2"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	creds, err = s.GetCredentialsByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCredentialsByID failed: %v", err)
	}
	if creds.PasswordHash != "hash-2" {
		t.Errorf("PasswordHash = %q, want %q", creds.PasswordHash, "hash-2")
	}
}

func TestUpdateUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1")

	upd := &api.User{ID: "u1", Name: "New Name", Phone: "555", Bio: "hi", Email: "ignored@example.com"}
	if err := s.UpdateUser(ctx, upd); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if upd.Email != "a@example.com" {
		t.Errorf("Email written back = %q, want unchanged %q", upd.Email, "a@example.com")
	}

	got, _ := s.FindUserByID(ctx, "u1")
	if got.Name != "New Name" || got.Phone != "555" || got.Bio != "hi" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.UpdateUser(ctx, &api.User{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, makeUser("u1", "a@example.com"), "hash-1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.FindUserByID(ctx, "u1")
		}()
		go func() {
			defer wg.Done()
			s.UpdateUser(ctx, &api.User{ID: "u1", Name: "n"})
		}()
	}
	wg.Wait()
}
