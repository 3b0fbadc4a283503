package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

func newTestStore(t *testing.T) db.Store {
	t.Helper()
	ctx := context.Background()
	store, err := db.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "admin.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)

	user, created, err := createAdmin(ctx, store, hasher, " Root@Example.com ", "secret1", "Root")
	if err != nil {
		t.Fatalf("createAdmin: %v", err)
	}
	if !created || user.Role != models.RoleAdmin || user.Email != "root@example.com" {
		t.Fatalf("unexpected admin: created=%v %+v", created, user)
	}

	// Повторный вызов только подтверждает роль
	_, created, err = createAdmin(ctx, store, hasher, "root@example.com", "", "")
	if err != nil || created {
		t.Fatalf("second createAdmin: created=%v err=%v", created, err)
	}
}

func TestCreateAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)

	plain := &models.User{Email: "ann@example.com", PasswordHash: "x", Name: "Ann", IsPublic: true, Role: models.RoleUser}
	if err := store.CreateUser(ctx, plain); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, created, err := createAdmin(ctx, store, hasher, "ann@example.com", "", ""); err != nil || created {
		t.Fatalf("createAdmin: created=%v err=%v", created, err)
	}

	got, err := store.GetUserByID(ctx, plain.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", got.Role)
	}
}

func TestCreateAdminRejectsShortPassword(t *testing.T) {
	store := newTestStore(t)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)

	if _, _, err := createAdmin(context.Background(), store, hasher, "root@example.com", "123", "Root"); err == nil {
		t.Fatal("expected error for short password")
	}
	if _, _, err := createAdmin(context.Background(), store, hasher, "root@example.com", strings.Repeat("x", 73), "Root"); err == nil {
		t.Fatal("expected error for password over 72 bytes")
	}
}

func TestSeedUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)

	const doc = `
users:
  - email: alice@example.com
    password: secret1
    name: Alice
    skills_offered: [Go, Guitar]
    skills_wanted: [French]
  - email: bob@example.com
    password: secret2
    name: Bob
    is_public: false
  - email: alice@example.com
    password: secret3
    name: Alice again
`
	result, err := seedUsers(ctx, store, hasher, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("seedUsers: %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 2 created and 1 skipped", result)
	}

	alice, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if len(alice.SkillsOffered) != 2 || alice.SkillsOffered[0] != "Go" || !alice.IsPublic {
		t.Errorf("unexpected alice: %+v", alice)
	}
	if !hasher.Check(alice.PasswordHash, "secret1") {
		t.Error("password hash does not match")
	}

	bob, err := store.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if bob.IsPublic {
		t.Error("bob should be private")
	}
}

func TestSetBanned(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := &models.User{Email: "eve@example.com", PasswordHash: "x", Name: "Eve", IsPublic: true, Role: models.RoleUser}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	banned, err := setBanned(ctx, store, "EVE@example.com", true)
	if err != nil || !banned.IsBanned {
		t.Fatalf("ban: %+v, %v", banned, err)
	}
	unbanned, err := setBanned(ctx, store, "eve@example.com", false)
	if err != nil || unbanned.IsBanned {
		t.Fatalf("unban: %+v, %v", unbanned, err)
	}
	if _, err := setBanned(ctx, store, "", true); err == nil {
		t.Error("expected error for empty email")
	}
}
