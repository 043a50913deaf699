package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shopkeeper/internal/model"
)

// TestLocalCreateMintsIdentifiers checks id monotonicity and password
// sanitization.
func TestLocalCreateMintsIdentifiers(t *testing.T) {
	l := NewLocalUsers(0)
	ctx := context.Background()

	u1, err := l.Create(ctx, model.User{Username: "alice", Email: "a@example.com", Password: "pw1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u2, err := l.Create(ctx, model.User{Username: "bob", Email: "b@example.com", Password: "pw2"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u1.ID <= 0 || u2.ID <= u1.ID {
		t.Fatalf("expected strictly increasing ids, got %d then %d", u1.ID, u2.ID)
	}
	if u1.Password != "" || u2.Password != "" {
		t.Fatalf("expected passwords blanked")
	}

	users, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" {
		t.Fatalf("unexpected listing: %+v", users)
	}
	for _, u := range users {
		if u.Password != "" {
			t.Fatalf("listing leaked a password")
		}
	}
}

// TestLocalPasswordSemantics covers "absent means unchanged" on update.
func TestLocalPasswordSemantics(t *testing.T) {
	l := NewLocalUsers(0)
	ctx := context.Background()

	u, err := l.Create(ctx, model.User{Username: "alice", Email: "a@example.com", Password: "original"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, _ := l.Verify("alice", "original"); !ok {
		t.Fatalf("expected original password to verify")
	}

	// Update without a password keeps the stored hash.
	if _, err := l.Update(ctx, u.ID, model.User{Username: "alice", Email: "new@example.com"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok, _ := l.Verify("alice", "original"); !ok {
		t.Fatalf("expected password unchanged after update without one")
	}

	// Update with a password replaces it.
	if _, err := l.Update(ctx, u.ID, model.User{Username: "alice", Email: "new@example.com", Password: "rotated"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok, _ := l.Verify("alice", "original"); ok {
		t.Fatalf("expected old password rejected")
	}
	if ok, _ := l.Verify("alice", "rotated"); !ok {
		t.Fatalf("expected new password to verify")
	}
}

// TestLocalGetAndDelete covers lookups and the delete contract.
func TestLocalGetAndDelete(t *testing.T) {
	l := NewLocalUsers(0)
	ctx := context.Background()
	u, _ := l.Create(ctx, model.User{Username: "alice", Email: "a@example.com", Password: "pw"})

	got, err := l.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := l.Get(ctx, 424242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := l.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting an unknown identifier still succeeds.
	if err := l.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete(absent): %v", err)
	}
	users, _ := l.List(ctx)
	if len(users) != 0 {
		t.Fatalf("expected empty directory, got %+v", users)
	}
}

// TestSeedFromFile loads a JSON fixture, hashing plaintext passwords.
func TestSeedFromFile(t *testing.T) {
	fixture := `[
  {"id": 3, "username": "carol", "email": "c@example.com", "password": "pw",
   "name": {"firstname": "Carol", "lastname": "Jones"}},
  {"username": "dave", "email": "d@example.com",
   "name": {"firstname": "Dave", "lastname": "Smith"}}
]`
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLocalUsers(0)
	if err := l.SeedFromFile(path); err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	users, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != 3 || users[0].Password != "" {
		t.Fatalf("unexpected seeded user: %+v", users[0])
	}
	if users[1].ID <= 3 {
		t.Fatalf("expected minted id above seeded ids, got %d", users[1].ID)
	}
	if ok, _ := l.Verify("carol", "pw"); !ok {
		t.Fatalf("expected seeded password to verify")
	}

	// A minted id after seeding never collides with seeded ids (they are
	// timestamp-derived, far above small fixture ids).
	created, err := l.Create(context.Background(), model.User{Username: "erin", Email: "e@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID <= users[1].ID {
		t.Fatalf("expected id above %d, got %d", users[1].ID, created.ID)
	}
}
