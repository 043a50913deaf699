package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"shopkeeper/internal/auth"
	"shopkeeper/internal/model"
)

// LocalUsers is an in-memory user directory implementing the same surface as
// the remote one, for running against no backend at all. Passwords are
// stored as argon2id hashes next to the records and blanked in every copy
// the directory hands out.
type LocalUsers struct {
	mu     sync.Mutex
	delay  time.Duration
	users  []model.User
	hashes map[int64]string
	ids    idMint
}

// NewLocalUsers creates an empty directory. delay adds artificial latency to
// every operation, mimicking a remote round trip; zero disables it.
func NewLocalUsers(delay time.Duration) *LocalUsers {
	return &LocalUsers{delay: delay, hashes: make(map[int64]string)}
}

// Seed loads records, minting identifiers for entries without one and
// hashing any plaintext passwords the fixture carries.
func (l *LocalUsers) Seed(users []model.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range users {
		if u.ID == 0 {
			u.ID = l.ids.next()
		} else {
			l.ids.bump(u.ID)
		}
		if u.Password != "" {
			h, err := auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			l.hashes[u.ID] = h
		}
		l.users = append(l.users, u.Sanitized())
	}
	return nil
}

// SeedFromFile loads a JSON array of users from path.
func (l *LocalUsers) SeedFromFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var users []model.User
	if err := json.Unmarshal(b, &users); err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}
	return l.Seed(users)
}

// List returns all records in insertion order.
func (l *LocalUsers) List(ctx context.Context) ([]model.User, error) {
	if err := l.sleep(ctx); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.User, len(l.users))
	copy(out, l.users)
	return out, nil
}

// Get returns one record by id.
func (l *LocalUsers) Get(ctx context.Context, id int64) (model.User, error) {
	if err := l.sleep(ctx); err != nil {
		return model.User{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user #%d: %w", id, ErrNotFound)
}

// Create stores a new record under a minted identifier.
func (l *LocalUsers) Create(ctx context.Context, user model.User) (model.User, error) {
	if err := l.sleep(ctx); err != nil {
		return model.User{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	user.ID = l.ids.next()
	if user.Password != "" {
		h, err := auth.HashPassword(user.Password)
		if err != nil {
			return model.User{}, err
		}
		l.hashes[user.ID] = h
	}
	stored := user.Sanitized()
	l.users = append(l.users, stored)
	return stored, nil
}

// Update replaces the record's fields. An empty password in the payload
// keeps the stored hash; a non-empty one replaces it.
func (l *LocalUsers) Update(ctx context.Context, id int64, user model.User) (model.User, error) {
	if err := l.sleep(ctx); err != nil {
		return model.User{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.users {
		if l.users[i].ID != id {
			continue
		}
		if user.Password != "" {
			h, err := auth.HashPassword(user.Password)
			if err != nil {
				return model.User{}, err
			}
			l.hashes[id] = h
		}
		user.ID = id
		l.users[i] = user.Sanitized()
		return l.users[i], nil
	}
	return model.User{}, fmt.Errorf("user #%d: %w", id, ErrNotFound)
}

// Delete removes the record when present. Deleting an unknown identifier
// succeeds, matching the remote directory's contract.
func (l *LocalUsers) Delete(ctx context.Context, id int64) error {
	if err := l.sleep(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.users {
		if l.users[i].ID == id {
			l.users = append(l.users[:i], l.users[i+1:]...)
			delete(l.hashes, id)
			return nil
		}
	}
	return nil
}

// Verify checks a username/password pair against the stored hashes.
func (l *LocalUsers) Verify(username, password string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.users {
		if u.Username == username {
			return auth.VerifyPassword(password, l.hashes[u.ID])
		}
	}
	return false, nil
}

func (l *LocalUsers) sleep(ctx context.Context) error {
	if l.delay <= 0 {
		return nil
	}
	t := time.NewTimer(l.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
