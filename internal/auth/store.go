// Package auth is the credential gate in front of the engine: a small
// file-backed user store. The engine itself never sees credentials; the
// CLI consults this store before running a batch when auth is enabled.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Store is a user store persisted as one "name:bcrypt-hash" line per user.
type Store struct {
	path string

	// Cost is the bcrypt cost used for new registrations. Tests lower it
	// to bcrypt.MinCost.
	Cost int
}

// NewStore returns a store backed by the file at path. The file need not
// exist yet.
func NewStore(path string) *Store {
	return &Store{path: path, Cost: bcrypt.DefaultCost}
}

// UserDataExists reports whether any user has been registered.
func (s *Store) UserDataExists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Size() > 0
}

// Register adds a new user. Usernames must be non-empty and may not
// contain ':' or newlines.
func (s *Store) Register(username, password string) error {
	if username == "" || strings.ContainsAny(username, ":\n\r") {
		return fmt.Errorf("auth: invalid username %q", username)
	}
	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return fmt.Errorf("auth: %q: %w", username, ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("auth: open %q: %w", s.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s:%s\n", username, hash); err != nil {
		return fmt.Errorf("auth: write %q: %w", s.path, err)
	}
	return nil
}

// Login verifies the password for the user. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Store) Login(username, password string) error {
	users, err := s.load()
	if err != nil {
		return err
	}
	hash, ok := users[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Store) load() (map[string]string, error) {
	users := make(map[string]string)

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return users, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: open %q: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, hash, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("auth: malformed user entry in %q", s.path)
		}
		users[name] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("auth: read %q: %w", s.path, err)
	}
	return users, nil
}
