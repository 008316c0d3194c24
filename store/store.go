package store

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

type userRecord struct {
	PasswordHash string `json:"password"`
	Score        int    `json:"score"`
}

// Store is a JSON-file user store keyed by username: hashed credential
// plus an integer score. All operations are atomic behind one mutex and
// write through to disk.
type Store struct {
	mu    sync.Mutex
	path  string
	users map[string]userRecord
}

// Open loads the store file, starting empty when it does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		users: make(map[string]userRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) flush() error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *Store) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[username]
	return ok
}

// Create registers a new user with a bcrypt-hashed password and score 0.
func (s *Store) Create(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.users[username] = userRecord{PasswordHash: string(hash)}
	return s.flush()
}

// Verify checks the credential against the stored hash.
func (s *Store) Verify(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}

func (s *Store) GetScore(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return 0, ErrUserNotFound
	}
	return user.Score, nil
}

func (s *Store) SetScore(username string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	user.Score = score
	s.users[username] = user
	return s.flush()
}

// Scores returns every user's score, for the leaderboard endpoint.
func (s *Store) Scores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.users))
	for name, user := range s.users {
		out[name] = user.Score
	}
	return out
}
