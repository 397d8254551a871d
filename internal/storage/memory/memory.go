package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pfms/internal/core"
)

// Store keeps users, transactions and budgets in process memory. It mirrors
// the SQLite repository semantics and is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	users   []core.User
	txs     []core.Transaction
	budgets []core.Budget

	nextUserID   int64
	nextTxID     int64
	nextBudgetID int64
}

func New() *Store {
	return &Store{nextUserID: 1, nextTxID: 1, nextBudgetID: 1}
}

func (s *Store) Register(_ context.Context, username, password string) (core.User, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return core.User{}, core.ErrUsernameTaken
		}
	}
	u := core.User{ID: s.nextUserID, Username: username, Password: password}
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) Authenticate(_ context.Context, username, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return core.User{}, core.ErrInvalidCredentials
}

func (s *Store) ResolveID(_ context.Context, username string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u.ID, nil
		}
	}
	return core.UnknownUserID, core.ErrNotFound
}

func (s *Store) ResolveUsername(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.userLocked(id); ok {
		return u.Username, nil
	}
	return core.UnknownUsername, core.ErrNotFound
}

func (s *Store) AddTransaction(_ context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userLocked(userID); !ok {
		return core.Transaction{}, fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	t.ID = s.nextTxID
	t.UserID = userID
	s.nextTxID++
	s.txs = append(s.txs, t)
	return t, nil
}

// ListTransactions returns a copy; ids are assigned in insertion order so the
// slice is already ordered by id.
func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.txIndexLocked(userID, id); i >= 0 {
		return s.txs[i], nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, userID int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndexLocked(userID, t.ID)
	if i < 0 {
		return core.ErrNotFound
	}
	t.UserID = userID
	s.txs[i] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndexLocked(userID, id)
	if i < 0 {
		return 0, nil
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	return 1, nil
}

func (s *Store) SetBudget(_ context.Context, userID int64, category string, amount float64) error {
	if err := core.ValidateBudget(category, amount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userLocked(userID); !ok {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	for i := range s.budgets {
		if s.budgets[i].UserID == userID && s.budgets[i].Category == category {
			s.budgets[i].Amount = amount
			return nil
		}
	}
	s.budgets = append(s.budgets, core.Budget{
		ID: s.nextBudgetID, UserID: userID, Category: category, Amount: amount,
	})
	s.nextBudgetID++
	return nil
}

func (s *Store) GetBudgets(ctx context.Context, userID int64) (map[string]float64, error) {
	list, _ := s.ListBudgets(ctx, userID)
	out := make(map[string]float64, len(list))
	for _, b := range list {
		out[b.Category] = b.Amount
	}
	return out, nil
}

// ListBudgets orders by category using byte-wise comparison, matching
// SQLite's default BINARY collation.
func (s *Store) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Category, out[j].Category) < 0
	})
	return out, nil
}

// Close is a no-op; it lets the store share the SQLite lifecycle.
func (s *Store) Close() error { return nil }

func (s *Store) userLocked(id int64) (core.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return core.User{}, false
}

func (s *Store) txIndexLocked(userID, id int64) int {
	for i, t := range s.txs {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}
