package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"pfms/internal/amqp"
	"pfms/internal/core"
	applog "pfms/internal/log"
	"pfms/internal/ports"
	"pfms/internal/report"
)

// AlertPublisher delivers budget alerts. *amqp.Client satisfies it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// LedgerService orchestrates account, transaction and budget operations and
// raises an alert when a budget category goes over its limit.
type LedgerService struct {
	store  ports.Store
	alerts AlertPublisher

	mu sync.Mutex
	// alerted holds, per user, the categories already reported as exceeded.
	// A user missing from the map has not been primed yet.
	alerted map[int64]map[string]bool
}

func NewLedgerService(store ports.Store, alerts AlertPublisher) *LedgerService {
	return &LedgerService{
		store:   store,
		alerts:  alerts,
		alerted: make(map[int64]map[string]bool),
	}
}

func (s *LedgerService) Register(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.store.Register(ctx, username, password)
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

func (s *LedgerService) Login(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return core.User{}, fmt.Errorf("login: %w", err)
	}
	slog.InfoContext(ctx, "User logged in", applog.FieldOperation, applog.OpLogin, applog.FieldUserID, u.ID)
	return u, nil
}

func (s *LedgerService) AddTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.prime(ctx, userID)

	saved, err := s.store.AddTransaction(ctx, userID, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if saved.Type == core.Expense {
		s.checkBudgets(ctx, userID)
	}
	return saved, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.prime(ctx, userID)

	if err := s.store.UpdateTransaction(ctx, userID, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.checkBudgets(ctx, userID)
	return nil
}

// DeleteTransaction returns the number of rows removed. Zero means the id did
// not exist or belongs to someone else.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) (int64, error) {
	s.prime(ctx, userID)

	n, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	if n > 0 {
		s.checkBudgets(ctx, userID)
	}
	return n, nil
}

func (s *LedgerService) SetBudget(ctx context.Context, userID int64, category string, amount float64) error {
	if err := core.ValidateBudget(category, amount); err != nil {
		return err
	}
	s.prime(ctx, userID)

	if err := s.store.SetBudget(ctx, userID, category, amount); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.checkBudgets(ctx, userID)
	return nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *LedgerService) Dashboard(ctx context.Context, userID int64) (report.Dashboard, error) {
	d, err := report.Load(ctx, s.store, s.store, userID)
	if err != nil {
		return report.Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return d, nil
}

// prime records the categories that are already over budget before the first
// write for a user, so only transitions caused by writes raise alerts.
func (s *LedgerService) prime(ctx context.Context, userID int64) {
	s.mu.Lock()
	_, ok := s.alerted[userID]
	s.mu.Unlock()
	if ok {
		return
	}

	seen := make(map[string]bool)
	if d, err := report.Load(ctx, s.store, s.store, userID); err == nil {
		for _, st := range d.Budgets {
			if st.Exceeded {
				seen[st.Category] = true
			}
		}
	} else {
		slog.WarnContext(ctx, "Failed to load budget state", applog.FieldUserID, userID, applog.FieldError, err)
	}

	s.mu.Lock()
	if _, ok := s.alerted[userID]; !ok {
		s.alerted[userID] = seen
	}
	s.mu.Unlock()
}

// checkBudgets recomputes budget statuses and alerts once for every category
// that went over its limit. A category that is back under its limit can be
// alerted again. Failures here never fail the write that triggered them.
func (s *LedgerService) checkBudgets(ctx context.Context, userID int64) {
	d, err := report.Load(ctx, s.store, s.store, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to recompute budgets", applog.FieldUserID, userID, applog.FieldError, err)
		return
	}

	var fresh []report.BudgetStatus
	s.mu.Lock()
	seen := s.alerted[userID]
	if seen == nil {
		seen = make(map[string]bool)
		s.alerted[userID] = seen
	}
	for _, st := range d.Budgets {
		switch {
		case st.Exceeded && !seen[st.Category]:
			seen[st.Category] = true
			fresh = append(fresh, st)
		case !st.Exceeded:
			delete(seen, st.Category)
		}
	}
	s.mu.Unlock()

	for _, st := range fresh {
		s.publishAlert(ctx, userID, st)
	}
}

func (s *LedgerService) publishAlert(ctx context.Context, userID int64, st report.BudgetStatus) {
	slog.WarnContext(ctx, "Budget exceeded",
		applog.FieldOperation, applog.OpAlert,
		applog.FieldUserID, userID,
		applog.FieldCategory, st.Category,
		applog.FieldLimit, st.Limit,
		applog.FieldSpent, st.Spent)

	if s.alerts == nil {
		return
	}
	msg := amqp.NewBudgetAlertMessage(userID, st.Category, st.Limit, st.Spent)
	if err := s.alerts.PublishBudgetAlert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			applog.FieldUserID, userID, applog.FieldCategory, st.Category, applog.FieldError, err)
	}
}

// Close releases the store and the alert transport when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.alerts.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("alerts: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}

// AlertFunc adapts a function to AlertPublisher.
type AlertFunc func(ctx context.Context, msg *amqp.BudgetAlertMessage) error

func (f AlertFunc) PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	return f(ctx, msg)
}

// MultiPublisher sends each alert to every publisher and joins their errors.
type MultiPublisher []AlertPublisher

func (m MultiPublisher) PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishBudgetAlert(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher that holds resources.
func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
