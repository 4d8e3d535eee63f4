// Package rules assigns categories to transactions from user-defined
// condition trees.
package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/models"
)

// Store persists transaction rules. Lookups by id are not owner scoped.
type Store interface {
	CreateTransactionRule(ctx context.Context, rule *models.TransactionRule) error
	GetTransactionRule(ctx context.Context, id int64) (*models.TransactionRule, error)
	ListTransactionRules(ctx context.Context, ownerID int64) ([]models.TransactionRule, error)
	UpdateTransactionRule(ctx context.Context, rule *models.TransactionRule) error
	DeleteTransactionRule(ctx context.Context, id int64) error
}

type RuleInput struct {
	Name       string          `json:"name"`
	Conditions json.RawMessage `json:"conditions"`
	CategoryID int64           `json:"category_id"`
}

type Service struct {
	store  Store
	ledger *ledger.Service
}

func NewService(store Store, ledgerService *ledger.Service) *Service {
	return &Service{store: store, ledger: ledgerService}
}

func (s *Service) validate(ctx context.Context, ownerID int64, in RuleInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ledger.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if _, err := ParseConditions(in.Conditions); err != nil {
		return &ledger.ValidationError{Field: "conditions", Message: err.Error()}
	}
	if in.CategoryID <= 0 {
		return &ledger.ValidationError{Field: "category_id", Message: "is required"}
	}
	_, err := s.ledger.GetCategory(ctx, ownerID, in.CategoryID)
	return err
}

func (s *Service) Create(ctx context.Context, ownerID int64, in RuleInput) (*models.TransactionRule, error) {
	if err := s.validate(ctx, ownerID, in); err != nil {
		return nil, err
	}
	rule := &models.TransactionRule{
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(in.Name),
		Conditions: in.Conditions,
		CategoryID: in.CategoryID,
	}
	if err := s.store.CreateTransactionRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("create transaction rule: %w", err)
	}
	return rule, nil
}

func (s *Service) Get(ctx context.Context, ownerID, ruleID int64) (*models.TransactionRule, error) {
	rule, err := s.store.GetTransactionRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.OwnerID != ownerID {
		return nil, ledger.ErrUnauthorized
	}
	return rule, nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]models.TransactionRule, error) {
	return s.store.ListTransactionRules(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, ruleID int64, in RuleInput) (*models.TransactionRule, error) {
	rule, err := s.Get(ctx, ownerID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, ownerID, in); err != nil {
		return nil, err
	}
	rule.Name = strings.TrimSpace(in.Name)
	rule.Conditions = in.Conditions
	rule.CategoryID = in.CategoryID
	if err := s.store.UpdateTransactionRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("update transaction rule %d: %w", ruleID, err)
	}
	return rule, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, ruleID int64) error {
	if _, err := s.Get(ctx, ownerID, ruleID); err != nil {
		return err
	}
	return s.store.DeleteTransactionRule(ctx, ruleID)
}

type compiledRule struct {
	id         int64
	categoryID int64
	cond       Condition
}

// Matcher evaluates an owner's rules in id order; the first match wins.
type Matcher struct {
	rules []compiledRule
}

// Matcher loads and parses the owner's rules. Rules whose stored
// conditions no longer parse are skipped.
func (s *Service) Matcher(ctx context.Context, ownerID int64) (*Matcher, error) {
	stored, err := s.store.ListTransactionRules(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transaction rules: %w", err)
	}
	m := &Matcher{}
	for _, r := range stored {
		cond, err := ParseConditions(r.Conditions)
		if err != nil {
			logging.FromContext(ctx).Warn("skipping unparsable transaction rule", "rule_id", r.ID, "err", err)
			continue
		}
		m.rules = append(m.rules, compiledRule{id: r.ID, categoryID: r.CategoryID, cond: cond})
	}
	return m, nil
}

func (m *Matcher) Match(c Candidate) (int64, bool) {
	for _, r := range m.rules {
		if Evaluate(r.cond, c) {
			return r.categoryID, true
		}
	}
	return 0, false
}

// Trigger re-categorises every transaction of the owner that a rule
// matches. Balances are unaffected. It returns the number of transactions
// whose category changed.
func (s *Service) Trigger(ctx context.Context, ownerID int64) (int, error) {
	matcher, err := s.Matcher(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if len(matcher.rules) == 0 {
		return 0, nil
	}
	accounts, err := s.ledger.ListAccounts(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}
	accountNames := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	txns, err := s.ledger.ListTransactions(ctx, ownerID, ledger.TransactionFilter{})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	changed := 0
	for _, t := range txns {
		categoryID, ok := matcher.Match(Candidate{
			Description: t.Description,
			Amount:      t.Amount,
			Account:     accountNames[t.AccountID],
			Type:        string(t.Type),
		})
		if !ok || categoryID == t.CategoryID {
			continue
		}
		if err := s.ledger.RecategorizeTransaction(ctx, ownerID, t.ID, categoryID); err != nil {
			return changed, fmt.Errorf("recategorize transaction %d: %w", t.ID, err)
		}
		changed++
	}
	logging.FromContext(ctx).Info("transaction rules applied", "user_id", ownerID, "changed", changed)
	return changed, nil
}
