package plaid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/models"
	"fintrack-server/src/rules"

	"github.com/shopspring/decimal"
)

const maxDescriptionLength = 255

// LinkStore persists Plaid links. Lookups by id are not owner scoped.
type LinkStore interface {
	CreatePlaidLink(ctx context.Context, l *models.PlaidLink) error
	GetPlaidLink(ctx context.Context, id int64) (*models.PlaidLink, error)
	ListPlaidLinks(ctx context.Context, ownerID int64) ([]models.PlaidLink, error)
	CountPlaidLinksByItem(ctx context.Context, itemID string) (int, error)
	UpdatePlaidCursor(ctx context.Context, id int64, cursor string) error
	DeletePlaidLink(ctx context.Context, id int64) error
}

type LinkInput struct {
	PublicToken    string `json:"public_token"`
	PlaidAccountID string `json:"plaid_account_id"`
	AccountID      int64  `json:"account_id"`
	CategoryID     int64  `json:"category_id"`
}

// SyncResult counts what one sync did to the ledger.
type SyncResult struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
	Skipped  int `json:"skipped"`
}

// Service links Plaid accounts to ledger accounts and imports their
// transactions. Every import goes through the ledger so balances and
// linked goals stay in sync.
type Service struct {
	feed   Feed
	links  LinkStore
	ledger *ledger.Service
	rules  *rules.Service
}

func NewService(feed Feed, links LinkStore, ledgerService *ledger.Service, rulesService *rules.Service) *Service {
	return &Service{feed: feed, links: links, ledger: ledgerService, rules: rulesService}
}

func (s *Service) CreateLinkToken(ctx context.Context, ownerID int64) (string, error) {
	return s.feed.CreateLinkToken(ctx, ownerID)
}

func (s *Service) CreateLink(ctx context.Context, ownerID int64, in LinkInput) (*models.PlaidLink, error) {
	if strings.TrimSpace(in.PublicToken) == "" {
		return nil, &ledger.ValidationError{Field: "public_token", Message: "is required"}
	}
	if strings.TrimSpace(in.PlaidAccountID) == "" {
		return nil, &ledger.ValidationError{Field: "plaid_account_id", Message: "is required"}
	}
	if _, err := s.ledger.GetAccount(ctx, ownerID, in.AccountID); err != nil {
		return nil, err
	}
	if _, err := s.ledger.GetCategory(ctx, ownerID, in.CategoryID); err != nil {
		return nil, err
	}

	item, err := s.feed.ExchangePublicToken(ctx, in.PublicToken)
	if err != nil {
		return nil, err
	}
	link := &models.PlaidLink{
		OwnerID:         ownerID,
		AccountID:       in.AccountID,
		CategoryID:      in.CategoryID,
		ItemID:          item.ItemID,
		PlaidAccountID:  in.PlaidAccountID,
		InstitutionName: item.InstitutionName,
		AccessToken:     item.AccessToken,
	}
	if err := s.links.CreatePlaidLink(ctx, link); err != nil {
		return nil, fmt.Errorf("create plaid link: %w", err)
	}
	logging.FromContext(ctx).Info("plaid link created", "user_id", ownerID, "link_id", link.ID, "item_id", link.ItemID)
	return link, nil
}

func (s *Service) GetLink(ctx context.Context, ownerID, linkID int64) (*models.PlaidLink, error) {
	link, err := s.links.GetPlaidLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, ledger.ErrUnauthorized
	}
	return link, nil
}

func (s *Service) ListLinks(ctx context.Context, ownerID int64) ([]models.PlaidLink, error) {
	return s.links.ListPlaidLinks(ctx, ownerID)
}

// DeleteLink removes the link. Imported transactions stay. The Plaid item
// is removed once no link uses it.
func (s *Service) DeleteLink(ctx context.Context, ownerID, linkID int64) error {
	link, err := s.GetLink(ctx, ownerID, linkID)
	if err != nil {
		return err
	}
	if err := s.links.DeletePlaidLink(ctx, linkID); err != nil {
		return err
	}
	remaining, err := s.links.CountPlaidLinksByItem(ctx, link.ItemID)
	if err != nil {
		return fmt.Errorf("count plaid links: %w", err)
	}
	if remaining == 0 {
		if err := s.feed.RemoveItem(ctx, link.AccessToken); err != nil {
			logging.FromContext(ctx).Warn("failed to remove plaid item", "item_id", link.ItemID, "err", err)
		}
	}
	return nil
}

// Sync pages through the link's transaction updates from its stored
// cursor and applies those for the linked Plaid account. The cursor is
// saved after each page, so a failed sync resumes where it stopped.
func (s *Service) Sync(ctx context.Context, ownerID, linkID int64) (*SyncResult, error) {
	link, err := s.GetLink(ctx, ownerID, linkID)
	if err != nil {
		return nil, err
	}
	account, err := s.ledger.GetAccount(ctx, ownerID, link.AccountID)
	if err != nil {
		return nil, err
	}
	matcher, err := s.rules.Matcher(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	imp := &importer{svc: s, link: link, accountName: account.Name, matcher: matcher}
	cursor := link.SyncCursor
	for {
		page, err := s.feed.SyncTransactions(ctx, link.AccessToken, cursor)
		if err != nil {
			return &imp.result, err
		}
		if err := imp.apply(ctx, page); err != nil {
			return &imp.result, err
		}
		if err := s.links.UpdatePlaidCursor(ctx, link.ID, page.NextCursor); err != nil {
			return &imp.result, fmt.Errorf("update sync cursor: %w", err)
		}
		cursor = page.NextCursor
		if !page.HasMore {
			break
		}
	}

	logging.FromContext(ctx).Info("plaid sync finished",
		"user_id", ownerID,
		"link_id", link.ID,
		"added", imp.result.Added,
		"modified", imp.result.Modified,
		"removed", imp.result.Removed,
		"skipped", imp.result.Skipped,
	)
	return &imp.result, nil
}

type importer struct {
	svc         *Service
	link        *models.PlaidLink
	accountName string
	matcher     *rules.Matcher
	result      SyncResult
}

func (imp *importer) apply(ctx context.Context, page *SyncPage) error {
	for _, ft := range page.Added {
		if err := imp.add(ctx, ft); err != nil {
			return err
		}
	}
	for _, ft := range page.Modified {
		if err := imp.modify(ctx, ft); err != nil {
			return err
		}
	}
	for _, id := range page.Removed {
		if err := imp.remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// existing returns the imported transaction for a Plaid id wherever it
// lives now, or nil when it was never imported. The user may have moved
// it to another account since.
func (imp *importer) existing(ctx context.Context, plaidID string) (*models.Transaction, error) {
	t, err := imp.svc.ledger.FindByExternalID(ctx, imp.link.OwnerID, plaidID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", plaidID, err)
	}
	return t, nil
}

func (imp *importer) add(ctx context.Context, ft FeedTransaction) error {
	if ft.AccountID != imp.link.PlaidAccountID || ft.Amount.IsZero() {
		imp.result.Skipped++
		return nil
	}
	if t, err := imp.existing(ctx, ft.ID); err != nil {
		return err
	} else if t != nil {
		imp.result.Skipped++
		return nil
	}

	typ, amount := direction(ft.Amount)
	description := truncate(ft.Name)
	categoryID := imp.link.CategoryID
	if matched, ok := imp.matcher.Match(rules.Candidate{
		Description: description,
		Amount:      amount,
		Account:     imp.accountName,
		Type:        string(typ),
	}); ok {
		categoryID = matched
	}

	externalID := ft.ID
	_, err := imp.svc.ledger.CreateTransaction(ctx, imp.link.OwnerID, ledger.TransactionInput{
		AccountID:       imp.link.AccountID,
		CategoryID:      categoryID,
		Type:            typ,
		Amount:          amount,
		Description:     description,
		TransactionDate: ft.Date,
		ExternalID:      &externalID,
	})
	if err != nil {
		return fmt.Errorf("import transaction %s: %w", ft.ID, err)
	}
	imp.result.Added++
	return nil
}

func (imp *importer) modify(ctx context.Context, ft FeedTransaction) error {
	if ft.AccountID != imp.link.PlaidAccountID || ft.Amount.IsZero() {
		imp.result.Skipped++
		return nil
	}
	t, err := imp.existing(ctx, ft.ID)
	if err != nil {
		return err
	}
	if t == nil {
		return imp.add(ctx, ft)
	}

	typ, amount := direction(ft.Amount)
	description := truncate(ft.Name)
	date := ft.Date
	_, err = imp.svc.ledger.UpdateTransaction(ctx, imp.link.OwnerID, t.ID, ledger.TransactionPatch{
		Type:            &typ,
		Amount:          &amount,
		Description:     &description,
		TransactionDate: &date,
	})
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", ft.ID, err)
	}
	imp.result.Modified++
	return nil
}

func (imp *importer) remove(ctx context.Context, plaidID string) error {
	t, err := imp.existing(ctx, plaidID)
	if err != nil {
		return err
	}
	if t == nil {
		imp.result.Skipped++
		return nil
	}
	if err := imp.svc.ledger.DeleteTransaction(ctx, imp.link.OwnerID, t.ID); err != nil {
		return fmt.Errorf("delete transaction %s: %w", plaidID, err)
	}
	imp.result.Removed++
	return nil
}

// direction maps a Plaid amount to a ledger type: positive amounts are
// money out.
func direction(amount decimal.Decimal) (models.TransactionType, decimal.Decimal) {
	if amount.IsPositive() {
		return models.TransactionTypeExpense, amount
	}
	return models.TransactionTypeIncome, amount.Abs()
}

// truncate cuts s to maxDescriptionLength bytes on a rune boundary.
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDescriptionLength {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxDescriptionLength {
			break
		}
		cut = i
	}
	return s[:cut]
}
