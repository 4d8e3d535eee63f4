// Package plaid imports bank transactions from Plaid into the ledger.
package plaid

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

const clientName = "FinTrack"

// Item is a linked Plaid item after the public token exchange.
type Item struct {
	ItemID          string
	AccessToken     string
	InstitutionName string
}

// FeedTransaction is a Plaid transaction. Amount is positive for money
// leaving the account.
type FeedTransaction struct {
	ID        string
	AccountID string
	Name      string
	Amount    decimal.Decimal
	Date      time.Time
}

// SyncPage is one page of /transactions/sync.
type SyncPage struct {
	Added      []FeedTransaction
	Modified   []FeedTransaction
	Removed    []string
	NextCursor string
	HasMore    bool
}

// Feed is the part of the Plaid API the importer uses.
type Feed interface {
	CreateLinkToken(ctx context.Context, userID int64) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*Item, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error)
	RemoveItem(ctx context.Context, accessToken string) error
}

// Client is the Feed backed by the Plaid API.
type Client struct {
	api *plaid.APIClient
}

var _ Feed = (*Client)(nil)

func NewClient(clientID, secret, env string) (*Client, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid plaid environment %q", env)
	}

	return &Client{api: plaid.NewAPIClient(configuration)}, nil
}

func (c *Client) CreateLinkToken(ctx context.Context, userID int64) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: strconv.FormatInt(userID, 10),
	}
	request := plaid.NewLinkTokenCreateRequest(
		clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	request.SetUser(user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", fmt.Errorf("create link token: %w", err)
	}
	return resp.GetLinkToken(), nil
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*Item, error) {
	exchangeReq := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	exchangeResp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*exchangeReq).Execute()
	if err != nil {
		return nil, fmt.Errorf("exchange public token: %w", err)
	}

	item := &Item{
		ItemID:      exchangeResp.GetItemId(),
		AccessToken: exchangeResp.GetAccessToken(),
	}
	// The institution name is cosmetic; lookup failures leave it empty.
	item.InstitutionName, _ = c.institutionName(ctx, item.AccessToken)
	return item, nil
}

func (c *Client) institutionName(ctx context.Context, accessToken string) (string, error) {
	itemReq := plaid.NewItemGetRequest(accessToken)
	itemResp, _, err := c.api.PlaidApi.ItemGet(ctx).ItemGetRequest(*itemReq).Execute()
	if err != nil {
		return "", err
	}
	details := itemResp.GetItem()
	institutionID := details.GetInstitutionId()
	if institutionID == "" {
		return "", nil
	}

	instReq := plaid.NewInstitutionsGetByIdRequest(institutionID, []plaid.CountryCode{plaid.COUNTRYCODE_US})
	instResp, _, err := c.api.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*instReq).Execute()
	if err != nil {
		return "", err
	}
	institution := instResp.GetInstitution()
	return institution.GetName(), nil
}

func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error) {
	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != "" {
		request.SetCursor(cursor)
	}
	resp, _, err := c.api.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return nil, fmt.Errorf("sync transactions: %w", err)
	}

	page := &SyncPage{NextCursor: resp.GetNextCursor(), HasMore: resp.GetHasMore()}
	for _, t := range resp.GetAdded() {
		ft, err := feedTransaction(t)
		if err != nil {
			return nil, err
		}
		page.Added = append(page.Added, ft)
	}
	for _, t := range resp.GetModified() {
		ft, err := feedTransaction(t)
		if err != nil {
			return nil, err
		}
		page.Modified = append(page.Modified, ft)
	}
	for _, t := range resp.GetRemoved() {
		page.Removed = append(page.Removed, t.GetTransactionId())
	}
	return page, nil
}

func feedTransaction(t plaid.Transaction) (FeedTransaction, error) {
	date, err := time.Parse(time.DateOnly, t.GetDate())
	if err != nil {
		return FeedTransaction{}, fmt.Errorf("transaction %s: bad date %q: %w", t.GetTransactionId(), t.GetDate(), err)
	}
	name := t.GetMerchantName()
	if name == "" {
		name = t.GetName()
	}
	return FeedTransaction{
		ID:        t.GetTransactionId(),
		AccountID: t.GetAccountId(),
		Name:      name,
		Amount:    decimal.NewFromFloat(t.GetAmount()).Round(2),
		Date:      date,
	}, nil
}

func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	request := plaid.NewItemRemoveRequest(accessToken)
	if _, _, err := c.api.PlaidApi.ItemRemove(ctx).ItemRemoveRequest(*request).Execute(); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}
