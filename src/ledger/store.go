package ledger

import (
	"context"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ListTransactions. Zero values mean "any".
// Start and End are inclusive dates.
type TransactionFilter struct {
	AccountID  *int64
	CategoryID *int64
	Type       models.TransactionType
	Start      *time.Time
	End        *time.Time
	Limit      int
}

// Repository is the persistence contract of the ledger. Lookups by id are
// not owner scoped: ownership is checked by the service so that a foreign
// record yields ErrUnauthorized rather than ErrNotFound. Missing rows are
// reported as ErrNotFound.
type Repository interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	// LockAccount reads the account and holds a row lock until the
	// surrounding transaction ends.
	LockAccount(ctx context.Context, id int64) (*models.Account, error)
	ListAccounts(ctx context.Context, ownerID int64) ([]models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, a *models.Account) error
	SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	DeleteAccount(ctx context.Context, id int64) error

	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactionByExternalID(ctx context.Context, ownerID int64, externalID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, ownerID int64, f TransactionFilter) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	GetBudget(ctx context.Context, id int64) (*models.Budget, error)
	ListBudgets(ctx context.Context, ownerID int64) ([]models.Budget, error)
	CreateBudget(ctx context.Context, b *models.Budget) error
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, id int64) error

	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	ListGoals(ctx context.Context, ownerID int64) ([]models.Goal, error)
	ListGoalsByAccount(ctx context.Context, accountID int64) ([]models.Goal, error)
	CreateGoal(ctx context.Context, g *models.Goal) error
	UpdateGoal(ctx context.Context, g *models.Goal) error
	DeleteGoal(ctx context.Context, id int64) error
}

// Store is a Repository that can run a function inside one database
// transaction. If fn returns an error every write made through the
// Repository passed to fn is rolled back.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}
