package wallet

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/prodataworld/prodata-backend/internal/users"
	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service records and exposes wallet ledger entries.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.Transaction, error)
	List(ctx context.Context, userID uint, params pagination.Params, filter ListFilter) (pagination.Page[models.Transaction], error)
	Get(ctx context.Context, userID, id uint) (*models.Transaction, error)
	AdminAdjust(ctx context.Context, input AdjustInput) (*models.Transaction, error)
}

// RecordInput captures the immutable data a ledger row requires.
type RecordInput struct {
	UserID      uint
	OrderID     *uint
	Amount      decimal.Decimal
	Type        enums.TransactionType
	Status      enums.TransactionStatus
	Description string
	Reference   *string
}

// AdjustInput is an operator-initiated balance correction.
type AdjustInput struct {
	UserID uint
	Amount decimal.Decimal
	Credit bool
	Note   string
}

type service struct {
	tx    db.TxRunner
	repo  Repository
	users *users.Repository
}

// NewService wires a wallet service.
func NewService(tx db.TxRunner, repo Repository, usersRepo *users.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{tx: tx, repo: repo, users: usersRepo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.Transaction, error) {
	if input.UserID == 0 {
		return nil, fmt.Errorf("user id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid transaction type %q", input.Type)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("transaction amount must not be negative")
	}
	status := input.Status
	if status == "" {
		status = enums.TransactionStatusCompleted
	}

	txn := &models.Transaction{
		UserID:      input.UserID,
		OrderID:     input.OrderID,
		Amount:      input.Amount,
		Status:      status,
		Type:        input.Type,
		Description: input.Description,
		Reference:   input.Reference,
	}
	if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, userID uint, params pagination.Params, filter ListFilter) (pagination.Page[models.Transaction], error) {
	if filter.Type != "" {
		if _, err := enums.ParseTransactionType(filter.Type); err != nil {
			return pagination.Page[models.Transaction]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
	}
	rows, err := s.repo.ListByUser(ctx, userID, params, filter)
	if err != nil {
		return pagination.Page[models.Transaction]{}, err
	}
	return pagination.Trim(rows, params.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	}), nil
}

func (s *service) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	txn, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return txn, nil
}

// AdminAdjust moves the balance and writes the matching ledger row atomically.
func (s *service) AdminAdjust(ctx context.Context, input AdjustInput) (*models.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	txnType := enums.TransactionTypeAdminDebit
	description := "Wallet debited by admin"
	if input.Credit {
		txnType = enums.TransactionTypeAdminCredit
		description = "Wallet credited by admin"
	}
	if input.Note != "" {
		description = fmt.Sprintf("%s: %s", description, input.Note)
	}

	var recorded *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := s.users.WithTx(tx)
		var err error
		if input.Credit {
			err = usersRepo.CreditWallet(ctx, input.UserID, input.Amount)
		} else {
			err = usersRepo.DebitWallet(ctx, input.UserID, input.Amount)
		}
		if err != nil {
			return err
		}
		recorded, err = s.Record(ctx, tx, RecordInput{
			UserID:      input.UserID,
			Amount:      input.Amount,
			Type:        txnType,
			Status:      enums.TransactionStatusCompleted,
			Description: description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}
