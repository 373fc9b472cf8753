package wallet

import (
	"context"
	"testing"

	"github.com/prodataworld/prodata-backend/internal/users"
	"github.com/prodataworld/prodata-backend/pkg/db/dbtest"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(client, NewRepository(conn), users.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestAdminAdjustCreditAndDebit(t *testing.T) {
	svc, conn := newTestService(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "20")
	ctx := context.Background()

	credit, err := svc.AdminAdjust(ctx, AdjustInput{UserID: user.ID, Amount: decimal.NewFromInt(5), Credit: true, Note: "promo"})
	require.NoError(t, err)
	require.Equal(t, enums.TransactionTypeAdminCredit, credit.Type)
	require.Equal(t, "Wallet credited by admin: promo", credit.Description)

	debit, err := svc.AdminAdjust(ctx, AdjustInput{UserID: user.ID, Amount: decimal.NewFromInt(3)})
	require.NoError(t, err)
	require.Equal(t, enums.TransactionTypeAdminDebit, debit.Type)

	var reloaded models.User
	require.NoError(t, conn.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.WalletBalance.Equal(decimal.NewFromInt(22)), "balance %s", reloaded.WalletBalance)
}

func TestAdminAdjustDebitOverdraftLeavesNoRow(t *testing.T) {
	svc, conn := newTestService(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "2")

	_, err := svc.AdminAdjust(context.Background(), AdjustInput{UserID: user.ID, Amount: decimal.NewFromInt(3)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficient))

	var count int64
	require.NoError(t, conn.Model(&models.Transaction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListPaginatesAndFilters(t *testing.T) {
	svc, conn := newTestService(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "0")
	other := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "0")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, conn, RecordInput{UserID: user.ID, Amount: decimal.NewFromInt(int64(i + 1)), Type: enums.TransactionTypeOrder})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, conn, RecordInput{UserID: user.ID, Amount: decimal.NewFromInt(9), Type: enums.TransactionTypeTopup})
	require.NoError(t, err)
	_, err = svc.Record(ctx, conn, RecordInput{UserID: other.ID, Amount: decimal.NewFromInt(9), Type: enums.TransactionTypeOrder})
	require.NoError(t, err)

	first, err := svc.List(ctx, user.ID, pagination.Params{Limit: 2}, ListFilter{Type: "order"})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, user.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilter{Type: "order"})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.NextCursor)
	for _, txn := range append(first.Items, second.Items...) {
		require.Equal(t, user.ID, txn.UserID)
		require.Equal(t, enums.TransactionTypeOrder, txn.Type)
	}

	_, err = svc.List(ctx, user.ID, pagination.Params{}, ListFilter{Type: "bogus"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetScopesToOwner(t *testing.T) {
	svc, conn := newTestService(t)
	owner := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "0")
	stranger := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "0")
	ctx := context.Background()

	txn, err := svc.Record(ctx, conn, RecordInput{UserID: owner.ID, Amount: decimal.NewFromInt(1), Type: enums.TransactionTypeTopup})
	require.NoError(t, err)
	require.Equal(t, enums.TransactionStatusCompleted, txn.Status)

	got, err := svc.Get(ctx, owner.ID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, txn.ID, got.ID)

	_, err = svc.Get(ctx, stranger.ID, txn.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
