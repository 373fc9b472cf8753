package users

import (
	"context"
	"testing"

	"github.com/prodataworld/prodata-backend/pkg/db/dbtest"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDebitWalletRequiresFunds(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "10.00")
	ctx := context.Background()

	require.NoError(t, repo.DebitWallet(ctx, user.ID, decimal.RequireFromString("4.50")))

	err := repo.DebitWallet(ctx, user.ID, decimal.RequireFromString("6.00"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficient), "got %v", err)

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.WalletBalance.Equal(decimal.RequireFromString("5.50")), "balance %s", reloaded.WalletBalance)
}

func TestDebitWalletExactBalance(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer, "5")

	require.NoError(t, repo.DebitWallet(context.Background(), user.ID, decimal.NewFromInt(5)))

	reloaded, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.WalletBalance.IsZero())
}

func TestCreditWallet(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer, "1.25")
	ctx := context.Background()

	require.NoError(t, repo.CreditWallet(ctx, user.ID, decimal.RequireFromString("2.50")))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.WalletBalance.Equal(decimal.RequireFromString("3.75")))

	err = repo.CreditWallet(ctx, 9999, decimal.NewFromInt(1))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = repo.CreditWallet(ctx, user.ID, decimal.Zero)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestFindByIDMissing(t *testing.T) {
	conn := dbtest.Open(t)
	_, err := NewRepository(conn).FindByID(context.Background(), 42)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
