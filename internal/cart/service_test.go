package cart

import (
	"context"
	"testing"

	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/pkg/db/dbtest"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	products, err := product.NewService(product.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), products)
	require.NoError(t, err)
	return svc, conn
}

func TestAddListRemove(t *testing.T) {
	svc, conn := newTestService(t)
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleAgent, "0")
	prod := dbtest.MustCreateProduct(t, conn, "MTN Data", "MTN", enums.ProductTypeAgent,
		dbtest.VariantSpec{Size: "1gb", Price: "4.50", Quantity: 5},
		dbtest.VariantSpec{Size: "2gb", Price: "8.25", Quantity: 5},
	)
	ctx := context.Background()

	first, err := svc.Add(ctx, user.ID, user.Role, AddInput{ProductVariantID: prod.Variants[0].ID, BeneficiaryNumber: " 0241112222 "})
	require.NoError(t, err)
	require.Equal(t, "0241112222", first.BeneficiaryNumber)
	require.Equal(t, 1, first.Quantity)

	_, err = svc.Add(ctx, user.ID, user.Role, AddInput{ProductVariantID: prod.Variants[1].ID, BeneficiaryNumber: "0243334444"})
	require.NoError(t, err)

	summary, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	require.True(t, summary.Total.Equal(decimal.RequireFromString("12.75")), "total %s", summary.Total)
	require.NotNil(t, summary.Items[0].Product)
	require.Equal(t, "MTN Data", summary.Items[0].Product.Name)

	require.NoError(t, svc.Remove(ctx, user.ID, first.ID))
	err = svc.Remove(ctx, user.ID, first.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAddRejectsForeignCatalogueAndStock(t *testing.T) {
	svc, conn := newTestService(t)
	customer := dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer, "0")
	agentOnly := dbtest.MustCreateProduct(t, conn, "MTN Data", "MTN", enums.ProductTypeAgent,
		dbtest.VariantSpec{Size: "1gb", Price: "4.50", Quantity: 5},
	)
	soldOut := dbtest.MustCreateProduct(t, conn, "MTN Data", "MTN", enums.ProductTypeCustomer,
		dbtest.VariantSpec{Size: "1gb", Price: "6.00", Quantity: 0},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, customer.ID, customer.Role, AddInput{ProductVariantID: agentOnly.Variants[0].ID, BeneficiaryNumber: "0241112222"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Add(ctx, customer.ID, customer.Role, AddInput{ProductVariantID: soldOut.Variants[0].ID, BeneficiaryNumber: "0241112222"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Add(ctx, customer.ID, customer.Role, AddInput{ProductVariantID: soldOut.Variants[0].ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestItemPriceFallsBackToVariant(t *testing.T) {
	item := models.CartItem{Variant: &models.ProductVariant{Price: decimal.NewFromInt(7)}}
	require.True(t, ItemPrice(item).Equal(decimal.NewFromInt(7)))

	item.Price = decimal.NewFromInt(3)
	require.True(t, ItemPrice(item).Equal(decimal.NewFromInt(3)))

	require.True(t, ItemPrice(models.CartItem{}).IsZero())
}
