package product

import (
	"context"
	"testing"

	"github.com/prodataworld/prodata-backend/pkg/db/dbtest"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBundleSizesFiltersAndSorts(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.MustCreateProduct(t, conn, "MTN Data", "MTN", enums.ProductTypeAgent,
		dbtest.VariantSpec{Size: "10gb", Price: "40.00", Quantity: 10},
		dbtest.VariantSpec{Size: "0.5gb", Price: "3.00", Quantity: 10},
		dbtest.VariantSpec{Size: "2gb", Price: "9.00", Quantity: 0},
		dbtest.VariantSpec{Size: "5gb", Price: "21.00", Quantity: 4, Status: "OUT OF STOCK"},
		dbtest.VariantSpec{Size: "1gb", Price: "4.50", Quantity: 3},
	)
	dbtest.MustCreateProduct(t, conn, "MTN Data", "MTN", enums.ProductTypeCustomer,
		dbtest.VariantSpec{Size: "1gb", Price: "6.00", Quantity: 3},
	)

	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)

	sizes, err := svc.BundleSizes(context.Background(), "mtn", enums.UserRoleAgent)
	require.NoError(t, err)
	require.Len(t, sizes, 3)
	require.Equal(t, []string{"500 MB", "1 GB", "10 GB"}, []string{sizes[0].Label, sizes[1].Label, sizes[2].Label})
	require.Equal(t, "0.5", sizes[0].Value)
	require.Equal(t, "4.5", sizes[1].Price.String())

	customer, err := svc.BundleSizes(context.Background(), "MTN", enums.UserRoleCustomer)
	require.NoError(t, err)
	require.Len(t, customer, 1)
	require.Equal(t, "6", customer[0].Price.String())
}

func TestBundleSizesValidation(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.BundleSizes(context.Background(), "", enums.UserRoleAgent)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.BundleSizes(context.Background(), "telecel", enums.UserRoleAgent)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestResolveVariantRespectsCatalogue(t *testing.T) {
	conn := dbtest.Open(t)
	agentProduct := dbtest.MustCreateProduct(t, conn, "Ishare Data", "Ishare", enums.ProductTypeAgent,
		dbtest.VariantSpec{Size: "1gb", Price: "4.00", Quantity: 3},
		dbtest.VariantSpec{Size: "2GB", Price: "8.00", Quantity: 3},
	)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	product, variant, err := svc.ResolveVariant(ctx, agentProduct.ID, enums.UserRoleDealer, "2gb")
	require.NoError(t, err)
	require.Equal(t, agentProduct.ID, product.ID)
	require.Equal(t, "8", variant.Price.String())

	_, _, err = svc.ResolveVariant(ctx, agentProduct.ID, enums.UserRoleCustomer, "1gb")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, _, err = svc.ResolveVariant(ctx, agentProduct.ID, enums.UserRoleAgent, "3gb")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
