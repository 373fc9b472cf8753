package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNetworkIgnoresCase(t *testing.T) {
	for _, raw := range []string{"ishare", "Ishare", "ISHARE", " iShare "} {
		got, err := ParseNetwork(raw)
		require.NoError(t, err, raw)
		require.Equal(t, NetworkIshare, got)
	}

	_, err := ParseNetwork("vodafone")
	require.Error(t, err)
	require.True(t, NetworkIs("MTN", NetworkMTN))
	require.False(t, NetworkIs("MTN", NetworkTelecel))
}

func TestCatalogueForRole(t *testing.T) {
	require.Equal(t, ProductTypeCustomer, CatalogueForRole(UserRoleCustomer))
	require.Equal(t, ProductTypeAgent, CatalogueForRole(UserRoleDealer))
	require.Equal(t, ProductTypeAgent, CatalogueForRole(UserRoleAgent))
	require.Equal(t, ProductTypeAgent, CatalogueForRole(UserRoleAdmin))
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("processing")
	require.NoError(t, err)
	require.Equal(t, OrderStatusProcessing, got)

	_, err = ParseOrderStatus("Processing")
	require.Error(t, err)
	require.False(t, OrderStatus("shipped").IsValid())
}
