package fulfillment

import "github.com/prodataworld/prodata-backend/pkg/enums"

// Provider names as stored in orders.pusher_provider and settings keys.
const (
	ProviderJaybart   = "jaybart"
	ProviderFoster    = "foster"
	ProviderCodeCraft = "codecraft"
	ProviderJesco     = "jesco"
)

// Route maps a set of networks to the providers that receive them. Every
// listed provider is tried independently.
type Route struct {
	Networks  []enums.Network
	Providers []string
}

// RoutingTable decides which vendors an order is pushed to.
type RoutingTable struct {
	Name   string
	Routes []Route
}

// APIRoutes is used for orders placed through the programmatic API.
var APIRoutes = RoutingTable{
	Name: "api",
	Routes: []Route{
		{Networks: []enums.Network{enums.NetworkMTN}, Providers: []string{ProviderJaybart, ProviderJesco}},
		{Networks: []enums.Network{enums.NetworkTelecel, enums.NetworkIshare, enums.NetworkBigtime}, Providers: []string{ProviderCodeCraft}},
	},
}

// CheckoutRoutes is used for orders created from the web cart. Bigtime has
// no route here and is completed by maintenance.
var CheckoutRoutes = RoutingTable{
	Name: "checkout",
	Routes: []Route{
		{Networks: []enums.Network{enums.NetworkMTN, enums.NetworkTelecel}, Providers: []string{ProviderJaybart}},
		{Networks: []enums.Network{enums.NetworkIshare}, Providers: []string{ProviderFoster}},
	},
}

// ProvidersFor returns the providers routed for a stored network value. The
// first matching route wins.
func (t RoutingTable) ProvidersFor(network string) []string {
	parsed, err := enums.ParseNetwork(network)
	if err != nil {
		return nil
	}
	for _, route := range t.Routes {
		for _, n := range route.Networks {
			if n == parsed {
				return route.Providers
			}
		}
	}
	return nil
}
