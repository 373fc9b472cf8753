package enums

import "fmt"

// ProductType is the pricing catalogue a product belongs to.
type ProductType string

const (
	ProductTypeCustomer ProductType = "customer_product"
	ProductTypeAgent    ProductType = "agent_product"
	ProductTypeDealer   ProductType = "dealer_product"
)

var validProductTypes = []ProductType{
	ProductTypeCustomer,
	ProductTypeAgent,
	ProductTypeDealer,
}

func (p ProductType) String() string {
	return string(p)
}

func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// CatalogueForRole picks the product catalogue a role buys from. Only
// customers get customer pricing; agents, dealers and admins share the
// agent catalogue.
func CatalogueForRole(role UserRole) ProductType {
	if role == UserRoleCustomer {
		return ProductTypeCustomer
	}
	return ProductTypeAgent
}
