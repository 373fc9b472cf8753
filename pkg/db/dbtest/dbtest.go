// Package dbtest opens throwaway SQLite databases carrying the full schema
// and seeds the fixtures repository and service tests share.
package dbtest

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Open returns an isolated in-memory database for the running test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serialises writers the way row locks would in Postgres
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// Client wraps Open in the shared db.Client.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.FromGorm(conn), conn
}

// MustCreateUser seeds a user with the given role and wallet balance.
func MustCreateUser(t *testing.T, conn *gorm.DB, role enums.UserRole, balance string) *models.User {
	t.Helper()
	var count int64
	conn.Model(&models.User{}).Count(&count)
	phone := "0241234567"
	user := &models.User{
		Name:          "Test Reseller",
		Email:         fmt.Sprintf("reseller_%d@example.com", count+1),
		Phone:         &phone,
		Role:          role,
		WalletBalance: decimal.RequireFromString(balance),
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// VariantSpec describes one variant to seed.
type VariantSpec struct {
	Size     string
	Price    string
	Quantity int
	Status   string
}

// MustCreateProduct seeds a product and its variants.
func MustCreateProduct(t *testing.T, conn *gorm.DB, name, network string, productType enums.ProductType, variants ...VariantSpec) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Network:     network,
		ProductType: productType,
		HasVariants: len(variants) > 0,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	for _, vs := range variants {
		status := vs.Status
		if status == "" {
			status = string(enums.VariantStatusInStock)
		}
		variant := models.ProductVariant{
			ProductID:  product.ID,
			Price:      decimal.RequireFromString(vs.Price),
			Quantity:   vs.Quantity,
			Status:     status,
			Attributes: models.VariantAttributes{Size: vs.Size},
		}
		if err := conn.Create(&variant).Error; err != nil {
			t.Fatalf("create variant: %v", err)
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}

// MustCreateOrder seeds an order with a single item for the product's first
// variant. MustAddOrderItem appends more.
func MustCreateOrder(t *testing.T, conn *gorm.DB, user *models.User, product *models.Product, status enums.OrderStatus, beneficiary string) *models.Order {
	t.Helper()
	if len(product.Variants) == 0 {
		t.Fatalf("product %d has no variants", product.ID)
	}
	variant := product.Variants[0]
	order := &models.Order{
		UserID:            user.ID,
		Status:            status,
		Total:             variant.Price,
		BeneficiaryNumber: beneficiary,
		Network:           product.Network,
	}
	if err := conn.Omit("Items", "User").Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	item := models.OrderItem{
		OrderID:           order.ID,
		ProductID:         product.ID,
		ProductVariantID:  &variant.ID,
		Quantity:          1,
		Price:             variant.Price,
		BeneficiaryNumber: beneficiary,
	}
	if err := conn.Omit("Product", "Variant").Create(&item).Error; err != nil {
		t.Fatalf("create order item: %v", err)
	}
	item.Product = product
	item.Variant = &variant
	order.Items = []models.OrderItem{item}
	return order
}

// MustAddOrderItem appends an item for the given variant of product and adds
// its price to the order total.
func MustAddOrderItem(t *testing.T, conn *gorm.DB, order *models.Order, product *models.Product, variantIndex int, beneficiary string) models.OrderItem {
	t.Helper()
	if variantIndex < 0 || variantIndex >= len(product.Variants) {
		t.Fatalf("product %d has no variant %d", product.ID, variantIndex)
	}
	variant := product.Variants[variantIndex]
	item := models.OrderItem{
		OrderID:           order.ID,
		ProductID:         product.ID,
		ProductVariantID:  &variant.ID,
		Quantity:          1,
		Price:             variant.Price,
		BeneficiaryNumber: beneficiary,
	}
	if err := conn.Omit("Product", "Variant").Create(&item).Error; err != nil {
		t.Fatalf("create order item: %v", err)
	}
	order.Total = order.Total.Add(variant.Price)
	if err := conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("total", order.Total).Error; err != nil {
		t.Fatalf("update order total: %v", err)
	}
	item.Product = product
	item.Variant = &variant
	order.Items = append(order.Items, item)
	return item
}
