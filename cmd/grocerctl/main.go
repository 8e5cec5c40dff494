// grocerctl is the owner's command line: seed a demo catalog, create
// coupons and mint API tokens without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/suhanarda/greengrocer/internal/config"
	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/httpx/middlewares"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/settings"
	"github.com/suhanarda/greengrocer/internal/storage/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "grocerctl",
	Short: "Admin tooling for the greengrocer shop",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo catalog, customers and coupons",
	RunE:  runSeed,
}

var (
	couponCode     string
	couponType     string
	couponValue    float64
	couponMinCart  float64
	couponMaxUses  int
	couponValidFor int
)

var couponCmd = &cobra.Command{
	Use:   "coupon",
	Short: "Coupon management",
}

var couponCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a coupon",
	RunE:  runCouponCreate,
}

var (
	tokenID   int64
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed API token for a customer, carrier or the owner",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(couponCmd)
	rootCmd.AddCommand(tokenCmd)
	couponCmd.AddCommand(couponCreateCmd)

	couponCreateCmd.Flags().StringVar(&couponCode, "code", "", "coupon code (required)")
	couponCreateCmd.Flags().StringVar(&couponType, "type", "PERCENT", "PERCENT or FIXED")
	couponCreateCmd.Flags().Float64Var(&couponValue, "value", 10, "percentage points or flat amount")
	couponCreateCmd.Flags().Float64Var(&couponMinCart, "min-cart", 0, "minimum cart subtotal")
	couponCreateCmd.Flags().IntVar(&couponMaxUses, "max-uses", 100, "usage cap")
	couponCreateCmd.Flags().IntVar(&couponValidFor, "valid-days", 30, "validity window in days from now")
	_ = couponCreateCmd.MarkFlagRequired("code")

	tokenCmd.Flags().Int64Var(&tokenID, "id", 0, "subject ID (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "customer", "customer, carrier or owner")
	_ = tokenCmd.MarkFlagRequired("id")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*sqlite.Store, error) {
	cfg := config.Load()
	return sqlite.Open(cfg.DatabasePath)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	products := []inventory.Product{
		{Name: "Tomatoes (kg)", UnitPrice: 4.5, Stock: 120, Threshold: 20},
		{Name: "Cucumbers (kg)", UnitPrice: 3.0, Stock: 80, Threshold: 15},
		{Name: "Apples (kg)", UnitPrice: 5.25, Stock: 200, Threshold: 30},
		{Name: "Parsley (bunch)", UnitPrice: 1.5, Stock: 40, Threshold: 10},
		{Name: "Strawberries (kg)", UnitPrice: 12.0, Stock: 25, Threshold: 30},
	}
	for i := range products {
		id, err := store.Inventory().CreateProduct(ctx, &products[i])
		if err != nil {
			return fmt.Errorf("seed product %q: %w", products[i].Name, err)
		}
		fmt.Printf("product %d: %s\n", id, products[i].Name)
	}

	customers := []customer.Customer{
		{Name: "Ayse Yilmaz", LoyaltyPercent: 10},
		{Name: "Mehmet Demir", LoyaltyPercent: 5},
		{Name: "Elif Kaya", LoyaltyPercent: 0},
	}
	for i := range customers {
		id, err := store.Customers().Create(ctx, &customers[i])
		if err != nil {
			return fmt.Errorf("seed customer %q: %w", customers[i].Name, err)
		}
		fmt.Printf("customer %d: %s (loyalty %.0f%%)\n", id, customers[i].Name, customers[i].LoyaltyPercent)
	}

	until := time.Now().AddDate(0, 1, 0)
	coupons := []coupon.Coupon{
		{Code: "WELCOME10", DiscountType: coupon.Percent, Value: 10, MaxUses: 1000, ValidFrom: time.Now(), ValidUntil: &until, IsActive: true},
		{Code: "FIVER", DiscountType: coupon.Fixed, Value: 5, MinCartValue: 50, MaxUses: 200, ValidFrom: time.Now(), ValidUntil: &until, IsActive: true},
	}
	for i := range coupons {
		if _, err := store.Coupons().Create(ctx, &coupons[i]); err != nil {
			return fmt.Errorf("seed coupon %q: %w", coupons[i].Code, err)
		}
		fmt.Printf("coupon %s\n", coupons[i].Code)
	}

	if err := store.Settings().PutSetting(ctx, settings.KeyMinOrderAmount, "25"); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	fmt.Println("minimum order amount: 25")

	return nil
}

func runCouponCreate(cmd *cobra.Command, _ []string) error {
	dt := coupon.DiscountType(couponType)
	if dt != coupon.Percent && dt != coupon.Fixed {
		return fmt.Errorf("invalid type %q: must be PERCENT or FIXED", couponType)
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	until := time.Now().AddDate(0, 0, couponValidFor)
	c := coupon.Coupon{
		Code:         couponCode,
		DiscountType: dt,
		Value:        couponValue,
		MinCartValue: couponMinCart,
		MaxUses:      couponMaxUses,
		ValidFrom:    time.Now(),
		ValidUntil:   &until,
		IsActive:     true,
	}

	id, err := store.Coupons().Create(context.Background(), &c)
	if err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	fmt.Printf("coupon %d: %s (%s %s, max %d uses, valid until %s)\n",
		id, c.Code, strconv.FormatFloat(c.Value, 'f', -1, 64), c.DiscountType, c.MaxUses,
		until.Format("2006-01-02"))
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	role := middlewares.Role(tokenRole)
	switch role {
	case middlewares.RoleCustomer, middlewares.RoleCarrier, middlewares.RoleOwner:
	default:
		return fmt.Errorf("invalid role %q", tokenRole)
	}

	cfg := config.Load()
	token, err := middlewares.IssueToken(cfg.JWTSecret, middlewares.Identity{ID: tokenID, Role: role})
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}
