package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/internal/bootstrap"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

const (
	demoSellerID = "demo_seller"
	demoSellerPW = "demo-password"
	demoBuyerID  = "demo_buyer"
)

func init() {
	Register("demo", SeedDemo)
}

// SeedDemo creates a seller, a buyer and one store with a small menu.
// Accounts that already exist are left alone.
func SeedDemo(ctx context.Context, c *bootstrap.Container) error {
	seller, err := c.Users.SignupSeller(ctx, services.SellerSignup{ID: demoSellerID, PW: demoSellerPW})
	if errors.Is(err, apperr.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := c.Users.SignupBuyer(ctx, services.BuyerSignup{
		ID: demoBuyerID, PW: demoSellerPW, Name: "Demo Buyer", Gender: "female", Age: 30,
	}); err != nil && !errors.Is(err, apperr.ErrDuplicate) {
		return err
	}

	store, err := c.Stores.Create(ctx, services.StoreInput{
		Owner:       seller.ID.Hex(),
		Name:        "Foodineye Kitchen",
		Address:     "1 Market Street",
		Phone:       "010-0000-0000",
		Description: "Demo store",
		Open:        "09:00",
		Close:       "21:00",
	})
	if err != nil {
		return err
	}
	storeID := store.ID.Hex()

	if _, err := c.Users.ChangeSellerStore(ctx, seller.ID.Hex(), seller.Scope, services.SellerStore{StoreID: storeID}); err != nil {
		return err
	}

	dishes := []services.FoodInput{
		{Name: "Bibimbap", Price: 9000, Category: "rice", Description: "Mixed rice with vegetables"},
		{Name: "Kimchi Stew", Price: 8000, Category: "stew"},
		{Name: "Tteokbokki", Price: 5000, Category: "snack"},
	}
	ids := make([]string, 0, len(dishes))
	for _, d := range dishes {
		f, err := c.Foods.Create(ctx, storeID, d)
		if err != nil {
			return err
		}
		ids = append(ids, f.ID.Hex())
	}

	_, err = c.Menus.Create(ctx, storeID, services.MenuInput{Title: "Today", FoodIDs: ids})
	return err
}
