// Package main provides a CLI tool for seeding the database with demo data and
// issuing development tokens.
//
// Usage:
//
//	seed             # print one token per role
//	SEED_DEMO_DATA=true seed
package main

import (
	"context"
	"fmt"
	"os"

	"retailops/internal/app"
	"retailops/internal/auth"
	"retailops/internal/config"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/inventory"
	"retailops/pkg/logger"
)

type demoItem struct {
	name, code string
	quantity   int
	alertLevel int
	price      string
}

var demoItems = []demoItem{
	{"Ceramic mug", "MUG-001", 40, 10, "8.50"},
	{"Espresso cup", "CUP-002", 6, 8, "5.00"},
	{"Cotton tee S", "TEE-S", 12, 4, "19.90"},
	{"Cotton tee M", "TEE-M", 0, 4, "19.90"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "seed", Roles: []string{appctx.RoleAdmin}})

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if cfg.StorageDriver != config.DriverPostgres {
			log.Fatal("SEED_DEMO_DATA requires STORAGE_DRIVER=postgres")
		}
		rt, err := app.Open(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to open runtime", "error", err)
		}
		defer rt.Close()

		if err := seedDemoData(ctx, rt.Services, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	for _, role := range []string{appctx.RoleAdmin, appctx.RoleInventory, appctx.RoleCashier} {
		token, expires, err := jwtService.GenerateAccessToken("dev-"+role, role+"@retailops.local", []string{role})
		if err != nil {
			log.Fatalw("failed to issue token", "role", role, "error", err)
		}
		fmt.Printf("%s token (expires %s):\n%s\n\n", role, expires.Format("15:04:05"), token)
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, svc *app.Services, log *logger.Logger) error {
	log.Info("seeding demo data...")
	warehouseID := id.New()

	items := make(map[string]*inventory.Item, len(demoItems))
	for _, d := range demoItems {
		item := inventory.NewItem(d.name, d.code, warehouseID, d.quantity, d.alertLevel)
		item.UnitPrice = types.MustMoney(d.price)
		if err := svc.Items.Create(ctx, item); err != nil {
			return fmt.Errorf("create item %s: %w", d.code, err)
		}
		items[d.code] = item
	}

	for _, code := range []string{"MUG-001", "CUP-002"} {
		it := items[code]
		if err := svc.Products.CreatePOSProduct(ctx, &inventory.POSProduct{
			ItemID:   &it.ID,
			ItemCode: it.ItemCode,
			Name:     it.Name,
			Price:    it.UnitPrice,
		}); err != nil {
			return fmt.Errorf("create pos product %s: %w", code, err)
		}
	}

	mug := items["MUG-001"]
	if err := svc.Products.CreateOnlineProduct(ctx, &inventory.OnlineProduct{
		Name:               mug.Name,
		Slug:               "ceramic-mug",
		InventoryProductID: &mug.ID,
		Published:          true,
	}); err != nil {
		return fmt.Errorf("create online product mug: %w", err)
	}

	small, medium := items["TEE-S"], items["TEE-M"]
	if err := svc.Products.CreateOnlineProduct(ctx, &inventory.OnlineProduct{
		Name: "Cotton tee",
		Slug: "cotton-tee",
		Variants: []inventory.Variant{
			{ID: id.New(), Name: "S", SKU: small.ItemCode, InventoryProductID: &small.ID},
			{ID: id.New(), Name: "M", SKU: medium.ItemCode, InventoryProductID: &medium.ID},
		},
		Published: true,
	}); err != nil {
		return fmt.Errorf("create online product tee: %w", err)
	}

	log.Infow("demo data seeded", "warehouse_id", warehouseID, "items", len(items))
	return nil
}
