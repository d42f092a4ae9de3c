// Package app assembles repositories and domain services for the binaries.
package app

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/core/numerator"
	"retailops/internal/core/tx"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/inventory"
	"retailops/internal/domain/purchasing"
	"retailops/internal/domain/sales"
	"retailops/internal/domain/storefront"
	"retailops/internal/infrastructure/storage/memory"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/internal/infrastructure/storage/postgres/document_repo"
	"retailops/internal/infrastructure/storage/postgres/inventory_repo"
	numstore "retailops/pkg/numerator"
)

// Repositories is one storage driver's implementation of every repository.
type Repositories struct {
	Items          inventory.ItemRepository
	POSProducts    inventory.POSProductRepository
	OnlineProducts inventory.OnlineProductRepository
	Adjustments    inventory.AdjustmentRepository
	Orders         sales.Repository
	PurchaseOrders purchasing.PurchaseOrderRepository
	Bills          purchasing.BillRepository
	AuditLog       audit.Log
	TxManager      tx.Manager
	Numerator      numerator.Generator
}

// MemoryRepositories backs every repository with the in-process store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Items:          store.Items(),
		POSProducts:    store.POSProducts(),
		OnlineProducts: store.OnlineProducts(),
		Adjustments:    store.Adjustments(),
		Orders:         store.Orders(),
		PurchaseOrders: store.PurchaseOrders(),
		Bills:          store.Bills(),
		AuditLog:       store.AuditLog(),
		TxManager:      store.TxManager(),
		Numerator:      numstore.New(numstore.NewMemoryStore()),
	}
}

// PostgresRepositories backs every repository with PostgreSQL.
func PostgresRepositories(pool *pgxpool.Pool) (Repositories, error) {
	txm := postgres.NewTxManager(pool)

	auditLog, err := postgres.NewAuditLog(txm)
	if err != nil {
		return Repositories{}, fmt.Errorf("create audit log: %w", err)
	}

	return Repositories{
		Items:          inventory_repo.NewItemRepo(txm),
		POSProducts:    inventory_repo.NewPOSProductRepo(txm),
		OnlineProducts: inventory_repo.NewOnlineProductRepo(txm),
		Adjustments:    inventory_repo.NewAdjustmentRepo(txm),
		Orders:         document_repo.NewOrderRepo(txm),
		PurchaseOrders: document_repo.NewPurchaseOrderRepo(txm),
		Bills:          document_repo.NewBillRepo(txm),
		AuditLog:       auditLog,
		TxManager:      txm,
		Numerator:      numstore.New(numstore.NewPostgresStore(pool)),
	}, nil
}

// Services holds the domain services shared by the HTTP API and the worker.
type Services struct {
	Items      *inventory.ItemService
	Products   *inventory.ProductService
	Stock      *inventory.StockService
	Mirror     *inventory.Synchronizer
	Storefront *storefront.Service
	Sales      *sales.Service
	Purchasing *purchasing.Service
}

// NewServices wires the services over repos. The storefront service doubles as
// the mirror's cache invalidator.
func NewServices(repos Repositories, cache storefront.Cache, cacheTTL time.Duration) *Services {
	shop := storefront.NewService(repos.OnlineProducts, cache, cacheTTL)
	mirror := inventory.NewSynchronizer(repos.Items, repos.POSProducts, repos.OnlineProducts, shop)

	stock := inventory.NewStockService(inventory.StockServiceConfig{
		Items:       repos.Items,
		POSProducts: repos.POSProducts,
		Online:      repos.OnlineProducts,
		Adjustments: repos.Adjustments,
		TxManager:   repos.TxManager,
		Mirror:      mirror,
	})

	return &Services{
		Items:      inventory.NewItemService(repos.Items, repos.Adjustments, repos.AuditLog, repos.TxManager, mirror),
		Products:   inventory.NewProductService(repos.Items, repos.POSProducts, repos.OnlineProducts),
		Stock:      stock,
		Mirror:     mirror,
		Storefront: shop,
		Sales:      sales.NewService(repos.Orders, stock, repos.Numerator, repos.TxManager),
		Purchasing: purchasing.NewService(repos.PurchaseOrders, repos.Bills, stock, repos.Numerator, repos.TxManager),
	}
}
