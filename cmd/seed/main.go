// Package main provides a CLI tool for seeding the database with demo
// stock units.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/internal/infrastructure/storage/postgres"
	"essenza/pkg/logger"
	"essenza/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	repo := postgres.NewLedgerRepo(txManager)

	units := demoUnits()
	for _, unit := range units {
		if err := repo.Put(ctx, unit); err != nil {
			log.Fatalw("failed to seed stock unit", "sku", unit.SKU, "error", err)
		}
		log.Infow("seeded stock unit", "sku", unit.SKU, "kind", string(unit.Kind))
	}

	if os.Getenv("SEED_DEMO_FLOW") == "true" {
		if err := seedPurchaseFlow(ctx, txManager, pool, units[0].ID); err != nil {
			log.Fatalw("failed to seed purchase flow", "error", err)
		}
		log.Info("seeded sample purchase flow")
	}

	log.Info("seeding complete")
}

// seedPurchaseFlow creates one purchase invoice and walks it to COMPLETED,
// leaving a realistic movement trail behind.
func seedPurchaseFlow(ctx context.Context, txManager *postgres.TxManager, pool *postgres.Pool, unitID id.ID) error {
	docRepo := postgres.NewDocumentRepo(txManager)
	ledgerRepo := postgres.NewLedgerRepo(txManager)
	numbers := numerator.New(pool.Unwrap())

	documents := document.NewService(docRepo, numbers)
	engine := lifecycle.NewEngine(docRepo, ledger.NewService(ledgerRepo), txManager, numbers, nil)

	doc, err := documents.CreateDraft(ctx, document.KindPurchase, document.DraftInput{
		SupplierName: "Vetro Supplies SRL",
		Lines: []document.LineInput{
			{UnitID: unitID, Quantity: 200, UnitPrice: decimal.RequireFromString("0.42")},
		},
	})
	if err != nil {
		return err
	}

	for _, target := range []document.Status{
		document.StatusSubmitted,
		document.StatusApproved,
		document.StatusCompleted,
	} {
		if _, err := engine.Transition(ctx, doc.ID, target); err != nil {
			return err
		}
	}
	return nil
}

func demoUnits() []ledger.StockUnit {
	inventory := func(sku, name string, available int64) ledger.StockUnit {
		return ledger.StockUnit{
			ID:        id.New(),
			SKU:       sku,
			Name:      name,
			Kind:      ledger.UnitKindInventory,
			Available: types.Quantity(available),
			Version:   1,
		}
	}
	accessory := func(sku, name string, available int64) ledger.StockUnit {
		u := inventory(sku, name, available)
		u.Kind = ledger.UnitKindAccessory
		u.Pieces = types.Quantity(available)
		u.Pumps = types.Quantity(available)
		u.Rings = types.Quantity(available)
		u.Covers = types.Quantity(available)
		u.Ribbons = types.Quantity(available)
		u.Stickers = types.Quantity(available)
		return u
	}

	return []ledger.StockUnit{
		inventory("GL-50-CLR", "Glass bottle 50ml clear", 1200),
		inventory("GL-100-CLR", "Glass bottle 100ml clear", 800),
		inventory("GL-100-AMB", "Glass bottle 100ml amber", 450),
		inventory("ESS-ROSE-1L", "Rose essence 1L drum", 60),
		inventory("CRT-STD", "Shipping carton standard", 2000),
		accessory("ACC-GOLD-50", "Gold accessory set 50ml", 500),
		accessory("ACC-SILVER-100", "Silver accessory set 100ml", 350),
	}
}
