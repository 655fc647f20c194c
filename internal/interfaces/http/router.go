package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/bankability"
	"github.com/jhoicas/sylistock-api/internal/application/catalog"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *ledger.UseCase
	Inventory   *inventory.UseCase
	Reporting   *reporting.UseCase
	Bankability *bankability.UseCase
	Catalog     *catalog.UseCase
	Merchants   repository.MerchantRepository
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token con merchant_id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Catálogo global: no exige perfil de comerciante
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Catalog)
	products.Post("/", productHandler.Create)
	products.Get("/:barcode", productHandler.GetByBarcode)

	requireProfile := RequireMerchantProfile(deps.Merchants)

	stock := api.Group("/stock", requireProfile)
	stockHandler := NewStockHandler(deps.Ledger, deps.Inventory, deps.Reporting)
	stock.Get("/", stockHandler.List)
	stock.Post("/movements", stockHandler.ApplyMovement)
	stock.Post("/scan", stockHandler.Scan)
	stock.Post("/import", stockHandler.Import)
	stock.Post("/counts", stockHandler.SetCounts)
	stock.Get("/history", stockHandler.History)
	stock.Get("/alerts", stockHandler.Alerts)
	stock.Put("/:barcode/prices", stockHandler.UpdatePrices)

	merchants := api.Group("/merchants/me", requireProfile)
	merchantHandler := NewMerchantHandler(deps.Bankability, deps.Inventory)
	merchants.Put("/alert-threshold", merchantHandler.SetAlertThreshold)
	merchants.Get("/score", merchantHandler.GetScore)
	merchants.Post("/score/recompute", merchantHandler.Recompute)

	reports := api.Group("/reports", requireProfile)
	reportHandler := NewReportHandler(deps.Reporting)
	reports.Get("/inventory-value", reportHandler.InventoryValue)
	reports.Get("/activity", reportHandler.Activity)
	reports.Get("/sales", reportHandler.Sales)
	reports.Get("/dashboard", reportHandler.Dashboard)
}
