package app

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/handlers"
	"github.com/ashmitsharp/vendlens-api/internal/middleware"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

// multipartOverhead leaves room for form boundaries and fields on top of the file payload
const multipartOverhead = 1 << 20

// Router builds the HTTP API over the app's services
func (a *App) Router() *fiber.App {
	// A nil *StorageService must not end up inside a non-nil interface
	var storage handlers.StorageService
	if a.Storage != nil {
		storage = a.Storage
	}

	uploadHandler := handlers.NewUploadHandler(storage)
	importHandler := handlers.NewImportHandler(a.Importer, a.Commits, a.Staging, a.Validator, storage, a.Notifier)
	costHandler := handlers.NewCostHandler(a.Repository, a.Matcher, a.Validator)
	transactionHandler := handlers.NewTransactionHandler(a.Repository)
	inventoryHandler := handlers.NewInventoryHandler(a.Repository)
	summaryHandler := handlers.NewSummaryHandler(a.Repository)

	app := fiber.New(fiber.Config{
		AppName:      "vendlens API v1.0",
		BodyLimit:    int(a.Config.MaxUploadBytes) + multipartOverhead,
		ErrorHandler: utils.ErrorHandler,
	})

	// Apply global middleware
	app.Use(middleware.RequestLogger(a.Log))
	app.Use(middleware.CORS(a.Config.AllowedOrigins))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "vendlens-api",
			"storage": a.Storage != nil,
		})
	})

	v1 := app.Group("/v1")
	v1.Get("/ping", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	// Upload routes
	v1.Get("/upload/presigned-url", uploadHandler.GetPresignedURL)

	// Import routes
	v1.Post("/imports/preview", importHandler.Preview)
	v1.Post("/imports/process", importHandler.Process)
	v1.Get("/imports/:id", importHandler.Get)
	v1.Post("/imports/:id/commit", importHandler.Commit)
	v1.Delete("/imports/:id", importHandler.Discard)

	// Master cost list routes
	v1.Post("/costs/upload", costHandler.Upload)
	v1.Get("/costs", costHandler.List)

	// Transaction routes
	v1.Get("/transactions", transactionHandler.GetTransactions)
	v1.Delete("/transactions", transactionHandler.ClearTransactions)

	// Inventory routes
	v1.Get("/inventory", inventoryHandler.List)
	v1.Put("/inventory", inventoryHandler.Replace)
	v1.Post("/inventory/reset", inventoryHandler.Reset)

	v1.Get("/summary", summaryHandler.GetSummary)

	return app
}
