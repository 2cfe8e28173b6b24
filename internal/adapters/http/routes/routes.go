package routes

import (
	"helpbridge/internal/adapters/http/handlers"
	"helpbridge/internal/adapters/http/middleware"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/core/services"
	"helpbridge/internal/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) error {
	// Initialize repositories
	customerRepo := repositories.NewCustomerRepository(db)
	moderatorRepo := repositories.NewModeratorRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	mediaRepo := repositories.NewMediaRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// External collaborators
	geocoder := services.NewNominatimGeocoder(cfg.Geocoder)
	fileStore, err := storage.NewLocalStore(cfg.Media.Dir)
	if err != nil {
		return err
	}

	// Initialize services
	authService := services.NewAuthService(customerRepo, moderatorRepo, clientRepo,
		categoryRepo, locationRepo, refreshTokenRepo, geocoder, cfg)
	moderationService := services.NewModerationService(customerRepo, categoryRepo)
	matchingService := services.NewMatchingService(applicationRepo, customerRepo,
		locationRepo, cfg.Matching)
	applicationService := services.NewApplicationService(applicationRepo, mediaRepo,
		locationRepo, categoryRepo, moderationService, geocoder, fileStore, cfg.Matching)
	customerService := services.NewCustomerService(customerRepo, categoryRepo,
		locationRepo, geocoder)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	volunteerHandler := handlers.NewVolunteerHandler(authService, customerService,
		matchingService, applicationService)
	beneficiaryHandler := handlers.NewBeneficiaryHandler(authService,
		applicationService, moderationService)
	moderatorHandler := handlers.NewModeratorHandler(authService, moderationService,
		applicationService)

	// Health check
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api/v1")

	// Auth routes (stricter rate limit)
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/moderator-login", authHandler.ModeratorLogin)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)

	// Volunteer routes
	volunteers := api.Group("/volunteers", middleware.AuthMiddleware(cfg), middleware.VolunteerOnly())
	volunteers.Get("/profile", volunteerHandler.GetProfile)
	volunteers.Put("/profile", volunteerHandler.UpdateProfile)
	volunteers.Delete("/profile", volunteerHandler.DeactivateProfile)
	volunteers.Get("/applications", volunteerHandler.ListApplications)
	volunteers.Post("/applications/:id/accept", volunteerHandler.Accept)
	volunteers.Post("/applications/:id/close", volunteerHandler.Close)
	volunteers.Post("/applications/:id/cancel", volunteerHandler.Cancel)
	volunteers.Get("/rating", volunteerHandler.Rating)

	// Beneficiary routes
	beneficiaries := api.Group("/beneficiaries", middleware.AuthMiddleware(cfg), middleware.BeneficiaryOnly())
	beneficiaries.Post("/applications", beneficiaryHandler.CreateApplication)
	beneficiaries.Get("/applications", beneficiaryHandler.ListApplications)
	beneficiaries.Put("/applications/:id/confirm", beneficiaryHandler.Confirm)
	beneficiaries.Delete("/applications/:id", beneficiaryHandler.Deactivate)
	beneficiaries.Get("/categories", beneficiaryHandler.ListCategories)

	// Moderator routes
	moderators := api.Group("/moderators", middleware.AuthMiddleware(cfg), middleware.ModeratorOnly())
	moderators.Get("/customers/unverified", moderatorHandler.ListUnverified)
	moderators.Put("/customers/:id/verify", moderatorHandler.SetVerified)
	moderators.Delete("/customers/:id", moderatorHandler.DeactivateCustomer)
	moderators.Post("/categories", moderatorHandler.CreateCategory)
	moderators.Delete("/categories/:id", moderatorHandler.DeactivateCategory)
	moderators.Delete("/applications/:id", moderatorHandler.DeactivateApplication)

	return nil
}
