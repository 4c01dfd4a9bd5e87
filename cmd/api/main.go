package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kosh/internal/config"
	"kosh/internal/database"
	"kosh/internal/handlers"
	"kosh/internal/logger"
	"kosh/internal/middleware"
	"kosh/internal/prefs"
	"kosh/internal/repository"
	"kosh/internal/validator"
	"kosh/internal/watch"
)

// @title           Kosh API
// @version         1.0
// @description     Kosh is a personal finance backend: transactions, categories, budgets, reminders, and notes over an embedded database.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	dbManager, err := database.NewManager(appConfig.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	store, err := prefs.Open(appConfig.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences store: %w", err)
	}

	db := dbManager.DB()
	broker := watch.NewBroker()

	// Repositories
	authRepo := repository.NewAuthRepository(db, store, broker)
	userRepo := repository.NewUserRepository(db, broker)
	categoryRepo := repository.NewCategoryRepository(db, broker)
	budgetRepo := repository.NewBudgetRepository(db, broker)
	transactionRepo := repository.NewTransactionRepository(db, budgetRepo, broker)
	reminderRepo := repository.NewReminderRepository(db, broker)
	noteRepo := repository.NewNoteRepository(db, broker)
	settingsRepo := repository.NewSettingsRepository(db, broker)

	// Handlers
	authHandler := handlers.NewAuthHandler(authRepo)
	userHandler := handlers.NewUserHandler(userRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo)
	budgetHandler := handlers.NewBudgetHandler(budgetRepo)
	reminderHandler := handlers.NewReminderHandler(reminderRepo)
	noteHandler := handlers.NewNoteHandler(noteRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/session", authHandler.Session)

	v1.GET("/categories/templates", categoryHandler.GetDefaultTemplates)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.PUT("/auth/password", authHandler.ChangePassword)
	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/profile", userHandler.GetProfile)
	protected.PUT("/profile", userHandler.UpdateProfile)
	protected.PUT("/profile/preferences", userHandler.UpdatePreferences)
	protected.DELETE("/profile", userHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.GET("/:id/subcategories", categoryHandler.GetSubcategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.POST("/:id/deactivate", categoryHandler.DeactivateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.AddTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/search", transactionHandler.SearchTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.GET("/near-limit", budgetHandler.GetNearLimitBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.POST("/:id/deactivate", budgetHandler.DeactivateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	reminders := protected.Group("/reminders")
	reminders.POST("", reminderHandler.CreateReminder)
	reminders.GET("", reminderHandler.GetReminders)
	reminders.GET("/:id", reminderHandler.GetReminder)
	reminders.PUT("/:id", reminderHandler.UpdateReminder)
	reminders.POST("/:id/complete", reminderHandler.CompleteReminder)
	reminders.DELETE("/:id", reminderHandler.DeleteReminder)

	notes := protected.Group("/notes")
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.GetNotes)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.POST("/:id/pin", noteHandler.PinNote)
	notes.POST("/:id/archive", noteHandler.ArchiveNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)
	settings.PUT("/theme", settingsHandler.UpdateTheme)

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Kosh backend server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
