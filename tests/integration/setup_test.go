package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"kosh/internal/database"
	"kosh/internal/handlers"
	"kosh/internal/logger"
	"kosh/internal/middleware"
	"kosh/internal/prefs"
	"kosh/internal/repository"
	"kosh/internal/validator"
	"kosh/internal/watch"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	Manager *database.Manager
	Prefs   *prefs.Store
	Router  *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated SQLite
// file, running the real migration and seeding path.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dir := t.TempDir()

	manager, err := database.NewManager(filepath.Join(dir, "kosh.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	if err := manager.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store, err := prefs.Open(filepath.Join(dir, "prefs.json"))
	if err != nil {
		t.Fatalf("failed to open prefs store: %v", err)
	}

	db := manager.DB()
	broker := watch.NewBroker()

	authRepo := repository.NewAuthRepository(db, store, broker)
	userRepo := repository.NewUserRepository(db, broker)
	categoryRepo := repository.NewCategoryRepository(db, broker)
	budgetRepo := repository.NewBudgetRepository(db, broker)
	transactionRepo := repository.NewTransactionRepository(db, budgetRepo, broker)
	reminderRepo := repository.NewReminderRepository(db, broker)
	noteRepo := repository.NewNoteRepository(db, broker)
	settingsRepo := repository.NewSettingsRepository(db, broker)

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
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/session", authHandler.Session)

	v1.GET("/categories/templates", categoryHandler.GetDefaultTemplates)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.PUT("/auth/password", authHandler.ChangePassword)
	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/profile", userHandler.GetProfile)
	protected.PUT("/profile", userHandler.UpdateProfile)
	protected.DELETE("/profile", userHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.AddTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/search", transactionHandler.SearchTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.GET("/near-limit", budgetHandler.GetNearLimitBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)

	reminders := protected.Group("/reminders")
	reminders.POST("", reminderHandler.CreateReminder)
	reminders.GET("", reminderHandler.GetReminders)
	reminders.POST("/:id/complete", reminderHandler.CompleteReminder)

	notes := protected.Group("/notes")
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.GetNotes)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("/theme", settingsHandler.UpdateTheme)

	return &testApp{Manager: manager, Prefs: store, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}
