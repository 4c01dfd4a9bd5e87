package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// expenseCategoryID finds a seeded expense category for the user.
func expenseCategoryID(t *testing.T, app *testApp, token, name string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/categories?type=expense", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get categories failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, raw := range parseJSON(t, rec)["categories"].([]interface{}) {
		category := raw.(map[string]interface{})
		if category["name"] == name {
			return category["id"].(string)
		}
	}
	t.Fatalf("seeded category %q not found", name)
	return ""
}

func createBudget(t *testing.T, app *testApp, token, categoryID string, amount float64) string {
	t.Helper()
	start := time.Now().AddDate(0, 0, -1).Format(time.RFC3339)
	end := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	body := fmt.Sprintf(`{"category_id":%q,"name":"Monthly food","amount":%g,"period":"monthly","start_date":%q,"end_date":%q}`,
		categoryID, amount, start, end)
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	return budget["id"].(string)
}

func addExpense(t *testing.T, app *testApp, token, categoryID string, amount float64, title string) {
	t.Helper()
	body := fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":%g,"title":%q}`,
		categoryID, amount, title)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add transaction failed: %d %s", rec.Code, rec.Body.String())
	}
}

func budgetSpent(t *testing.T, app *testApp, token, budgetID string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/budgets/"+budgetID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget failed: %d %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	return budget["spent"].(float64)
}

func TestBudgetFlow(t *testing.T) {
	t.Run("expense transactions accumulate into the budget", func(t *testing.T) {
		app := setupApp(t)
		token, _ := app.registerUser(t, "budget@example.com", "password123")
		foodID := expenseCategoryID(t, app, token, "Food & Dining")

		budgetID := createBudget(t, app, token, foodID, 1000)

		addExpense(t, app, token, foodID, 250, "Groceries")
		addExpense(t, app, token, foodID, 150, "Dinner out")

		if spent := budgetSpent(t, app, token, budgetID); spent != 400 {
			t.Errorf("expected spent 400, got %v", spent)
		}
	})

	t.Run("income does not touch the budget", func(t *testing.T) {
		app := setupApp(t)
		token, _ := app.registerUser(t, "income@example.com", "password123")
		foodID := expenseCategoryID(t, app, token, "Food & Dining")

		budgetID := createBudget(t, app, token, foodID, 1000)

		rec := app.request("GET", "/api/v1/categories?type=income", "", token)
		categories := parseJSON(t, rec)["categories"].([]interface{})
		salaryID := categories[0].(map[string]interface{})["id"].(string)

		body := fmt.Sprintf(`{"category_id":%q,"type":"income","amount":5000,"title":"Salary"}`, salaryID)
		rec = app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add income failed: %d %s", rec.Code, rec.Body.String())
		}

		if spent := budgetSpent(t, app, token, budgetID); spent != 0 {
			t.Errorf("expected spent 0 after income, got %v", spent)
		}
	})

	t.Run("alerts appear as utilization crosses thresholds", func(t *testing.T) {
		app := setupApp(t)
		token, _ := app.registerUser(t, "alerts@example.com", "password123")
		foodID := expenseCategoryID(t, app, token, "Food & Dining")

		createBudget(t, app, token, foodID, 1000)

		rec := app.request("GET", "/api/v1/budgets/alerts", "", token)
		if len(parseJSON(t, rec)["alerts"].([]interface{})) != 0 {
			t.Error("expected no alerts on a fresh budget")
		}

		addExpense(t, app, token, foodID, 800, "Warning range")

		rec = app.request("GET", "/api/v1/budgets/alerts", "", token)
		alerts := parseJSON(t, rec)["alerts"].([]interface{})
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert at 80%%, got %d", len(alerts))
		}
		if alerts[0].(map[string]interface{})["type"] != "warning" {
			t.Errorf("expected warning alert, got %v", alerts[0])
		}

		addExpense(t, app, token, foodID, 300, "Over the top")

		rec = app.request("GET", "/api/v1/budgets/alerts", "", token)
		alerts = parseJSON(t, rec)["alerts"].([]interface{})
		if len(alerts) != 1 || alerts[0].(map[string]interface{})["type"] != "exceeded" {
			t.Errorf("expected single exceeded alert, got %v", alerts)
		}

		rec = app.request("GET", "/api/v1/budgets/near-limit", "", token)
		if len(parseJSON(t, rec)["budgets"].([]interface{})) != 1 {
			t.Error("expected budget in near-limit list")
		}
	})

	t.Run("expense without a budget still persists", func(t *testing.T) {
		app := setupApp(t)
		token, _ := app.registerUser(t, "nobudget@example.com", "password123")
		foodID := expenseCategoryID(t, app, token, "Food & Dining")

		addExpense(t, app, token, foodID, 42, "Untracked")

		rec := app.request("GET", "/api/v1/transactions", "", token)
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 1 {
			t.Errorf("expected 1 transaction, got %v", result["total_items"])
		}
	})

	t.Run("summary aggregates by type and category", func(t *testing.T) {
		app := setupApp(t)
		token, _ := app.registerUser(t, "summary@example.com", "password123")
		foodID := expenseCategoryID(t, app, token, "Food & Dining")
		transportID := expenseCategoryID(t, app, token, "Transport")

		addExpense(t, app, token, foodID, 100, "Lunches")
		addExpense(t, app, token, transportID, 60, "Fuel")

		rec := app.request("GET", "/api/v1/transactions/summary", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["expenses"].(float64) != 160 {
			t.Errorf("expected expenses 160, got %v", result["expenses"])
		}
		if result["net"].(float64) != -160 {
			t.Errorf("expected net -160, got %v", result["net"])
		}
		byCategory := result["by_category"].([]interface{})
		if len(byCategory) != 2 {
			t.Errorf("expected 2 category rows, got %d", len(byCategory))
		}
	})
}
