package repository

import (
	"context"
	"testing"
	"time"

	"kosh/internal/models"
	"kosh/internal/testutil"
	"kosh/internal/watch"
)

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		start := time.Now()
		budget, err := repo.Create(ctx, CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Name:       "Groceries",
			Amount:     500,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  start,
			EndDate:    start.AddDate(0, 1, 0),
		})
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected generated budget ID")
		}
		if budget.Spent != 0 {
			t.Errorf("new budget should start at zero spent, got %f", budget.Spent)
		}
		if !budget.IsActive {
			t.Error("new budget should be active")
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := repo.Create(ctx, CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Amount:     0,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  time.Now(),
			EndDate:    time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := repo.Create(ctx, CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Amount:     100,
			Period:     "fortnightly",
			StartDate:  time.Now(),
			EndDate:    time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_before_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		start := time.Now()
		_, err := repo.Create(ctx, CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Amount:     100,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, -1),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("wrong_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)

		_, err := repo.Create(ctx, CreateBudgetParams{
			UserID:     user1.ID,
			CategoryID: cat.ID,
			Amount:     100,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  time.Now(),
			EndDate:    time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("duplicate_window_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		start := time.Now()
		params := CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Amount:     100,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  start,
			EndDate:    start.AddDate(0, 1, 0),
		}
		_, err := repo.Create(ctx, params)
		testutil.AssertNoError(t, err)
		_, err = repo.Create(ctx, params)
		testutil.AssertNoError(t, err)
	})
}

func TestGetActiveAt(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBudgetRepository(db, watch.NewBroker())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	current := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 100)
	expired := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 100)
	if err := db.Model(expired).Updates(map[string]interface{}{
		"start_date": time.Now().AddDate(0, -2, 0),
		"end_date":   time.Now().AddDate(0, -1, 0),
	}).Error; err != nil {
		t.Fatalf("failed to backdate budget: %v", err)
	}
	inactive := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 100)
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate budget: %v", err)
	}

	budgets, err := repo.GetActiveAt(ctx, user.ID, time.Now())
	testutil.AssertNoError(t, err)

	if len(budgets) != 1 {
		t.Fatalf("expected exactly the current budget, got %d", len(budgets))
	}
	if budgets[0].ID != current.ID {
		t.Errorf("expected budget %s, got %s", current.ID, budgets[0].ID)
	}
}

func TestAddToSpent(t *testing.T) {
	ctx := context.Background()

	t.Run("accumulates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)

		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, budget.ID, 120.50))
		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, budget.ID, 79.50))

		got, err := repo.GetByID(ctx, user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.Spent != 200 {
			t.Errorf("expected spent 200, got %f", got.Spent)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)

		err := repo.AddToSpent(ctx, user.ID, "missing", 10)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestNearLimit(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBudgetRepository(db, watch.NewBroker())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	healthy := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
	testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, healthy.ID, 500))

	atThreshold := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
	testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, atThreshold.ID, 800))

	over := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
	testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, over.ID, 1200))

	budgets, err := repo.NearLimit(ctx, user.ID)
	testutil.AssertNoError(t, err)

	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets at or past 80%%, got %d", len(budgets))
	}
	for _, b := range budgets {
		if b.ID == healthy.ID {
			t.Error("the 50% budget must not be near its limit")
		}
	}
}

func TestBudgetAlerts(t *testing.T) {
	ctx := context.Background()

	t.Run("classification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		quiet := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, quiet.ID, 799.99))

		warning := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, warning.ID, 800))

		exceeded := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)
		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, exceeded.ID, 1000))

		wayOver := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 2000)
		testutil.AssertNoError(t, repo.AddToSpent(ctx, user.ID, wayOver.ID, 15000))

		alerts, err := repo.Alerts(ctx, user.ID)
		testutil.AssertNoError(t, err)

		if len(alerts) != 3 {
			t.Fatalf("expected 3 alerts, got %d", len(alerts))
		}
		byID := make(map[string]BudgetAlert, len(alerts))
		for _, a := range alerts {
			byID[a.Budget.ID] = a
		}
		if a := byID[warning.ID]; a.Type != models.BudgetAlertWarning {
			t.Errorf("80%% budget should warn, got %s", a.Type)
		}
		if a := byID[exceeded.ID]; a.Type != models.BudgetAlertExceeded {
			t.Errorf("100%% budget should be exceeded, got %s", a.Type)
		}
		if a := byID[wayOver.ID]; a.Type != models.BudgetAlertExceeded || a.Utilization != 750 {
			t.Errorf("expected exceeded at 750%%, got %s at %f", a.Type, a.Utilization)
		}
	})

	t.Run("no_budgets_no_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewBudgetRepository(db, watch.NewBroker())
		user := testutil.CreateTestUser(t, db)

		alerts, err := repo.Alerts(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if alerts == nil {
			t.Fatal("expected empty slice, not nil")
		}
		if len(alerts) != 0 {
			t.Errorf("expected no alerts, got %d", len(alerts))
		}
	})
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBudgetRepository(db, watch.NewBroker())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)

	newAmount := 1500.0
	period := models.BudgetPeriodQuarterly
	_, err := repo.Update(ctx, user.ID, budget.ID, &newAmount, &period, nil)
	testutil.AssertNoError(t, err)

	got, err := repo.GetByID(ctx, user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if got.Amount != 1500 || got.Period != models.BudgetPeriodQuarterly {
		t.Errorf("expected 1500/quarterly, got %f/%s", got.Amount, got.Period)
	}

	bad := -5.0
	_, err = repo.Update(ctx, user.ID, budget.ID, &bad, nil, nil)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestDeactivateBudget(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBudgetRepository(db, watch.NewBroker())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000)

	testutil.AssertNoError(t, repo.Deactivate(ctx, user.ID, budget.ID))

	active, err := repo.GetByUser(ctx, user.ID, true)
	testutil.AssertNoError(t, err)
	if len(active) != 0 {
		t.Errorf("deactivated budget must not list as active, got %d", len(active))
	}

	all, err := repo.GetByUser(ctx, user.ID, false)
	testutil.AssertNoError(t, err)
	if len(all) != 1 {
		t.Errorf("deactivated budget should still exist, got %d", len(all))
	}
}

func TestGetByCategoryAndPeriod(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBudgetRepository(db, watch.NewBroker())
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	rent := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	monthly := testutil.CreateTestBudget(t, db, user.ID, food.ID, 1000)

	start := time.Now()
	_, err := repo.Create(ctx, CreateBudgetParams{
		UserID:     user.ID,
		CategoryID: food.ID,
		Name:       "Weekly food",
		Amount:     200,
		Period:     models.BudgetPeriodWeekly,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 7),
	})
	testutil.AssertNoError(t, err)
	testutil.CreateTestBudget(t, db, user.ID, rent.ID, 2000)

	got, err := repo.GetByCategoryAndPeriod(ctx, user.ID, food.ID, models.BudgetPeriodMonthly)
	testutil.AssertNoError(t, err)
	if len(got) != 1 || got[0].ID != monthly.ID {
		t.Fatalf("expected only the monthly food budget, got %d", len(got))
	}

	testutil.AssertNoError(t, repo.Deactivate(ctx, user.ID, monthly.ID))

	got, err = repo.GetByCategoryAndPeriod(ctx, user.ID, food.ID, models.BudgetPeriodMonthly)
	testutil.AssertNoError(t, err)
	if len(got) != 0 {
		t.Errorf("deactivated budget must be excluded, got %d", len(got))
	}
}
