package repository

import (
	"context"
	"testing"
	"time"

	"kosh/internal/models"
	"kosh/internal/pagination"
	"kosh/internal/testutil"
	"kosh/internal/watch"
)

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		budgets := NewBudgetRepository(db, broker)
		repo := NewTransactionRepository(db, budgets, broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		tx, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     42.50,
			Title:      "Groceries",
			Tags:       models.StringList{"food", "weekly"},
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected generated transaction ID")
		}
		if tx.Date.IsZero() {
			t.Error("zero date should default to now")
		}
		if len(tx.Tags) != 2 {
			t.Errorf("expected 2 tags, got %d", len(tx.Tags))
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     0,
			Title:      "Zero",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       "refund",
			Amount:     10,
			Title:      "Bad type",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)

		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: "missing",
			Type:       models.TransactionTypeExpense,
			Amount:     10,
			Title:      "Orphan",
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("wrong_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)

		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user1.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     10,
			Title:      "Not mine",
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestAddTransactionBudgetSideEffect(t *testing.T) {
	ctx := context.Background()

	t.Run("expense_bumps_matching_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		budgets := NewBudgetRepository(db, broker)
		repo := NewTransactionRepository(db, budgets, broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 5000)

		for _, amount := range []float64{500, 1200, 300} {
			_, err := repo.Add(ctx, AddTransactionParams{
				UserID:     user.ID,
				CategoryID: cat.ID,
				Type:       models.TransactionTypeExpense,
				Amount:     amount,
				Title:      "Spend",
			})
			testutil.AssertNoError(t, err)
		}

		got, err := budgets.GetByID(ctx, user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.Spent != 2000 {
			t.Errorf("expected accumulated spent 2000, got %f", got.Spent)
		}
	})

	t.Run("income_does_not_touch_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		budgets := NewBudgetRepository(db, broker)
		repo := NewTransactionRepository(db, budgets, broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 5000)

		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeIncome,
			Amount:     900,
			Title:      "Salary",
		})
		testutil.AssertNoError(t, err)

		got, err := budgets.GetByID(ctx, user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.Spent != 0 {
			t.Errorf("income must not change spent, got %f", got.Spent)
		}
	})

	t.Run("no_matching_budget_is_not_an_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		budgets := NewBudgetRepository(db, broker)
		repo := NewTransactionRepository(db, budgets, broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		other := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, other.ID, 5000)

		tx, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     77,
			Title:      "Unbudgeted",
		})
		testutil.AssertNoError(t, err)
		if tx.ID == "" {
			t.Fatal("transaction must persist even without a budget")
		}

		got, err := budgets.GetByID(ctx, user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.Spent != 0 {
			t.Errorf("unrelated budget must stay untouched, got %f", got.Spent)
		}
	})

	t.Run("expired_budget_window_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		budgets := NewBudgetRepository(db, broker)
		repo := NewTransactionRepository(db, budgets, broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 5000)

		// Dated outside the budget window.
		_, err := repo.Add(ctx, AddTransactionParams{
			UserID:     user.ID,
			CategoryID: cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     100,
			Title:      "Old expense",
			Date:       budget.StartDate.AddDate(0, 0, -10),
		})
		testutil.AssertNoError(t, err)

		got, err := budgets.GetByID(ctx, user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if got.Spent != 0 {
			t.Errorf("expense outside the window must not count, got %f", got.Spent)
		}
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("newest_first_with_pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		for i := 0; i < 5; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, float64(10+i))
		}

		result, err := repo.List(ctx, user.ID, pagination.PageRequest{Page: 1, PageSize: 3}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 5 {
			t.Errorf("expected 5 total, got %d", result.TotalItems)
		}
		if len(result.Data) != 3 {
			t.Errorf("expected page of 3, got %d", len(result.Data))
		}
		if result.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages)
		}
	})

	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, 25)
		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, 250)
		testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, 3000)

		expense := models.TransactionTypeExpense
		minAmount := 100.0
		result, err := repo.List(ctx, user.ID, pagination.PageRequest{}, TransactionFilter{
			Type:      &expense,
			MinAmount: &minAmount,
		})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 match, got %d", result.TotalItems)
		}
		if result.Data[0].Amount != 250 {
			t.Errorf("expected the 250 expense, got %f", result.Data[0].Amount)
		}
	})

	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user1.ID, cat1.ID, models.TransactionTypeExpense, 10)
		testutil.CreateTestTransaction(t, db, user2.ID, cat2.ID, models.TransactionTypeExpense, 20)

		result, err := repo.List(ctx, user1.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected only user1's transaction, got %d", result.TotalItems)
		}
	})
}

func TestSearchTransactions(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	broker := watch.NewBroker()
	repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	_, err := repo.Add(ctx, AddTransactionParams{
		UserID: user.ID, CategoryID: cat.ID,
		Type: models.TransactionTypeExpense, Amount: 12,
		Title: "Coffee beans",
	})
	testutil.AssertNoError(t, err)
	_, err = repo.Add(ctx, AddTransactionParams{
		UserID: user.ID, CategoryID: cat.ID,
		Type: models.TransactionTypeExpense, Amount: 30,
		Title: "Dinner", Description: "coffee after dessert",
	})
	testutil.AssertNoError(t, err)
	_, err = repo.Add(ctx, AddTransactionParams{
		UserID: user.ID, CategoryID: cat.ID,
		Type: models.TransactionTypeExpense, Amount: 8,
		Title: "Bus ticket",
	})
	testutil.AssertNoError(t, err)

	result, err := repo.Search(ctx, user.ID, "coffee", pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 2 {
		t.Errorf("expected 2 matches across title and description, got %d", result.TotalItems)
	}
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 50)

		newTitle := "Renamed"
		newAmount := 75.0
		_, err := repo.Update(ctx, user.ID, tx.ID, UpdateTransactionParams{
			Title:  &newTitle,
			Amount: &newAmount,
		})
		testutil.AssertNoError(t, err)

		got, err := repo.GetByID(ctx, user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if got.Title != "Renamed" || got.Amount != 75 {
			t.Errorf("expected Renamed/75, got %s/%f", got.Title, got.Amount)
		}
	})

	t.Run("rejects_foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user1.ID, cat1.ID, models.TransactionTypeExpense, 50)

		_, err := repo.Update(ctx, user1.ID, tx.ID, UpdateTransactionParams{CategoryID: &cat2.ID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)

		_, err := repo.Update(ctx, user.ID, "missing", UpdateTransactionParams{})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	broker := watch.NewBroker()
	repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	tx := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 50)

	testutil.AssertNoError(t, repo.Delete(ctx, user.ID, tx.ID))

	_, err := repo.GetByID(ctx, user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestTransactionSums(t *testing.T) {
	ctx := context.Background()

	t.Run("sum_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 100)
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 250)
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeIncome, 3000)

		from := time.Now().AddDate(0, 0, -1)
		to := time.Now().AddDate(0, 0, 1)

		total, err := repo.SumByType(ctx, user.ID, models.TransactionTypeExpense, from, to)
		testutil.AssertNoError(t, err)
		if total != 350 {
			t.Errorf("expected expense total 350, got %f", total)
		}
	})

	t.Run("sum_by_type_empty_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)

		from := time.Now().AddDate(0, 0, -1)
		to := time.Now().AddDate(0, 0, 1)
		total, err := repo.SumByType(ctx, user.ID, models.TransactionTypeExpense, from, to)
		testutil.AssertNoError(t, err)
		if total != 0 {
			t.Errorf("expected 0 for empty range, got %f", total)
		}
	})

	t.Run("sum_by_category_largest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		broker := watch.NewBroker()
		repo := NewTransactionRepository(db, NewBudgetRepository(db, broker), broker)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		rent := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, 120)
		testutil.CreateTestTransaction(t, db, user.ID, food.ID, models.TransactionTypeExpense, 80)
		testutil.CreateTestTransaction(t, db, user.ID, rent.ID, models.TransactionTypeExpense, 900)

		from := time.Now().AddDate(0, 0, -1)
		to := time.Now().AddDate(0, 0, 1)
		sums, err := repo.SumByCategory(ctx, user.ID, models.TransactionTypeExpense, from, to)
		testutil.AssertNoError(t, err)

		if len(sums) != 2 {
			t.Fatalf("expected 2 category rows, got %d", len(sums))
		}
		if sums[0].CategoryID != rent.ID || sums[0].Total != 900 {
			t.Errorf("expected rent 900 first, got %s %f", sums[0].CategoryID, sums[0].Total)
		}
		if sums[1].Total != 200 {
			t.Errorf("expected food total 200, got %f", sums[1].Total)
		}
	})
}
