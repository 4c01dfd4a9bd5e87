package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/pagination"
	"kosh/internal/repository"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactions repository.TransactionRepository
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// AddTransactionRequest represents the request payload for recording a transaction.
type AddTransactionRequest struct {
	CategoryID    string                 `json:"category_id" binding:"required"`
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount        float64                `json:"amount" binding:"required,gt=0"`
	Title         string                 `json:"title" binding:"required,min=1,max=200"`
	Description   string                 `json:"description" binding:"max=1000"`
	Location      string                 `json:"location" binding:"max=200"`
	ReceiptURL    string                 `json:"receipt_url" binding:"omitempty,url,max=512"`
	PaymentMethod string                 `json:"payment_method" binding:"max=50"`
	Tags          []string               `json:"tags"`
	Date          time.Time              `json:"date"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	CategoryID    *string    `json:"category_id"`
	Amount        *float64   `json:"amount" binding:"omitempty,gt=0"`
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string    `json:"description" binding:"omitempty,max=1000"`
	Location      *string    `json:"location" binding:"omitempty,max=200"`
	ReceiptURL    *string    `json:"receipt_url" binding:"omitempty,url,max=512"`
	PaymentMethod *string    `json:"payment_method" binding:"omitempty,max=50"`
	Tags          *[]string  `json:"tags"`
	Date          *time.Time `json:"date"`
}

// AddTransaction records a new transaction.
// @Summary     Add a transaction
// @Description Record a transaction; expenses also update the matching budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) AddTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactions.Add(c.Request.Context(), repository.AddTransactionParams{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Type:          req.Type,
		Amount:        req.Amount,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ReceiptURL:    req.ReceiptURL,
		PaymentMethod: req.PaymentMethod,
		Tags:          models.StringList(req.Tags),
		Date:          req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions lists the user's transactions with filters and pagination.
// @Summary     Get transactions
// @Description Get a paginated, filtered list of transactions, newest first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string  false "Start date (RFC 3339)"
// @Param       to          query string  false "End date (RFC 3339)"
// @Param       type        query string  false "Filter by type"
// @Param       category_id query string  false "Filter by category"
// @Param       min_amount  query number  false "Minimum amount"
// @Param       max_amount  query number  false "Maximum amount"
// @Param       page        query int     false "Page number (default 1)"
// @Param       page_size   query int     false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactions.List(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (repository.TransactionFilter, error) {
	var filter repository.TransactionFilter

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be an RFC 3339 timestamp")
		}
		filter.FromDate = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be an RFC 3339 timestamp")
		}
		filter.ToDate = &to
	}
	if v := c.Query("type"); v != "" {
		parsed, err := models.ParseTransactionType(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		filter.Type = &parsed
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("min_amount"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "min_amount must be a number")
		}
		filter.MinAmount = &min
	}
	if v := c.Query("max_amount"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "max_amount must be a number")
		}
		filter.MaxAmount = &max
	}

	return filter, nil
}

// GetTransaction retrieves a specific transaction.
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactions.GetByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// SearchTransactions searches titles and descriptions.
// @Summary     Search transactions
// @Description Search transactions by title or description substring
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q         query string true  "Search query"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Matching transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/search [get]
func (h *TransactionHandler) SearchTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	query := c.Query("q")
	if query == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "q is required"))
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactions.Search(c.Request.Context(), userID, query, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateTransaction updates an existing transaction.
// @Summary     Update transaction
// @Description Update a transaction's mutable fields
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	params := repository.UpdateTransactionParams{
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ReceiptURL:    req.ReceiptURL,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
	}
	if req.Tags != nil {
		tags := models.StringList(*req.Tags)
		params.Tags = &tags
	}

	transaction, err := h.transactions.Update(c.Request.Context(), userID, transactionID, params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction.
// @Summary     Delete transaction
// @Description Delete a transaction; budget spent amounts are not adjusted
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetSummary aggregates transactions over a date range.
// @Summary     Get spending summary
// @Description Get totals by type and per-category breakdown for a date range
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date (RFC 3339, default 30 days ago)"
// @Param       to   query string false "End date (RFC 3339, default now)"
// @Success     200 {object} map[string]interface{} "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be an RFC 3339 timestamp"))
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be an RFC 3339 timestamp"))
			return
		}
		to = parsed
	}

	ctx := c.Request.Context()
	income, err := h.transactions.SumByType(ctx, userID, models.TransactionTypeIncome, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenses, err := h.transactions.SumByType(ctx, userID, models.TransactionTypeExpense, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}
	byCategory, err := h.transactions.SumByCategory(ctx, userID, models.TransactionTypeExpense, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":        from,
		"to":          to,
		"income":      income,
		"expenses":    expenses,
		"net":         income - expenses,
		"by_category": byCategory,
	})
}
