package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openbooks/ledger-backend/internal/apperrors"
	portssvc "github.com/openbooks/ledger-backend/internal/core/ports/services"
	"github.com/openbooks/ledger-backend/internal/dto"
	"github.com/openbooks/ledger-backend/internal/middleware"
)

// ledgerHandler handles HTTP requests related to transactions and journal entries.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to transactions.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.postTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.GET("/:id/entries", h.getTransactionEntries)
		transactions.POST("/:id/reverse", h.reverseTransaction)
	}
}

// postTransaction godoc
// @Summary Post a balanced transaction
// @Description Validates and atomically persists a transaction with its journal entries and balance updates
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   transaction body dto.PostTransactionRequest true "Transaction details"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Validation or double-entry failure"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to post transaction"
// @Security BearerAuth
// @Router /entities/{entityID}/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, entries, err := h.ledgerService.PostTransaction(c.Request.Context(), entityID, req, userID)
	if err != nil {
		if payload, isValidation := toValidationResponse(err); isValidation {
			logger.Warn("Validation error posting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, payload)
		} else {
			logger.Error("Failed to post transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.PostTransactionResponse{
		Transaction: dto.ToTransactionResponse(txn),
		Entries:     dto.ToListJournalEntryResponse(entries),
	})
}

// listTransactions godoc
// @Summary List transactions
// @Description Retrieves a paginated list of the entity's transactions, newest first
// @Tags transactions
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list transactions"
// @Security BearerAuth
// @Router /entities/{entityID}/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.ledgerService.ListTransactions(c.Request.Context(), entityID, params)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a transaction header
// @Tags transactions
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /entities/{entityID}/transactions/{id} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("id")

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), entityID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getTransactionEntries godoc
// @Summary Get a transaction's journal entries
// @Description Retrieves the entries of a transaction with recomputed debit/credit totals and a balanced flag
// @Tags transactions
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionEntriesReport
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve journal entries"
// @Security BearerAuth
// @Router /entities/{entityID}/transactions/{id}/entries [get]
func (h *ledgerHandler) getTransactionEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("id")

	report, err := h.ledgerService.GetTransactionJournalEntries(c.Request.Context(), entityID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get journal entries", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal entries"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Posts a mirror-image transaction and links the pair; the ledger itself is append-only
// @Tags transactions
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   id path string true "Transaction ID"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Transaction cannot be reversed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction is not in a reversible state"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse transaction"
// @Security BearerAuth
// @Router /entities/{entityID}/transactions/{id}/reverse [post]
func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("id")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversing, err := h.ledgerService.ReverseTransaction(c.Request.Context(), entityID, transactionID, userID)
	if err != nil {
		if payload, isValidation := toValidationResponse(err); isValidation {
			c.JSON(http.StatusBadRequest, payload)
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reverse transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse transaction"})
		}
		return
	}

	logger.Info("Transaction reversed", slog.String("transaction_id", transactionID), slog.String("reversing_id", reversing.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversing))
}
