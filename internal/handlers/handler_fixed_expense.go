package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxfang/bizledger/internal/apperrors"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/middleware"
)

// fixedExpenseHandler handles HTTP requests for recurring charges.
type fixedExpenseHandler struct {
	fixedExpenseService portssvc.FixedExpenseSvcFacade
}

// registerFixedExpenseRoutes registers routes related to fixed expenses.
func registerFixedExpenseRoutes(rg *gin.RouterGroup, fixedExpenseService portssvc.FixedExpenseSvcFacade) {
	h := &fixedExpenseHandler{fixedExpenseService: fixedExpenseService}

	expenses := rg.Group("/fixed-expenses")
	{
		expenses.POST("", h.createFixedExpense)
		expenses.GET("", h.listFixedExpenses)
		expenses.GET("/:id", h.getFixedExpense)
		expenses.PUT("/:id", h.updateFixedExpense)
		expenses.DELETE("/:id", h.deleteFixedExpense)
		expenses.POST("/:id/execute", h.executeFixedExpense)
		expenses.POST("/execute-due", h.executeAllDue)
	}
}

func expenseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fixed expense ID"})
		return 0, false
	}
	return id, true
}

func (h *fixedExpenseHandler) createFixedExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFixedExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fe, err := h.fixedExpenseService.CreateFixedExpense(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating fixed expense", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create fixed expense in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fixed expense"})
		}
		return
	}

	logger.Info("Fixed expense created successfully", slog.Int64("fixed_expense_id", fe.ID))
	c.JSON(http.StatusCreated, dto.ToFixedExpenseResponse(fe))
}

func (h *fixedExpenseHandler) listFixedExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fes, err := h.fixedExpenseService.ListFixedExpenses(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list fixed expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fixed expenses"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListFixedExpenseResponse(fes))
}

func (h *fixedExpenseHandler) getFixedExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := expenseIDParam(c)
	if !ok {
		return
	}

	fe, err := h.fixedExpenseService.GetFixedExpenseByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fixed expense not found"})
		} else {
			logger.Error("Failed to get fixed expense from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fixed expense"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToFixedExpenseResponse(fe))
}

func (h *fixedExpenseHandler) updateFixedExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := expenseIDParam(c)
	if !ok {
		return
	}

	var req dto.FixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateFixedExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fe, err := h.fixedExpenseService.UpdateFixedExpense(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Fixed expense not found"})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error updating fixed expense", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update fixed expense in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fixed expense"})
		}
		return
	}

	logger.Info("Fixed expense updated successfully", slog.Int64("fixed_expense_id", id))
	c.JSON(http.StatusOK, dto.ToFixedExpenseResponse(fe))
}

func (h *fixedExpenseHandler) deleteFixedExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := expenseIDParam(c)
	if !ok {
		return
	}

	if err := h.fixedExpenseService.DeleteFixedExpense(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fixed expense not found"})
		} else {
			logger.Error("Failed to delete fixed expense in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete fixed expense"})
		}
		return
	}

	logger.Info("Fixed expense deleted successfully", slog.Int64("fixed_expense_id", id))
	c.Status(http.StatusNoContent)
}

func (h *fixedExpenseHandler) executeFixedExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := expenseIDParam(c)
	if !ok {
		return
	}

	// The body is optional: an empty POST runs the charge for today.
	var req dto.ExecuteFixedExpenseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ExecuteFixedExpense", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	runDate := time.Now()
	if req.RunDate != nil {
		runDate = *req.RunDate
	}

	fe, err := h.fixedExpenseService.GetFixedExpenseByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fixed expense not found"})
		} else {
			logger.Error("Failed to get fixed expense from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fixed expense"})
		}
		return
	}

	txnID, warnings, err := h.fixedExpenseService.Execute(c.Request.Context(), *fe, runDate, req.Force)
	if err != nil {
		logger.Error("Failed to execute fixed expense", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute fixed expense"})
		return
	}

	if txnID != nil {
		logger.Info("Fixed expense executed",
			slog.Int64("fixed_expense_id", id),
			slog.String("transaction_id", *txnID))
	}
	c.JSON(http.StatusOK, dto.FixedExpenseRunResponse{
		ExpenseID:     fe.ID,
		ExpenseName:   fe.Name,
		TransactionID: txnID,
		Warnings:      warnings,
	})
}

func (h *fixedExpenseHandler) executeAllDue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ExecuteFixedExpenseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ExecuteAllDue", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	runDate := time.Now()
	if req.RunDate != nil {
		runDate = *req.RunDate
	}

	results, err := h.fixedExpenseService.ExecuteAllDue(c.Request.Context(), runDate)
	if err != nil {
		logger.Error("Failed to execute due fixed expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute due fixed expenses"})
		return
	}

	logger.Info("Due fixed expenses executed", slog.Int("count", len(results)))
	c.JSON(http.StatusOK, dto.ToFixedExpenseRunResponses(results))
}
