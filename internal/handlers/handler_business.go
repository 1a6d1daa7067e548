package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/middleware"
)

// businessHandler handles HTTP requests for business documents.
type businessHandler struct {
	businessService portssvc.BusinessSvcFacade
}

// registerBusinessRoutes registers routes related to business documents.
// Each document kind gets its own path segment so a typo surfaces as a
// routing 404 rather than a silently-misfiled document.
func registerBusinessRoutes(rg *gin.RouterGroup, businessService portssvc.BusinessSvcFacade) {
	h := &businessHandler{businessService: businessService}

	business := rg.Group("/business")
	{
		kinds := map[string]domain.BusinessDocumentType{
			"sales":     domain.DocSale,
			"purchases": domain.DocPurchase,
			"expenses":  domain.DocExpense,
			"cashflows": domain.DocCashflow,
		}
		for segment, docType := range kinds {
			business.POST("/"+segment, h.postDocument(docType))
			business.GET("/"+segment, h.listDocuments(docType))
		}
		business.GET("/documents/:id", h.getDocument)
	}

	rg.GET("/cashflow-types", h.listCashflowTypes)
}

func (h *businessHandler) postDocument(docType domain.BusinessDocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.createDocument(c, docType)
	}
}

func (h *businessHandler) createDocument(c *gin.Context, docType domain.BusinessDocumentType) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBusinessDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostBusinessDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	doc, err := h.businessService.PostBusinessDocument(c.Request.Context(), req, docType)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error posting document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Document number already exists"})
		default:
			logger.Error("Failed to post business document in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post document"})
		}
		return
	}

	logger.Info("Business document posted successfully",
		slog.String("doc_type", string(doc.DocType)),
		slog.String("doc_no", doc.DocNo))
	c.JSON(http.StatusCreated, dto.ToBusinessDocumentResponse(doc))
}

func (h *businessHandler) listDocuments(docType domain.BusinessDocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var params dto.ListDocumentsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
			return
		}

		docs, err := h.businessService.ListDocuments(c.Request.Context(), docType, params.Limit)
		if err != nil {
			logger.Error("Failed to list business documents", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
			return
		}

		res := make([]dto.BusinessDocumentResponse, len(docs))
		for i := range docs {
			res[i] = dto.ToBusinessDocumentResponse(&docs[i])
		}
		c.JSON(http.StatusOK, res)
	}
}

func (h *businessHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	doc, err := h.businessService.GetDocumentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			logger.Error("Failed to get business document from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBusinessDocumentResponse(doc))
}

func (h *businessHandler) listCashflowTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	activeOnly := c.DefaultQuery("activeOnly", "true") != "false"

	types, err := h.businessService.ListCashflowTypes(c.Request.Context(), activeOnly)
	if err != nil {
		logger.Error("Failed to list cashflow types", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cashflow types"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCashflowTypeResponses(types))
}
