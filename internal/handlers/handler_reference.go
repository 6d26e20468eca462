package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/dto"
	"github.com/SscSPs/ledger_intake/internal/middleware"
	"github.com/gin-gonic/gin"
)

// referenceHandler serves the data a client needs to fill a draft.
type referenceHandler struct {
	persistence portssvc.PersistenceSvc
	vocabulary  portssvc.CategoryVocabularySvc
}

// RegisterReferenceRoutes registers the account and category routes.
func RegisterReferenceRoutes(rg *gin.RouterGroup, persistence portssvc.PersistenceSvc, vocabulary portssvc.CategoryVocabularySvc) {
	h := &referenceHandler{persistence: persistence, vocabulary: vocabulary}
	rg.GET("/accounts", h.listAccounts)
	rg.POST("/categories", h.createCategory)
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags reference
// @Produce json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *referenceHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accounts, err := h.persistence.ListAccounts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// createCategory godoc
// @Summary Add a custom category
// @Tags reference
// @Accept json
// @Param category body dto.CreateCategoryRequest true "Category name"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid name"
// @Security BearerAuth
// @Router /categories [post]
func (h *referenceHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if err := h.vocabulary.AddCustomCategory(c.Request.Context(), actor, req.Name); err != nil {
		respondError(c, logger, err, "Failed to add category")
		return
	}
	c.Status(http.StatusNoContent)
}
