package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/dto"
	"github.com/SscSPs/ledger_intake/internal/middleware"
	"github.com/gin-gonic/gin"
)

// draftHandler exposes draft sessions over HTTP.
type draftHandler struct {
	sessions portssvc.DraftSessionManagerSvc
}

func newDraftHandler(sessions portssvc.DraftSessionManagerSvc) *draftHandler {
	return &draftHandler{sessions: sessions}
}

// RegisterDraftRoutes registers the draft session routes on rg.
func RegisterDraftRoutes(rg *gin.RouterGroup, sessions portssvc.DraftSessionManagerSvc) {
	h := newDraftHandler(sessions)

	drafts := rg.Group("/drafts")
	{
		drafts.POST("", h.openDraft)
		drafts.GET("/:session_id", h.getDraft)
		drafts.PATCH("/:session_id", h.updateDraft)
		drafts.DELETE("/:session_id", h.closeDraft)

		drafts.PUT("/:session_id/itemization", h.setItemization)
		drafts.POST("/:session_id/line-items", h.addLineItem)
		drafts.PATCH("/:session_id/line-items/:item_id", h.updateLineItem)
		drafts.DELETE("/:session_id/line-items/:item_id", h.removeLineItem)
		drafts.POST("/:session_id/line-items/:item_id/suggestions", h.requestLineItemSuggestions)
		drafts.POST("/:session_id/line-items/:item_id/suggestions/:index/select", h.selectLineItemSuggestion)

		drafts.POST("/:session_id/duplicate/dismiss", h.dismissDuplicate)
		drafts.POST("/:session_id/split/accept", h.acceptSplit)
		drafts.POST("/:session_id/split/dismiss", h.dismissSplit)
		drafts.POST("/:session_id/receipt", h.applyReceipt)

		drafts.POST("/:session_id/suggestions", h.requestSuggestions)
		drafts.POST("/:session_id/account-suggestions", h.requestAccountSuggestions)
		drafts.POST("/:session_id/suggestions/:index/select", h.selectSuggestion)
		drafts.POST("/:session_id/category/confirm", h.confirmCategory)

		drafts.POST("/:session_id/submit", h.submitDraft)
	}
}

// session resolves the path's session for the authenticated actor. It writes
// the error response itself and returns ok=false when the request must stop.
func (h *draftHandler) session(c *gin.Context) (portssvc.DraftSessionSvc, *slog.Logger, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, logger, false
	}
	sessionID := c.Param("session_id")
	logger = logger.With(slog.String("session_id", sessionID))

	s, err := h.sessions.Get(actor, sessionID)
	if err != nil {
		respondError(c, logger, err, "Failed to load draft")
		return nil, logger, false
	}
	return s, logger, true
}

// openDraft godoc
// @Summary Start a new transaction draft
// @Description Opens a draft session for the caller. The draft starts empty and dated today.
// @Tags drafts
// @Produce json
// @Success 201 {object} portssvc.DraftSnapshot
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to open draft"
// @Security BearerAuth
// @Router /drafts [post]
func (h *draftHandler) openDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	s, err := h.sessions.Open(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to open draft")
		return
	}
	logger.Info("Draft opened", slog.String("session_id", s.ID()))
	c.JSON(http.StatusCreated, s.Snapshot())
}

// getDraft godoc
// @Summary Get a draft
// @Description Returns the current state of a draft, including async lookup results.
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 200 {object} portssvc.DraftSnapshot
// @Failure 403 {object} map[string]string "Draft belongs to another user"
// @Failure 404 {object} map[string]string "Draft not found"
// @Security BearerAuth
// @Router /drafts/{session_id} [get]
func (h *draftHandler) getDraft(c *gin.Context) {
	s, _, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// updateDraft godoc
// @Summary Edit draft fields
// @Description Applies user edits. Only fields present in the body change.
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param draft body dto.UpdateDraftRequest true "Field edits"
// @Success 200 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Draft not found"
// @Security BearerAuth
// @Router /drafts/{session_id} [patch]
func (h *draftHandler) updateDraft(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	date, err := req.ParsedDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Intent != nil {
		if err := s.SetIntent(*req.Intent); err != nil {
			respondError(c, logger, err, "Failed to set intent")
			return
		}
	}
	if req.Title != nil {
		s.SetTitle(*req.Title)
	}
	if req.Amount != nil {
		s.SetAmount(*req.Amount)
	}
	if !date.IsZero() {
		s.SetDate(date)
	}
	if req.Category != nil {
		s.SetCategory(req.Category.ToDomain())
	}
	if req.Description != nil {
		s.SetDescription(*req.Description)
	}
	if req.Note != nil {
		s.SetNote(*req.Note)
	}
	if req.DebitAccountID != nil {
		s.SetDebitAccount(*req.DebitAccountID)
	}
	if req.CreditAccountID != nil {
		s.SetCreditAccount(*req.CreditAccountID)
	}
	if req.UseAI != nil {
		s.SetUseAI(*req.UseAI)
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// closeDraft godoc
// @Summary Discard a draft
// @Tags drafts
// @Param session_id path string true "Draft session ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Draft not found"
// @Security BearerAuth
// @Router /drafts/{session_id} [delete]
func (h *draftHandler) closeDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.sessions.Close(actor, c.Param("session_id")); err != nil {
		respondError(c, logger, err, "Failed to close draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// setItemization godoc
// @Summary Toggle itemized entry
// @Description Enabling seeds one line item from the draft. Disabling keeps the first item's values.
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param itemization body dto.SetItemizationRequest true "Itemization flag"
// @Success 200 {object} portssvc.DraftSnapshot
// @Security BearerAuth
// @Router /drafts/{session_id}/itemization [put]
func (h *draftHandler) setItemization(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SetItemizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetItemization", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.Enabled {
		s.EnableItemization()
	} else {
		s.DisableItemization()
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// addLineItem godoc
// @Summary Add an empty line item
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 201 {object} dto.AddLineItemResponse
// @Security BearerAuth
// @Router /drafts/{session_id}/line-items [post]
func (h *draftHandler) addLineItem(c *gin.Context) {
	s, _, ok := h.session(c)
	if !ok {
		return
	}
	id := s.AddLineItem()
	c.JSON(http.StatusCreated, dto.AddLineItemResponse{LineItemID: id, Draft: s.Snapshot()})
}

// updateLineItem godoc
// @Summary Edit a line item field
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param item_id path string true "Line item ID"
// @Param item body dto.UpdateLineItemRequest true "Field and value"
// @Success 200 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Unknown field"
// @Security BearerAuth
// @Router /drafts/{session_id}/line-items/{item_id} [patch]
func (h *draftHandler) updateLineItem(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLineItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if err := s.UpdateLineItem(c.Param("item_id"), req.Field, req.Value); err != nil {
		respondError(c, logger, err, "Failed to update line item")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// removeLineItem godoc
// @Summary Remove a line item
// @Description Unknown item IDs are ignored.
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param item_id path string true "Line item ID"
// @Success 200 {object} portssvc.DraftSnapshot
// @Security BearerAuth
// @Router /drafts/{session_id}/line-items/{item_id} [delete]
func (h *draftHandler) removeLineItem(c *gin.Context) {
	s, _, ok := h.session(c)
	if !ok {
		return
	}
	s.RemoveLineItem(c.Param("item_id"))
	c.JSON(http.StatusOK, s.Snapshot())
}

// requestLineItemSuggestions godoc
// @Summary Ask for suggestions for one line item
// @Description Results arrive asynchronously; poll the draft.
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param item_id path string true "Line item ID"
// @Success 202 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Item not ready for suggestions"
// @Security BearerAuth
// @Router /drafts/{session_id}/line-items/{item_id}/suggestions [post]
func (h *draftHandler) requestLineItemSuggestions(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RequestLineItemSuggestions(c.Param("item_id")); err != nil {
		respondError(c, logger, err, "Failed to request line item suggestions")
		return
	}
	c.JSON(http.StatusAccepted, s.Snapshot())
}

// selectLineItemSuggestion godoc
// @Summary Accept a line item suggestion
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param item_id path string true "Line item ID"
// @Param index path int true "Suggestion index"
// @Success 200 {object} dto.SelectionResponse
// @Failure 400 {object} map[string]string "Invalid index"
// @Security BearerAuth
// @Router /drafts/{session_id}/line-items/{item_id}/suggestions/{index}/select [post]
func (h *draftHandler) selectLineItemSuggestion(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	outcome, err := s.SelectLineItemSuggestion(c.Request.Context(), c.Param("item_id"), index)
	if err != nil {
		respondError(c, logger, err, "Failed to apply suggestion")
		return
	}
	c.JSON(http.StatusOK, dto.SelectionResponse{SelectionOutcome: *outcome, Draft: s.Snapshot()})
}

// dismissDuplicate godoc
// @Summary Dismiss the duplicate warning
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 200 {object} portssvc.DraftSnapshot
// @Security BearerAuth
// @Router /drafts/{session_id}/duplicate/dismiss [post]
func (h *draftHandler) dismissDuplicate(c *gin.Context) {
	s, _, ok := h.session(c)
	if !ok {
		return
	}
	s.DismissDuplicate()
	c.JSON(http.StatusOK, s.Snapshot())
}

// acceptSplit godoc
// @Summary Split the transaction into line items
// @Description Itemizes the draft using the model's proposed split, or an even two-way split when none is available.
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 200 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Merchant or amount missing"
// @Security BearerAuth
// @Router /drafts/{session_id}/split/accept [post]
func (h *draftHandler) acceptSplit(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.AcceptSplit(); err != nil {
		respondError(c, logger, err, "Failed to split transaction")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// dismissSplit godoc
// @Summary Dismiss the split prompt
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 200 {object} portssvc.DraftSnapshot
// @Security BearerAuth
// @Router /drafts/{session_id}/split/dismiss [post]
func (h *draftHandler) dismissSplit(c *gin.Context) {
	s, _, ok := h.session(c)
	if !ok {
		return
	}
	s.DismissSplit()
	c.JSON(http.StatusOK, s.Snapshot())
}

// applyReceipt godoc
// @Summary Apply a receipt OCR result
// @Description Fills empty fields from the receipt and keeps its items for splitting.
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param receipt body dto.ApplyReceiptRequest true "OCR result"
// @Success 200 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /drafts/{session_id}/receipt [post]
func (h *draftHandler) applyReceipt(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ApplyReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyReceipt", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	ocr, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ApplyReceiptOCR(ocr)
	c.JSON(http.StatusOK, s.Snapshot())
}

// requestSuggestions godoc
// @Summary Ask for category and account suggestions
// @Description Requires intent, merchant and amount. Results arrive asynchronously; poll the draft.
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param request body dto.RequestSuggestionsRequest false "Optional extra context"
// @Success 202 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Draft not ready for suggestions"
// @Security BearerAuth
// @Router /drafts/{session_id}/suggestions [post]
func (h *draftHandler) requestSuggestions(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.RequestSuggestionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RequestSuggestions", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	if err := s.RequestSuggestions(req.UserDescription); err != nil {
		respondError(c, logger, err, "Failed to request suggestions")
		return
	}
	c.JSON(http.StatusAccepted, s.Snapshot())
}

// requestAccountSuggestions godoc
// @Summary Ask for debit and credit account suggestions
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Success 202 {object} portssvc.DraftSnapshot
// @Failure 400 {object} map[string]string "Draft not ready for suggestions"
// @Security BearerAuth
// @Router /drafts/{session_id}/account-suggestions [post]
func (h *draftHandler) requestAccountSuggestions(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RequestAccountSuggestions(); err != nil {
		respondError(c, logger, err, "Failed to request account suggestions")
		return
	}
	c.JSON(http.StatusAccepted, s.Snapshot())
}

// selectSuggestion godoc
// @Summary Accept a transaction suggestion
// @Description A suggestion with a category that is not in the vocabulary needs confirmation first.
// @Tags drafts
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param index path int true "Suggestion index"
// @Success 200 {object} dto.SelectionResponse
// @Failure 400 {object} map[string]string "Invalid index"
// @Security BearerAuth
// @Router /drafts/{session_id}/suggestions/{index}/select [post]
func (h *draftHandler) selectSuggestion(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	outcome, err := s.SelectSuggestion(c.Request.Context(), index)
	if err != nil {
		respondError(c, logger, err, "Failed to apply suggestion")
		return
	}
	c.JSON(http.StatusOK, dto.SelectionResponse{SelectionOutcome: *outcome, Draft: s.Snapshot()})
}

// confirmCategory godoc
// @Summary Answer the new-category confirmation
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param confirm body dto.ConfirmCategoryRequest true "Accept or decline"
// @Success 200 {object} dto.SelectionResponse
// @Failure 404 {object} map[string]string "Nothing awaiting confirmation"
// @Security BearerAuth
// @Router /drafts/{session_id}/category/confirm [post]
func (h *draftHandler) confirmCategory(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ConfirmCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConfirmCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	outcome, err := s.ConfirmNewCategory(c.Request.Context(), req.Accept)
	if err != nil {
		respondError(c, logger, err, "Failed to confirm category")
		return
	}
	c.JSON(http.StatusOK, dto.SelectionResponse{SelectionOutcome: *outcome, Draft: s.Snapshot()})
}

// submitDraft godoc
// @Summary Submit the draft
// @Description Validates and persists the draft. "close" resets it; "add_another" keeps the intent.
// @Tags drafts
// @Accept json
// @Produce json
// @Param session_id path string true "Draft session ID"
// @Param submit body dto.SubmitDraftRequest false "Submit mode"
// @Success 201 {object} dto.SubmitDraftResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Validation failed"
// @Failure 500 {object} map[string]string "Failed to save transaction"
// @Security BearerAuth
// @Router /drafts/{session_id}/submit [post]
func (h *draftHandler) submitDraft(c *gin.Context) {
	s, logger, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SubmitDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for SubmitDraft", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	result, err := s.Submit(c.Request.Context(), req.Mode)
	if err != nil {
		respondError(c, logger, err, "Failed to save transaction. Please try again.")
		return
	}
	logger.Info("Draft submitted", slog.String("transaction_id", result.TransactionID))
	c.JSON(http.StatusCreated, dto.SubmitDraftResponse{SubmitResult: *result, Draft: s.Snapshot()})
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.ErrValidation.Error() + ": index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}
