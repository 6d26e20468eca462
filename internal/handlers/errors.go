package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/SscSPs/ledger_intake/internal/dto"
	"github.com/gin-gonic/gin"
)

// respondError maps err onto a status and writes it. Server errors are
// logged and hidden behind fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var validationErr *services.SubmitValidationError
	if errors.As(err, &validationErr) {
		logger.Info("Draft failed validation", slog.Int("error_count", len(validationErr.Errors)))
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:  "Please fix the highlighted fields",
			Errors: validationErr.Errors,
		})
		return
	}

	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}
