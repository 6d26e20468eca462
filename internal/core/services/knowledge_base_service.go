package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
)

// maxCategoryLength bounds custom category names.
const maxCategoryLength = 64

type knowledgeBaseService struct {
	BaseService
	repo portsrepo.CorrectionRepository
	now  func() time.Time
}

// NewKnowledgeBaseService stores suggestion corrections.
func NewKnowledgeBaseService(repo portsrepo.CorrectionRepository) portssvc.KnowledgeBaseSvc {
	return &knowledgeBaseService{repo: repo, now: time.Now}
}

func (s *knowledgeBaseService) SaveCorrection(ctx context.Context, actor domain.Actor, correction domain.Correction) error {
	if strings.TrimSpace(correction.Merchant) == "" {
		return fmt.Errorf("%w: correction needs a merchant", apperrors.ErrValidation)
	}
	if err := s.repo.SaveCorrection(ctx, actor, correction, s.now()); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}
	s.LogDebug(ctx, "Correction recorded",
		slog.String("org_id", actor.OrgID),
		slog.String("original_category", correction.OriginalCategory),
		slog.String("corrected_category", correction.CorrectedCategory))
	return nil
}

type categoryService struct {
	BaseService
	repo portsrepo.CategoryRepository
}

// NewCategoryService manages the user's category vocabulary.
func NewCategoryService(repo portsrepo.CategoryRepository) portssvc.CategoryVocabularySvc {
	return &categoryService{repo: repo}
}

func (s *categoryService) AddCustomCategory(ctx context.Context, actor domain.Actor, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if len(name) > maxCategoryLength {
		return fmt.Errorf("%w: category name longer than %d characters", apperrors.ErrValidation, maxCategoryLength)
	}
	if err := s.repo.AddCustomCategory(ctx, actor.OrgID, actor.UserID, name); err != nil {
		return fmt.Errorf("failed to add category %q: %w", name, err)
	}
	s.LogInfo(ctx, "Custom category added", slog.String("org_id", actor.OrgID), slog.String("category", name))
	return nil
}

var (
	_ portssvc.KnowledgeBaseSvc      = (*knowledgeBaseService)(nil)
	_ portssvc.CategoryVocabularySvc = (*categoryService)(nil)
)
