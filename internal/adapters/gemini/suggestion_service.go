package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/middleware"
)

const (
	// DefaultModelName is used when no model is configured.
	DefaultModelName = "gemini-2.0-flash"

	maxSuggestions         = 3
	receiptSplitConfidence = 0.90
	modelSplitConfidence   = 0.75
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNotConfigured is returned by a service without a model client.
	ErrNotConfigured = errors.New("suggestion model is not configured")
)

// SuggestionService is the Gemini-backed SuggestionSvc. It grounds prompts in
// the caller's chart of accounts and categories.
type SuggestionService struct {
	generator    ContentGenerator
	model        string
	accountRepo  portsrepo.AccountRepository
	categoryRepo portsrepo.CategoryRepository
	temperature  float32
}

// NewSuggestionService creates the service. A nil generator yields a service
// whose calls fail with ErrNotConfigured, which sessions treat as "no suggestion".
func NewSuggestionService(generator ContentGenerator, model string, accountRepo portsrepo.AccountRepository, categoryRepo portsrepo.CategoryRepository) *SuggestionService {
	if model == "" {
		model = DefaultModelName
	}
	return &SuggestionService{
		generator:    generator,
		model:        model,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		temperature:  0.3,
	}
}

var _ portssvc.SuggestionSvc = (*SuggestionService)(nil)

type suggestionPayload struct {
	Suggestions []domain.AISuggestion `json:"suggestions"`
}

func (s *SuggestionService) GenerateSuggestions(ctx context.Context, actor domain.Actor, req domain.SuggestionRequest) (*domain.SuggestionResult, error) {
	if s.generator == nil {
		return nil, ErrNotConfigured
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccounts(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: loading accounts: %w", err)
	}
	categories, err := s.categoryRepo.ListCategories(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: loading categories: %w", err)
	}

	raw, err := s.generate(ctx, buildSuggestionPrompt(req, accounts, categories), "application/json")
	if err != nil {
		return nil, fmt.Errorf("GenerateSuggestions: %w", err)
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		logger.Warn("Model returned malformed suggestions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("GenerateSuggestions: unmarshal JSON: %w", err)
	}

	known := make(map[string]string, len(categories))
	for _, c := range categories {
		known[strings.ToLower(strings.TrimSpace(c))] = c
	}
	out := make([]domain.AISuggestion, 0, len(payload.Suggestions))
	for _, sug := range payload.Suggestions {
		sug.Category = strings.TrimSpace(sug.Category)
		if sug.Category == "" && sug.DebitAccountID == "" && sug.CreditAccountID == "" {
			continue
		}
		if canonical, ok := known[strings.ToLower(sug.Category)]; ok {
			sug.Category = canonical
			sug.IsNewCategory = false
		} else {
			sug.IsNewCategory = sug.Category != ""
		}
		sug.Confidence = clampConfidence(sug.Confidence)
		out = append(out, sug)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	logger.Debug("Generated suggestions", slog.Int("count", len(out)), slog.String("model", s.model))
	return &domain.SuggestionResult{Suggestions: out}, nil
}

type splitPayloadItem struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// SuggestSplit proposes a split. Receipt items are used as-is; otherwise the
// model's estimate is scaled so the parts sum to the transaction amount.
func (s *SuggestionService) SuggestSplit(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, receiptItems []domain.ReceiptItem) (*domain.SplitResult, error) {
	total := amount.Abs()
	if len(receiptItems) > 0 {
		out := make([]domain.SplitItem, 0, len(receiptItems))
		for _, item := range receiptItems {
			out = append(out, domain.SplitItem{
				Description: item.Description,
				Category:    inferCategory(item.Description),
				Amount:      item.Amount.Abs(),
				Confidence:  receiptSplitConfidence,
			})
		}
		return &domain.SplitResult{Suggestions: out}, nil
	}
	if s.generator == nil {
		return nil, ErrNotConfigured
	}

	raw, err := s.generate(ctx, buildSplitPrompt(merchant, total), "application/json")
	if err != nil {
		return nil, fmt.Errorf("SuggestSplit: %w", err)
	}
	var parsed []splitPayloadItem
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("SuggestSplit: unmarshal JSON: %w", err)
	}

	items := make([]domain.SplitItem, 0, len(parsed))
	for _, p := range parsed {
		items = append(items, domain.SplitItem{
			Description: firstNonEmpty(p.Description, "Item"),
			Category:    firstNonEmpty(p.Category, inferCategory(merchant)),
			Amount:      p.Amount.Abs(),
			Confidence:  modelSplitConfidence,
		})
	}
	normalizeSplit(items, total)
	middleware.GetLoggerFromCtx(ctx).Debug("Generated split", slog.Int("parts", len(items)), slog.String("org_id", actor.OrgID))
	return &domain.SplitResult{Suggestions: items}, nil
}

// normalizeSplit scales amounts so they sum to total exactly, in cents. The
// last part absorbs rounding and no part goes below zero.
func normalizeSplit(items []domain.SplitItem, total decimal.Decimal) {
	if len(items) == 0 {
		return
	}
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	if !sum.IsPositive() {
		return
	}
	allocated := decimal.Zero
	for i := range items[:len(items)-1] {
		share := items[i].Amount.Mul(total).Div(sum).Round(2)
		items[i].Amount = decimal.Min(share, total.Sub(allocated))
		allocated = allocated.Add(items[i].Amount)
	}
	items[len(items)-1].Amount = total.Sub(allocated)
}

func (s *SuggestionService) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	temperature := s.temperature
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := s.generator.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
