package estimate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/pipeline"
	"github.com/joseph-ayodele/estimate-parser/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Service handles estimate parsing and the saved-history lookups.
type Service struct {
	parser  *pipeline.Parser
	history repository.HistoryRepository
	logger  *slog.Logger
}

// NewService creates a new estimate service. history may be nil; saving and lookups then fail.
func NewService(parser *pipeline.Parser, history repository.HistoryRepository, logger *slog.Logger) *Service {
	return &Service{
		parser:  parser,
		history: history,
		logger:  common.LoggerOrDefault(logger),
	}
}

// Outcome is a parse result plus the history row written for it, if any.
type Outcome struct {
	pipeline.Result
	HistoryID *uuid.UUID
}

// Parse runs the pipeline on doc and, when save is set, records the result.
func (s *Service) Parse(ctx context.Context, doc entity.Document, save bool) (*Outcome, error) {
	// queue jobs carry the full path; documents may only have a base name or none
	origin := common.SourceNameFromContext(ctx)
	if doc.SourceName == "" {
		doc.SourceName = origin
	}
	res := s.parser.Parse(doc)
	s.logger.Debug("estimate parsed",
		"source", doc.SourceName,
		"origin", origin,
		"strategy", res.Strategy,
		"items", len(res.Estimate.Items),
		"request_id", common.RequestIDFromContext(ctx),
	)
	out := &Outcome{Result: res}
	if !save {
		return out, nil
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	rec, err := s.history.Save(ctx, repository.SaveHistoryRequest{
		SourceName: doc.SourceName,
		Strategy:   res.Strategy,
		RawText:    doc.RawText,
		Estimate:   res.Estimate,
	})
	if err != nil {
		return nil, err
	}
	out.HistoryID = &rec.ID
	s.logger.Info("estimate saved", "history_id", rec.ID, "source", doc.SourceName, "request_id", common.RequestIDFromContext(ctx))
	return out, nil
}

// GetHistory loads one saved parse by its string ID.
func (s *Service) GetHistory(ctx context.Context, id string) (*entity.ParseRecord, error) {
	validator := common.NewValidator()
	validator.Field("id", id, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.Get(ctx, uuid.MustParse(strings.TrimSpace(id)))
}

// ListHistory returns up to limit summaries, newest first. limit 0 means DefaultHistoryLimit.
func (s *Service) ListHistory(ctx context.Context, limit int) ([]entity.ParseSummary, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	validator := common.NewValidator()
	validator.Field("limit", limit, common.IntRange(1, MaxHistoryLimit))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.List(ctx, limit)
}

// AveragePrice reports the mean saved amount for a normalized item name and cost type.
func (s *Service) AveragePrice(ctx context.Context, itemNameNorm, costType string) (*entity.PriceStat, error) {
	validator := common.NewValidator()
	validator.Field("item_name_norm", itemNameNorm, common.Required, common.Length(1, 100))
	validator.Field("cost_type", costType, common.Required, common.OneOf(
		string(constants.CostTypeParts), string(constants.CostTypeLabor), string(constants.CostTypeStatutoryFees),
	))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.AveragePrice(ctx, strings.TrimSpace(itemNameNorm), constants.CostType(costType))
}

// Search looks up saved items by keyword and area. Both are optional; limit 0 means repository.DefaultSearchLimit.
func (s *Service) Search(ctx context.Context, keyword, area string, limit int) (*entity.SearchResult, error) {
	if limit == 0 {
		limit = repository.DefaultSearchLimit
	}
	validator := common.NewValidator()
	validator.Field("keyword", keyword, common.Length(0, 100))
	validator.Field("area", area, common.Length(0, 100))
	validator.Field("limit", limit, common.IntRange(1, MaxHistoryLimit))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.Search(ctx, repository.SearchQuery{Keyword: keyword, Area: area, Limit: limit})
}

// Cheapest finds the lowest saved amount for items whose name contains keyword.
func (s *Service) Cheapest(ctx context.Context, keyword, area string) (*entity.ItemHit, error) {
	if err := validatePriceQuery(keyword, area); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.Cheapest(ctx, keyword, area)
}

// Statistics reports average, min and max saved amounts for items whose name contains keyword.
func (s *Service) Statistics(ctx context.Context, keyword, area string) (*entity.PriceStat, error) {
	if err := validatePriceQuery(keyword, area); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, common.InternalError("history storage is not configured")
	}
	return s.history.Statistics(ctx, keyword, area)
}

func validatePriceQuery(keyword, area string) error {
	validator := common.NewValidator()
	validator.Field("keyword", strings.TrimSpace(keyword), common.Required, common.Length(1, 100))
	validator.Field("area", area, common.Length(0, 100))
	return common.ValidateAndReturnError(validator)
}
