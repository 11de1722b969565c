package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
)

const (
	tableHistory = "parse_history"
	tableItems   = "parsed_items"

	DefaultSearchLimit = 10
)

// SaveHistoryRequest wraps parameters for recording a parse result.
type SaveHistoryRequest struct {
	SourceName string
	Strategy   constants.Strategy
	RawText    string
	Estimate   entity.Estimate
}

// SearchQuery filters saved items. Keyword matches item names, vendor name and
// vendor address; Area matches vendor address only. Both are optional.
type SearchQuery struct {
	Keyword string
	Area    string
	Limit   int
}

type HistoryRepository interface {
	Save(ctx context.Context, req SaveHistoryRequest) (*entity.ParseRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.ParseRecord, error)
	List(ctx context.Context, limit int) ([]entity.ParseSummary, error)
	AveragePrice(ctx context.Context, itemNameNorm string, costType constants.CostType) (*entity.PriceStat, error)
	Search(ctx context.Context, q SearchQuery) (*entity.SearchResult, error)
	Cheapest(ctx context.Context, keyword, area string) (*entity.ItemHit, error)
	Statistics(ctx context.Context, keyword, area string) (*entity.PriceStat, error)
}

type historyRepository struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewHistoryRepository(db *DB, logger *slog.Logger) HistoryRepository {
	return &historyRepository{db: db, now: time.Now, logger: common.LoggerOrDefault(logger)}
}

func (r *historyRepository) Save(ctx context.Context, req SaveHistoryRequest) (*entity.ParseRecord, error) {
	rec := &entity.ParseRecord{
		ID:         uuid.New(),
		SourceName: req.SourceName,
		Strategy:   req.Strategy,
		RawText:    req.RawText,
		Estimate:   req.Estimate,
		CreatedAt:  r.now().UTC().Truncate(time.Millisecond),
	}
	parsed, err := json.Marshal(req.Estimate)
	if err != nil {
		return nil, common.NewAppError("HISTORY_SAVE", "encode estimate", err)
	}

	est := req.Estimate
	var addr sql.NullString
	if est.VendorAddress != nil {
		addr = sql.NullString{String: *est.VendorAddress, Valid: true}
	}
	b := r.db.builder()
	stmts := []entsql.Querier{
		b.Insert(tableHistory).
			Columns("id", "source_name", "strategy", "vendor_name", "vendor_address", "estimate_date",
				"total_excl_tax", "total_incl_tax", "raw_text", "parsed_json", "created_at").
			Values(rec.ID.String(), rec.SourceName, string(rec.Strategy), est.VendorName, addr, est.EstimateDate.String(),
				est.TotalExclTax, est.TotalInclTax, rec.RawText, string(parsed), rec.CreatedAt.Format(timestampLayout)),
	}
	if len(est.Items) > 0 {
		ins := b.Insert(tableItems).
			Columns("history_id", "position", "item_name_raw", "item_name_norm", "cost_type", "amount_excl_tax", "quantity")
		for i, it := range est.Items {
			ins.Values(rec.ID.String(), i, it.ItemNameRaw, it.ItemNameNorm, string(it.CostType), it.AmountExclTax, it.Quantity)
		}
		stmts = append(stmts, ins)
	}

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return nil, r.dbError("HISTORY_SAVE", "begin tx", err)
	}
	for _, stmt := range stmts {
		query, args := stmt.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			_ = tx.Rollback()
			return nil, r.dbError("HISTORY_SAVE", "insert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, r.dbError("HISTORY_SAVE", "commit", err)
	}

	r.logger.Info("history.save.ok", "id", rec.ID, "source", rec.SourceName, "items", len(est.Items))
	return rec, nil
}

func (r *historyRepository) Get(ctx context.Context, id uuid.UUID) (*entity.ParseRecord, error) {
	b := r.db.builder()
	query, args := b.Select("source_name", "strategy", "raw_text", "parsed_json", "created_at").
		From(b.Table(tableHistory)).
		Where(entsql.EQ("id", id.String())).
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, r.dbError("HISTORY_GET", "select parse_history", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, r.dbError("HISTORY_GET", "select parse_history", err)
		}
		return nil, common.NewAppError("HISTORY_NOT_FOUND", fmt.Sprintf("parse %s not found", id), common.ErrNotFound)
	}

	rec := entity.ParseRecord{ID: id}
	var strategy, parsed, createdAt string
	if err := rows.Scan(&rec.SourceName, &strategy, &rec.RawText, &parsed, &createdAt); err != nil {
		return nil, r.dbError("HISTORY_GET", "scan parse_history", err)
	}
	rec.Strategy = constants.Strategy(strategy)
	if err := json.Unmarshal([]byte(parsed), &rec.Estimate); err != nil {
		return nil, common.NewAppError("HISTORY_GET", "decode stored estimate", err)
	}
	rec.CreatedAt = parseTimestamp(createdAt)
	return &rec, nil
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]entity.ParseSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	b := r.db.builder()
	h := b.Table(tableHistory).As("h")
	i := b.Table(tableItems).As("i")
	columns := []string{
		h.C("id"), h.C("source_name"), h.C("strategy"), h.C("vendor_name"),
		h.C("estimate_date"), h.C("total_excl_tax"), h.C("total_incl_tax"), h.C("created_at"),
	}
	query, args := b.Select(append(columns, entsql.Count(i.C("position")))...).
		From(h).
		LeftJoin(i).On(h.C("id"), i.C("history_id")).
		GroupBy(columns...).
		OrderBy(entsql.Desc(h.C("created_at")), h.C("id")).
		Limit(limit).
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, r.dbError("HISTORY_LIST", "select parse_history", err)
	}
	defer rows.Close()

	var out []entity.ParseSummary
	for rows.Next() {
		var s entity.ParseSummary
		var idStr, strategy, dateStr, createdAt string
		if err := rows.Scan(&idStr, &s.SourceName, &strategy, &s.VendorName,
			&dateStr, &s.TotalExclTax, &s.TotalInclTax, &createdAt, &s.ItemCount); err != nil {
			return nil, r.dbError("HISTORY_LIST", "scan parse_history", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("history.list.bad_id", "id", idStr, "error", err)
			continue
		}
		s.ID = id
		s.Strategy = constants.Strategy(strategy)
		if d, err := entity.ParseDate(dateStr); err == nil {
			s.EstimateDate = d
		}
		s.CreatedAt = parseTimestamp(createdAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("HISTORY_LIST", "iterate parse_history", err)
	}
	return out, nil
}

// AveragePrice aggregates amount_excl_tax over every saved item with the given
// normalized name and cost type.
func (r *historyRepository) AveragePrice(ctx context.Context, itemNameNorm string, costType constants.CostType) (*entity.PriceStat, error) {
	stat, err := r.aggregate(ctx, "PRICE_AVERAGE", entsql.And(
		entsql.EQ("item_name_norm", itemNameNorm),
		entsql.EQ("cost_type", string(costType)),
	))
	if err != nil {
		return nil, err
	}
	if stat.Samples == 0 {
		return nil, common.NewAppError("PRICE_NOT_FOUND", "no samples for "+itemNameNorm, common.ErrNotFound)
	}
	stat.ItemNameNorm = itemNameNorm
	stat.CostType = costType
	return stat, nil
}

// Search returns saved items matching the query, newest estimate first.
func (r *historyRepository) Search(ctx context.Context, q SearchQuery) (*entity.SearchResult, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	b := r.db.builder()
	var preds []*entsql.Predicate
	if kw := compactSpaces(q.Keyword); kw != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("item_name_raw", kw),
			entsql.ContainsFold("item_name_norm", kw),
			entsql.ContainsFold("vendor_name", kw),
			entsql.ContainsFold("vendor_address", kw),
		))
	}
	if p := areaPredicate(q.Area); p != nil {
		preds = append(preds, p)
	}

	countQ := r.joined(b, entsql.Count(entsql.Distinct("id")))
	if len(preds) > 0 {
		countQ.Where(entsql.And(preds...))
	}
	total, err := r.scanInt(ctx, countQ)
	if err != nil {
		return nil, r.dbError("ESTIMATE_SEARCH", "count estimates", err)
	}

	sel := r.joined(b, hitColumns...)
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("estimate_date"), entsql.Desc("created_at"), "position").Limit(q.Limit)
	hits, err := r.scanHits(ctx, sel)
	if err != nil {
		return nil, r.dbError("ESTIMATE_SEARCH", "select items", err)
	}
	r.logger.Info("history.search.ok", "keyword", q.Keyword, "area", q.Area, "total", total, "returned", len(hits))
	return &entity.SearchResult{Items: hits, TotalEstimates: total}, nil
}

// Cheapest returns the lowest-priced item whose name matches keyword.
func (r *historyRepository) Cheapest(ctx context.Context, keyword, area string) (*entity.ItemHit, error) {
	sel := r.joined(r.db.builder(), hitColumns...).
		Where(itemPredicate(keyword, area)).
		OrderBy("amount_excl_tax", entsql.Desc("estimate_date")).
		Limit(1)
	hits, err := r.scanHits(ctx, sel)
	if err != nil {
		return nil, r.dbError("PRICE_CHEAPEST", "select items", err)
	}
	if len(hits) == 0 {
		return nil, common.NewAppError("PRICE_NOT_FOUND", "no items match "+keyword, common.ErrNotFound)
	}
	return &hits[0], nil
}

// Statistics aggregates the items whose name matches keyword.
func (r *historyRepository) Statistics(ctx context.Context, keyword, area string) (*entity.PriceStat, error) {
	stat, err := r.aggregate(ctx, "PRICE_STATISTICS", itemPredicate(keyword, area))
	if err != nil {
		return nil, err
	}
	if stat.Samples == 0 {
		return nil, common.NewAppError("PRICE_NOT_FOUND", "no items match "+keyword, common.ErrNotFound)
	}
	stat.Keyword = compactSpaces(keyword)
	stat.Area = compactSpaces(area)
	return stat, nil
}

var hitColumns = []string{
	"history_id", "vendor_name", "vendor_address", "estimate_date",
	"item_name_raw", "item_name_norm", "cost_type", "amount_excl_tax", "quantity",
}

// joined selects from parsed_items joined to their parse. Column names are
// distinct across the two tables so they are left unqualified.
func (r *historyRepository) joined(b *entsql.DialectBuilder, columns ...string) *entsql.Selector {
	h := b.Table(tableHistory)
	i := b.Table(tableItems)
	return b.Select(columns...).
		From(i).
		Join(h).On(i.C("history_id"), h.C("id"))
}

func (r *historyRepository) aggregate(ctx context.Context, code string, where *entsql.Predicate) (*entity.PriceStat, error) {
	sel := r.joined(r.db.builder(),
		entsql.Count("*"),
		entsql.Count(entsql.Distinct("history_id")),
		entsql.Sum("amount_excl_tax"),
		entsql.Min("amount_excl_tax"),
		entsql.Max("amount_excl_tax"),
	).Where(where)
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, r.dbError(code, "aggregate parsed_items", err)
	}
	defer rows.Close()

	var (
		stat   entity.PriceStat
		sum    decimal.NullDecimal
		lo, hi sql.NullInt64
	)
	if rows.Next() {
		if err := rows.Scan(&stat.Samples, &stat.Estimates, &sum, &lo, &hi); err != nil {
			return nil, r.dbError(code, "scan aggregate", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError(code, "iterate aggregate", err)
	}
	if stat.Samples > 0 && sum.Valid {
		stat.Average = sum.Decimal.DivRound(decimal.NewFromInt(int64(stat.Samples)), 2).InexactFloat64()
	}
	stat.Min = lo.Int64
	stat.Max = hi.Int64
	return &stat, nil
}

func (r *historyRepository) scanInt(ctx context.Context, sel *entsql.Selector) (int, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func (r *historyRepository) scanHits(ctx context.Context, sel *entsql.Selector) ([]entity.ItemHit, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []entity.ItemHit{}
	for rows.Next() {
		var (
			hit               entity.ItemHit
			idStr, date, cost string
			addr              sql.NullString
		)
		if err := rows.Scan(&idStr, &hit.VendorName, &addr, &date,
			&hit.ItemNameRaw, &hit.ItemNameNorm, &cost, &hit.AmountExclTax, &hit.Quantity); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("history.search.bad_id", "id", idStr, "error", err)
			continue
		}
		hit.HistoryID = id
		if addr.Valid {
			hit.VendorAddress = &addr.String
		}
		if d, err := entity.ParseDate(date); err == nil {
			hit.EstimateDate = d
		}
		hit.CostType = constants.CostType(cost)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// itemPredicate matches item names only, optionally narrowed by area.
func itemPredicate(keyword, area string) *entsql.Predicate {
	kw := compactSpaces(keyword)
	p := entsql.Or(
		entsql.ContainsFold("item_name_raw", kw),
		entsql.ContainsFold("item_name_norm", kw),
	)
	if a := areaPredicate(area); a != nil {
		p = entsql.And(p, a)
	}
	return p
}

func areaPredicate(area string) *entsql.Predicate {
	if a := compactSpaces(area); a != "" {
		return entsql.Contains("vendor_address", a)
	}
	return nil
}

// compactSpaces drops all whitespace, including ideographic spaces.
func compactSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func (r *historyRepository) dbError(code, msg string, err error) error {
	r.logger.Error("history.db.error", "code", code, "msg", msg, "error", err)
	return common.NewAppError(code, msg, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}

// Fixed-width UTC so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
