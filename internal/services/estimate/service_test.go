package estimate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/pipeline"
	"github.com/joseph-ayodele/estimate-parser/internal/repository"
)

const sampleText = "株式会社テスト自動車\n2024年5月1日\nエンジンオイル 4,000円\nオイル交換工賃 2,000円\n合計 6,000円\n"

func newService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "svc.db")}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	opts := pipeline.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return NewService(pipeline.NewParser(opts, nil), repository.NewHistoryRepository(db, nil), nil)
}

func TestService_ParseAndSave(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	out, err := svc.Parse(ctx, entity.Document{SourceName: "a.txt", RawText: sampleText}, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.HistoryID == nil {
		t.Fatal("expected a history id")
	}
	if out.Strategy != constants.StrategyText || out.Estimate.TotalExclTax != 6000 {
		t.Fatalf("unexpected outcome: strategy=%s excl=%d", out.Strategy, out.Estimate.TotalExclTax)
	}

	rec, err := svc.GetHistory(ctx, out.HistoryID.String())
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if rec.Estimate.VendorName != "株式会社テスト自動車" {
		t.Fatalf("vendor = %q", rec.Estimate.VendorName)
	}

	list, err := svc.ListHistory(ctx, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListHistory = %v, %v", list, err)
	}

	stat, err := svc.AveragePrice(ctx, "engine_oil", "parts")
	if err != nil {
		t.Fatalf("AveragePrice: %v", err)
	}
	if stat.Samples != 1 || stat.Average != 4000 {
		t.Fatalf("stat = %+v", stat)
	}
}

func TestService_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"bad uuid", func() error { _, err := svc.GetHistory(ctx, "nope"); return err }},
		{"limit too large", func() error { _, err := svc.ListHistory(ctx, MaxHistoryLimit+1); return err }},
		{"negative limit", func() error { _, err := svc.ListHistory(ctx, -1); return err }},
		{"unknown cost type", func() error { _, err := svc.AveragePrice(ctx, "tire", "fuel"); return err }},
		{"missing item name", func() error { _, err := svc.AveragePrice(ctx, "", "parts"); return err }},
		{"search limit too large", func() error { _, err := svc.Search(ctx, "oil", "", MaxHistoryLimit+1); return err }},
		{"blank cheapest keyword", func() error { _, err := svc.Cheapest(ctx, "  ", "東京"); return err }},
		{"missing statistics keyword", func() error { _, err := svc.Statistics(ctx, "", ""); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestService_ParseWithoutSave(t *testing.T) {
	svc := NewService(pipeline.NewParser(pipeline.DefaultOptions(), nil), nil, nil)
	out, err := svc.Parse(context.Background(), entity.Document{RawText: ""}, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.HistoryID != nil || out.Strategy != constants.StrategyNone || len(out.Estimate.Items) != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if _, err := svc.Parse(context.Background(), entity.Document{}, true); !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected ErrInternal without storage, got %v", err)
	}
}

func TestService_SearchAndPrices(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, src := range []string{"a.txt", "b.txt"} {
		if _, err := svc.Parse(ctx, entity.Document{SourceName: src, RawText: sampleText}, true); err != nil {
			t.Fatalf("Parse %s: %v", src, err)
		}
	}

	res, err := svc.Search(ctx, "エンジン オイル", "", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.TotalEstimates != 2 || len(res.Items) != 2 {
		t.Fatalf("result = %+v", res)
	}

	hit, err := svc.Cheapest(ctx, "エンジンオイル", "")
	if err != nil {
		t.Fatalf("Cheapest: %v", err)
	}
	if hit.AmountExclTax != 4000 || hit.VendorName != "株式会社テスト自動車" {
		t.Fatalf("hit = %+v", hit)
	}

	stat, err := svc.Statistics(ctx, "エンジンオイル", "")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stat.Samples != 2 || stat.Estimates != 2 || stat.Min != 4000 || stat.Max != 4000 {
		t.Fatalf("stat = %+v", stat)
	}

	if _, err := svc.Statistics(ctx, "タイヤ", ""); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ParseUsesContextSource(t *testing.T) {
	svc := newService(t)
	ctx := common.WithSourceName(context.Background(), "/inbox/queued.txt")
	out, err := svc.Parse(ctx, entity.Document{RawText: sampleText}, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec, err := svc.GetHistory(ctx, out.HistoryID.String())
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if rec.SourceName != "/inbox/queued.txt" {
		t.Fatalf("source = %q", rec.SourceName)
	}
}
