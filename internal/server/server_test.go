package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/export"
	"github.com/joseph-ayodele/estimate-parser/internal/pipeline"
	"github.com/joseph-ayodele/estimate-parser/internal/repository"
	"github.com/joseph-ayodele/estimate-parser/internal/services/estimate"
)

const estimateText = "株式会社サンプル自動車\n見積日 2024/05/01\nワイパーブレード ¥3,800\nワイパー交換工賃 ¥2,200\n"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := repository.Open(context.Background(), repository.Config{DSN: filepath.Join(t.TempDir(), "api.db")}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })

	history := repository.NewHistoryRepository(db, nil)
	opts := pipeline.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	svc := estimate.NewService(pipeline.NewParser(opts, nil), history, nil)
	h := NewEstimateHandler(svc, export.NewService(history, nil), nil)
	return NewRouter(h, db, nil)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["database"] != "ok" {
		t.Fatalf("body = %v", body)
	}
	if _, err := uuid.Parse(w.Header().Get(headerRequestID)); err != nil {
		t.Fatalf("missing request id header: %q", w.Header().Get(headerRequestID))
	}
}

func TestParse(t *testing.T) {
	r := newTestRouter(t)

	t.Run("invalid json", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/estimates/parse", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/estimates/parse", `{"pre_extracted":{"vendor_name":"x"}}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("text without save", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"raw_text": estimateText, "source_name": "scan.txt"})
		w := do(r, http.MethodPost, "/v1/estimates/parse", string(body))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp ParseResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Strategy != constants.StrategyText || resp.HistoryID != nil {
			t.Fatalf("resp = %+v", resp)
		}
		if resp.Estimate.TotalExclTax != 6000 || resp.Estimate.TotalInclTax != 6600 {
			t.Fatalf("totals = %d/%d", resp.Estimate.TotalExclTax, resp.Estimate.TotalInclTax)
		}
		if resp.Estimate.EstimateDate.String() != "2024-05-01" {
			t.Fatalf("date = %s", resp.Estimate.EstimateDate)
		}
	})
}

func TestHistoryEndpoints(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{"raw_text": estimateText, "source_name": "scan.txt", "save": true})
	w := do(r, http.MethodPost, "/v1/estimates/parse", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("parse: %d %s", w.Code, w.Body.String())
	}
	var resp ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HistoryID == nil {
		t.Fatal("expected history_id")
	}
	id := resp.HistoryID.String()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"list", "/v1/estimates/history?limit=5", http.StatusOK},
		{"list bad limit", "/v1/estimates/history?limit=abc", http.StatusBadRequest},
		{"list limit out of range", "/v1/estimates/history?limit=100000", http.StatusBadRequest},
		{"get", "/v1/estimates/history/" + id, http.StatusOK},
		{"get bad id", "/v1/estimates/history/not-a-uuid", http.StatusBadRequest},
		{"get unknown", "/v1/estimates/history/" + uuid.NewString(), http.StatusNotFound},
		{"export", "/v1/estimates/history/" + id + "/export", http.StatusOK},
		{"average", "/v1/prices/average?item_name_norm=wiper_blade&cost_type=parts", http.StatusOK},
		{"average unknown", "/v1/prices/average?item_name_norm=tire&cost_type=parts", http.StatusNotFound},
		{"average bad cost type", "/v1/prices/average?item_name_norm=tire&cost_type=fuel", http.StatusBadRequest},
		{"search", "/v1/estimates/search?keyword=wiper&limit=1", http.StatusOK},
		{"search bad limit", "/v1/estimates/search?keyword=wiper&limit=x", http.StatusBadRequest},
		{"cheapest", "/v1/prices/cheapest?keyword=wiper", http.StatusOK},
		{"cheapest missing keyword", "/v1/prices/cheapest?area=tokyo", http.StatusBadRequest},
		{"cheapest unknown", "/v1/prices/cheapest?keyword=tire", http.StatusNotFound},
		{"statistics", "/v1/prices/statistics?keyword=wiper", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, "")
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	w = do(r, http.MethodGet, "/v1/estimates/history/"+id+"/export", "")
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type = %q", ct)
	}

	var errBody ErrorResponse
	w = do(r, http.MethodGet, "/v1/estimates/history/"+uuid.NewString(), "")
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errBody.Code != "HISTORY_NOT_FOUND" || errBody.RequestID == "" {
		t.Fatalf("error body = %+v", errBody)
	}
}

func TestPriceEndpoints(t *testing.T) {
	r := newTestRouter(t)
	body, _ := json.Marshal(map[string]any{"raw_text": estimateText, "source_name": "scan.txt", "save": true})
	if w := do(r, http.MethodPost, "/v1/estimates/parse", string(body)); w.Code != http.StatusOK {
		t.Fatalf("parse: %d %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodGet, "/v1/estimates/search?keyword=wiper&limit=1", "")
	var res entity.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if res.TotalEstimates != 1 || len(res.Items) != 1 {
		t.Fatalf("search = %+v", res)
	}

	w = do(r, http.MethodGet, "/v1/prices/cheapest?keyword=wiper", "")
	var hit entity.ItemHit
	if err := json.Unmarshal(w.Body.Bytes(), &hit); err != nil {
		t.Fatalf("decode cheapest: %v", err)
	}
	if hit.AmountExclTax != 2200 || hit.CostType != constants.CostTypeLabor {
		t.Fatalf("cheapest = %+v", hit)
	}

	w = do(r, http.MethodGet, "/v1/prices/statistics?keyword=wiper", "")
	var stat entity.PriceStat
	if err := json.Unmarshal(w.Body.Bytes(), &stat); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	want := entity.PriceStat{Keyword: "wiper", Average: 3000, Min: 2200, Max: 3800, Samples: 2, Estimates: 1}
	if diff := cmp.Diff(want, stat); diff != "" {
		t.Fatalf("statistics mismatch (-want +got):\n%s", diff)
	}
}
