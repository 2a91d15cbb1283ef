package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"presupuesto/internal/core"
)

func ptr[T any](v T) *T { return &v }

var household = []core.Category{
	{ID: "1", Name: "Alimentación", Budget: 500},
	{ID: "2", Name: "Vivienda", Budget: 1200},
	{ID: "3", Name: "Transporte", Budget: 200},
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name         string
		result       Result
		categories   []core.Category
		wantErr      error
		wantCategory string
		wantAmount   core.Pesos
		wantDesc     string
		wantFallback bool
	}{
		{
			name:         "unmatched guess falls back to first category",
			result:       Result{Amount: ptr(35000.0), CategoryName: ptr("comida"), Description: ptr("almuerzo")},
			categories:   []core.Category{{ID: "1", Name: "Alimentación"}, {ID: "2", Name: "Vivienda"}},
			wantCategory: "1",
			wantAmount:   35000,
			wantDesc:     "almuerzo",
			wantFallback: true,
		},
		{
			name:         "case-insensitive substring match",
			result:       Result{Amount: ptr(12000.0), CategoryName: ptr("TRANS"), Description: ptr("bus")},
			categories:   household,
			wantCategory: "3",
			wantAmount:   12000,
			wantDesc:     "bus",
		},
		{
			name:         "accented names fold",
			result:       Result{Amount: ptr(8000.0), CategoryName: ptr("ALIMENTACIÓN"), Description: ptr("pan")},
			categories:   household,
			wantCategory: "1",
			wantAmount:   8000,
			wantDesc:     "pan",
		},
		{
			name:         "missing category uses first",
			result:       Result{Amount: ptr(1000.0), Description: ptr("x")},
			categories:   household,
			wantCategory: "1",
			wantAmount:   1000,
			wantDesc:     "x",
			wantFallback: true,
		},
		{
			name:         "blank description uses input text",
			result:       Result{Amount: ptr(1500.4), CategoryName: ptr("vivienda"), Description: ptr("  ")},
			categories:   household,
			wantCategory: "2",
			wantAmount:   1500,
			wantDesc:     "arriendo parcial",
		},
		{name: "missing amount", result: Result{CategoryName: ptr("vivienda")}, categories: household, wantErr: core.ErrExtractionFailed},
		{name: "zero amount", result: Result{Amount: ptr(0.0)}, categories: household, wantErr: core.ErrExtractionFailed},
		{name: "negative amount", result: Result{Amount: ptr(-10.0)}, categories: household, wantErr: core.ErrExtractionFailed},
		{name: "rounds to zero", result: Result{Amount: ptr(0.3)}, categories: household, wantErr: core.ErrExtractionFailed},
		{name: "no categories", result: Result{Amount: ptr(10.0)}, wantErr: core.ErrNoCategories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Interpret(tt.result, tt.categories, " arriendo parcial ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.CategoryID != tt.wantCategory || d.Amount != tt.wantAmount || d.Description != tt.wantDesc || d.Fallback != tt.wantFallback {
				t.Fatalf("unexpected draft %+v", d)
			}
		})
	}
}

func TestMatchCategoryFirstWins(t *testing.T) {
	cats := []core.Category{{ID: "a", Name: "Salud mental"}, {ID: "b", Name: "Salud"}}
	c, ok := MatchCategory("salud", cats)
	if !ok || c.ID != "a" {
		t.Fatalf("expected first match, got %+v %v", c, ok)
	}
	if _, ok := MatchCategory("", cats); ok {
		t.Fatalf("empty guess must not match")
	}
}

func TestParseResult(t *testing.T) {
	r, err := ParseResult("```json\n{\"amount\": 50000, \"categoryName\": \"Mercado\", \"description\": \"supermercado\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Amount == nil || *r.Amount != 50000 || *r.CategoryName != "Mercado" {
		t.Fatalf("unexpected result %+v", r)
	}
	if _, err := ParseResult(""); err == nil {
		t.Fatalf("expected error for empty response")
	}
	if _, err := ParseResult("no sé"); err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestPromptListsCategories(t *testing.T) {
	p := Prompt(" Gasté 50.000 en supermercado ", []string{"Alimentación", "Vivienda"})
	if !strings.Contains(p, `"Gasté 50.000 en supermercado"`) || !strings.Contains(p, "Alimentación, Vivienda") {
		t.Fatalf("unexpected prompt %q", p)
	}
}

func newTestClient(t *testing.T, timeout time.Duration, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		Model:      "test-model",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		Timeout:    timeout,
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestGeminiClientExtract(t *testing.T) {
	var gotBody, gotPath string
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": `{"amount": 23000, "categoryName": "Transporte", "description": "taxi"}`}},
				},
			}},
		})
	})

	res, err := c.Extract(context.Background(), "taxi 23 mil", []string{"Alimentación", "Transporte"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Amount == nil || *res.Amount != 23000 || res.Description == nil || *res.Description != "taxi" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.HasSuffix(gotPath, "models/test-model:generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	for _, want := range []string{"application/json", "Transporte", `"required"`, "amount", "description"} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("request missing %q: %s", want, gotBody)
		}
	}
}

func answer(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
}

func TestGeminiClientDeadline(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(150 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		answer(w, `{"amount": 9000, "description": "pan"}`)
	}

	t.Run("no deadline waits for a slow answer", func(t *testing.T) {
		c := newTestClient(t, 0, slow)
		res, err := c.Extract(context.Background(), "pan 9 mil", nil)
		if err != nil || res.Amount == nil || *res.Amount != 9000 {
			t.Fatalf("unexpected %+v %v", res, err)
		}
	})

	t.Run("configured deadline gives up", func(t *testing.T) {
		c := newTestClient(t, 20*time.Millisecond, slow)
		if _, err := c.Extract(context.Background(), "pan 9 mil", nil); !errors.Is(err, core.ErrExtractionUnavailable) {
			t.Fatalf("expected unavailable, got %v", err)
		}
	})
}

func TestGeminiClientFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
		}},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}},
		{"malformed text", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"lo siento"}]}}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, 0, tt.h)
			_, err := c.Extract(context.Background(), "x", nil)
			if !errors.Is(err, core.ErrExtractionUnavailable) {
				t.Fatalf("expected unavailable, got %v", err)
			}
		})
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), GeminiConfig{}); err == nil {
		t.Fatalf("expected error without key")
	}
}
