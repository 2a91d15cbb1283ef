package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"presupuesto/internal/core"
)

const DefaultModel = "gemini-3-flash-preview"

// GeminiClient asks the Gemini API for a JSON guess of the expense.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ Extractor = (*GeminiClient)(nil)

// GeminiConfig configures the client. A zero Timeout leaves the call
// without a deadline. BaseURL and HTTPClient are mostly used by tests to
// point at a local server.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "extraction"),
	}, nil
}

// Extract sends one request. Transport and decoding problems are reported
// as core.ErrExtractionUnavailable.
func (c *GeminiClient) Extract(ctx context.Context, text string, categoryNames []string) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(Prompt(text, categoryNames)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini request failed", "model", c.model, "error", err)
		return Result{}, fmt.Errorf("%w: %v", core.ErrExtractionUnavailable, err)
	}

	raw := responseText(resp)
	res, err := ParseResult(raw)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini response not understood", "model", c.model, "error", err)
		return Result{}, fmt.Errorf("%w: %v", core.ErrExtractionUnavailable, err)
	}
	c.logger.DebugContext(ctx, "Gemini extraction completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"has_amount", res.Amount != nil,
		"has_category", res.CategoryName != nil)
	return res, nil
}

// Prompt builds the instruction sent to the model.
func Prompt(text string, categoryNames []string) string {
	var b strings.Builder
	b.WriteString("Extrae la información de este gasto en pesos colombianos: \"")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\".\n")
	b.WriteString("Categorías disponibles: ")
	b.WriteString(strings.Join(categoryNames, ", "))
	b.WriteString(".\n")
	b.WriteString("Responde solo con JSON: amount (número entero, sin separadores de miles), ")
	b.WriteString("categoryName (una de las categorías disponibles) y description (texto corto).")
	return b.String()
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount":       {Type: genai.TypeNumber},
			"categoryName": {Type: genai.TypeString},
			"description":  {Type: genai.TypeString},
		},
		Required: []string{"amount", "description"},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// ParseResult decodes the model's JSON answer. Models sometimes wrap JSON in
// a markdown fence, which is stripped.
func ParseResult(raw string) (Result, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return Result{}, errors.New("empty model response")
	}
	var r Result
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Result{}, fmt.Errorf("decode model response: %w", err)
	}
	return r, nil
}
