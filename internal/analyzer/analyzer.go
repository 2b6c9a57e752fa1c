// Package analyzer sends an ingredient-list photo to a vision model and
// parses the scored breakdown it returns.
package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/julianstephens/detoxscan/internal/config"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/models"
)

var (
	// ErrMissingAPIKey is returned before any request when no key is configured
	ErrMissingAPIKey = errors.New("model API key is missing, set DETOXSCAN_API_KEY or run 'detoxscan keyring set'")
	// ErrAnalysisFailed is the user-facing error for every failed analysis
	ErrAnalysisFailed = errors.New("failed to analyze image, please try again")
	// ErrMalformedResponse marks a reply that is not a valid analysis
	ErrMalformedResponse = errors.New("model returned a malformed analysis")
	// ErrEmptyImage is returned when no image data was supplied
	ErrEmptyImage = errors.New("no image data supplied")
)

// Analyzer turns a base64 image (optionally a data URI) into a result.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64 string) (models.AnalysisResult, error)
}

// Client talks to any OpenAI-compatible chat completions endpoint. The
// default base URL is Gemini's compatibility layer.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// New builds a Client from cfg. It fails with ErrMissingAPIKey when cfg
// carries no key.
func New(cfg config.Analyzer, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultModelURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	model := cfg.Model
	if model == "" {
		model = constants.DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	return &Client{
		api:     openai.NewClient(append(base, opts...)...),
		model:   model,
		timeout: timeout,
	}, nil
}

// Analyze sends the image with the scoring prompt and parses the reply.
// Every failure after validation of the input is wrapped in
// ErrAnalysisFailed; the underlying cause is logged.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (models.AnalysisResult, error) {
	mime, payload := SplitDataURI(imageBase64)
	if payload == "" {
		return models.AnalysisResult{}, ErrEmptyImage
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("image is not valid base64: %w", err)
	}
	if mime == "" {
		mime = constants.ImageMIMEType
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(analysisPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: "data:" + mime + ";base64," + payload,
				}),
			}),
		},
		Temperature: openai.Float(constants.DefaultTemperature),
		TopP:        openai.Float(constants.DefaultTopP),
	})
	if err != nil {
		logger.Error("Model request failed", "model", c.model, "error", err)
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	logger.Debug("Model replied", "model", c.model, "elapsed", time.Since(start))

	if len(completion.Choices) == 0 {
		logger.Error("Model reply had no choices", "model", c.model)
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, ErrMalformedResponse)
	}

	result, err := ParseResult(completion.Choices[0].Message.Content)
	if err != nil {
		logger.Error("Model reply could not be parsed", "error", err)
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return result, nil
}

// ParseResult decodes a model reply, tolerating markdown fences, and
// validates the decoded result.
func ParseResult(text string) (models.AnalysisResult, error) {
	body := StripCodeFences(text)
	if body == "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := result.Validate(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Ingredients == nil {
		result.Ingredients = []models.Ingredient{}
	}
	if result.Alternatives == nil {
		result.Alternatives = []models.Alternative{}
	}
	return result, nil
}
