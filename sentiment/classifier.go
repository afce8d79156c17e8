package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Classifier scores a batch of texts and returns the averaged result.
type Classifier interface {
	Classify(ctx context.Context, texts []string) (Result, error)
}

// HTTPClassifier calls a FinBERT-style scoring service over HTTP. The
// service receives the full batch and returns the dominant label with its
// averaged probability.
type HTTPClassifier struct {
	client *resty.Client
}

// NewHTTPClassifier returns a classifier against the given base URL.
func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &HTTPClassifier{client: client}
}

type classifyRequest struct {
	Texts []string `json:"texts"`
}

type classifyResponse struct {
	Probability float64 `json:"probability"`
	Label       string  `json:"label"`
}

func (hc *HTTPClassifier) Classify(ctx context.Context, texts []string) (Result, error) {
	if len(texts) == 0 {
		return Result{}, fmt.Errorf("sentiment: empty batch")
	}

	var out classifyResponse
	resp, err := hc.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{Texts: texts}).
		SetResult(&out).
		Post("/classify")
	if err != nil {
		return Result{}, fmt.Errorf("sentiment: classify request: %w", err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("sentiment: classify status %s", resp.Status())
	}

	label, err := parseLabel(out.Label)
	if err != nil {
		return Result{}, err
	}
	if out.Probability < 0 || out.Probability > 1 {
		return Result{}, fmt.Errorf("sentiment: probability %v out of range", out.Probability)
	}

	return Result{
		Probability: out.Probability,
		Label:       label,
		ObservedAt:  time.Now().UTC(),
	}, nil
}

func parseLabel(s string) (Label, error) {
	switch Label(s) {
	case Positive, Negative, Neutral:
		return Label(s), nil
	default:
		return "", fmt.Errorf("sentiment: unknown label %q", s)
	}
}
