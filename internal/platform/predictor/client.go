package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/pkg/model"
)

var (
	// ErrCircuitOpen signals the breaker is open after repeated 429/503 responses.
	ErrCircuitOpen = errors.New("model service circuit open due to repeated overload responses")
	// ErrNoEstimate is returned when neither the model service nor the
	// dataset baseline can price the vehicle.
	ErrNoEstimate = errors.New("no price estimate available")
)

// baselineModel names the dataset-median estimator in responses.
const baselineModel = "dataset-median"

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Estimator supplies the dataset side of a prediction. *market.Analyzer
// satisfies it.
type Estimator interface {
	BaselinePrice(q model.VehicleQuery) (float64, string, bool)
	VehicleInfo(q model.VehicleQuery) model.VehicleInfo
}

// Client dispatches price predictions to an external model service with retry
// and circuit breaker support, falling back to the dataset baseline.
type Client struct {
	url        string
	httpClient HTTPClient
	estimator  Estimator
	logger     *slog.Logger

	maxRetries       int
	breakerThreshold int

	mu               sync.Mutex
	consecutiveLimit int
}

// Config defines settings for the prediction client.
type Config struct {
	// URL of the model service. Empty means baseline only.
	URL        string
	Timeout    time.Duration
	MaxRetries int
	BreakerMax int
	Logger     *slog.Logger
}

// New creates a prediction client.
func New(httpClient HTTPClient, estimator Estimator, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	breaker := cfg.BreakerMax
	if breaker <= 0 {
		breaker = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		url:              cfg.URL,
		httpClient:       httpClient,
		estimator:        estimator,
		logger:           logger,
		maxRetries:       maxRetries,
		breakerThreshold: breaker,
	}
}

// Predict prices a vehicle. The remote model answers when configured and
// healthy; otherwise the dataset baseline does.
func (c *Client) Predict(ctx context.Context, q model.VehicleQuery) (model.PredictionResult, error) {
	var info model.VehicleInfo
	if c.estimator != nil {
		info = c.estimator.VehicleInfo(q)
	}

	if c.url != "" {
		remote, err := c.predictRemote(ctx, q)
		if err == nil {
			return model.PredictionResult{
				Prediction:      round2(remote.Prediction),
				ModelUsed:       remote.modelName(),
				ConfidenceScore: remote.confidence(),
				CarInfo:         info,
				Message:         fmt.Sprintf("Prediction from %s", remote.modelName()),
			}, nil
		}
		if ctx.Err() != nil {
			return model.PredictionResult{}, ctx.Err()
		}
		c.logger.Warn("model service failed, using dataset baseline", "error", err)
	}

	if c.estimator == nil {
		return model.PredictionResult{}, ErrNoEstimate
	}
	price, level, ok := c.estimator.BaselinePrice(q)
	if !ok {
		return model.PredictionResult{}, ErrNoEstimate
	}
	return model.PredictionResult{
		Prediction:      price,
		ModelUsed:       baselineModel,
		ConfidenceScore: baselineConfidence(level),
		CarInfo:         info,
		Message:         fmt.Sprintf("Median price of %s matches in the dataset", level),
	}, nil
}

func (c *Client) predictRemote(ctx context.Context, q model.VehicleQuery) (remoteResponse, error) {
	if c.breakerOpen() {
		return remoteResponse{}, ErrCircuitOpen
	}

	payload, err := json.Marshal(q)
	if err != nil {
		return remoteResponse{}, fmt.Errorf("encode request: %w", err)
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return remoteResponse{}, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == c.maxRetries-1 || ctx.Err() != nil {
				return remoteResponse{}, fmt.Errorf("request: %w", err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			c.resetBreaker()
			out, err := decodeRemoteResponse(resp.Body)
			resp.Body.Close()
			return out, err
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			if c.tripBreaker() {
				return remoteResponse{}, ErrCircuitOpen
			}
			continue
		}

		if attempt == c.maxRetries-1 {
			return remoteResponse{}, fmt.Errorf("model service status %d: %s", resp.StatusCode, string(body))
		}
	}

	return remoteResponse{}, fmt.Errorf("model service prediction failed after retries")
}

func (c *Client) breakerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutiveLimit >= c.breakerThreshold
}

// tripBreaker counts one overload response and reports whether the breaker is now open.
func (c *Client) tripBreaker() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveLimit++
	return c.consecutiveLimit >= c.breakerThreshold
}

func (c *Client) resetBreaker() {
	c.mu.Lock()
	c.consecutiveLimit = 0
	c.mu.Unlock()
}

type remoteResponse struct {
	Prediction float64  `json:"prediction"`
	Model      string   `json:"model"`
	R2Score    *float64 `json:"r2_score"`
}

func (r remoteResponse) modelName() string {
	if r.Model == "" {
		return "model-service"
	}
	return r.Model
}

// confidence maps the model's R² onto 60-95, defaulting to 85.
func (r remoteResponse) confidence() int {
	r2 := 0.85
	if r.R2Score != nil {
		r2 = *r.R2Score
	}
	return min(95, max(60, int(r2*100)))
}

func decodeRemoteResponse(body io.Reader) (remoteResponse, error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return remoteResponse{}, fmt.Errorf("read response: %w", err)
	}
	var out remoteResponse
	if err := json.Unmarshal(bytes.TrimSpace(buf), &out); err != nil {
		return remoteResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if math.IsNaN(out.Prediction) || out.Prediction <= 0 {
		return remoteResponse{}, fmt.Errorf("model service returned invalid prediction %v", out.Prediction)
	}
	return out, nil
}

func baselineConfidence(level string) int {
	switch level {
	case market.MatchExact:
		return 80
	case market.MatchCompanyYear:
		return 70
	case market.MatchCompany:
		return 60
	default:
		return 50
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
