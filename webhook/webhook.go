package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// defaultTimeout is the default delivery timeout.
	defaultTimeout = time.Second * 10
)

// EmitterConfig represents the webhook emitter configuration.
type EmitterConfig struct {
	// URL is the webhook endpoint signals are posted to.
	URL string
	// Indicator is the name reported as the signal's indicator.
	Indicator string
	// Timeout is the delivery timeout, optional.
	Timeout time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *EmitterConfig) Validate() error {
	var errs error

	if cfg.URL == "" {
		errs = errors.Join(errs, fmt.Errorf("webhook url cannot be empty"))
	}
	if cfg.Indicator == "" {
		errs = errors.Join(errs, fmt.Errorf("indicator name cannot be empty"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Emitter delivers signals to a webhook.
type Emitter struct {
	cfg    *EmitterConfig
	httpc  *resty.Client
	logger zerolog.Logger
}

var _ shared.SignalEmitter = (*Emitter)(nil)

// NewEmitter initializes a new webhook emitter.
func NewEmitter(cfg *EmitterConfig) (*Emitter, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating webhook emitter config: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	httpc := resty.New()
	httpc.SetTimeout(cfg.Timeout)
	httpc.SetHeader("Content-Type", "application/json")

	return &Emitter{
		cfg:    cfg,
		httpc:  httpc,
		logger: cfg.Logger.With().Str("component", "webhook").Logger(),
	}, nil
}

// Payload builds the webhook payload for the provided signal. Extra attributes never
// override the core fields.
func (e *Emitter) Payload(signal *shared.Signal) map[string]string {
	payload := make(map[string]string, len(signal.Extra)+5)
	for k, v := range signal.Extra {
		payload[k] = v
	}

	payload["ticker_symbol"] = signal.Ticker
	payload["action"] = signal.Action.OrderVerb()
	payload["indicator"] = e.cfg.Indicator
	payload["reason"] = signal.Reason
	if signal.Price > 0 {
		payload["price"] = decimal.NewFromFloat(signal.Price).StringFixed(2)
	}

	return payload
}

// Emit posts the provided signal to the webhook. Any non 200 response is a delivery failure.
func (e *Emitter) Emit(ctx context.Context, signal *shared.Signal) error {
	if signal == nil {
		return fmt.Errorf("signal cannot be nil")
	}

	resp, err := e.httpc.R().
		SetContext(ctx).
		SetBody(e.Payload(signal)).
		Post(e.cfg.URL)
	if err != nil {
		return fmt.Errorf("posting %s signal for %s: %w", signal.Action, signal.Ticker, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected webhook response status %d for %s signal on %s",
			resp.StatusCode(), signal.Action, signal.Ticker)
	}

	e.logger.Info().Msgf("signal sent: %s %s | %s | price: %.2f", signal.Ticker,
		signal.Action.OrderVerb(), signal.Reason, signal.Price)

	return nil
}
