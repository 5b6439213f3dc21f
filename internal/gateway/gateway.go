package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/httpclient"
	"github.com/nulzo/prompt-gateway/internal/llm"
	"github.com/nulzo/prompt-gateway/internal/ratelimit"
	"github.com/nulzo/prompt-gateway/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/nulzo/prompt-gateway/internal/gateway"

// PollPolicy bounds the status polling of asynchronous providers.
type PollPolicy struct {
	Interval time.Duration
	// MaxAttempts is the number of polls after which the call gives up.
	// Zero means poll until the job reaches a terminal status.
	MaxAttempts int
}

// DefaultPollPolicy polls once per second for up to two minutes.
var DefaultPollPolicy = PollPolicy{Interval: time.Second, MaxAttempts: 120}

type Options struct {
	Providers map[llm.Provider]config.ProviderConfig
	Adapters  map[llm.Provider]llm.Adapter
	// Limiter holds the per-provider last-call state. It is owned by the caller
	// so several gateways can share one table.
	Limiter ratelimit.Limiter
	Client  httpclient.HTTPClient
	Poll    PollPolicy
	Logger  *zap.Logger
}

// Gateway forwards prompts to the configured providers.
type Gateway struct {
	providers map[llm.Provider]config.ProviderConfig
	adapters  map[llm.Provider]llm.Adapter
	limiter   ratelimit.Limiter
	client    httpclient.HTTPClient
	poll      PollPolicy
	logger    *zap.Logger
}

// New validates that every provider has a configuration and an adapter.
func New(opts Options) (*Gateway, error) {
	if opts.Limiter == nil {
		return nil, errors.New("gateway: a rate limiter is required")
	}
	for _, p := range llm.All {
		if _, ok := opts.Providers[p]; !ok {
			return nil, fmt.Errorf("gateway: no configuration for provider %s", p)
		}
		if _, ok := opts.Adapters[p]; !ok {
			return nil, fmt.Errorf("gateway: no adapter for provider %s", p)
		}
	}
	if opts.Poll.Interval <= 0 {
		opts.Poll.Interval = DefaultPollPolicy.Interval
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Gateway{
		providers: opts.Providers,
		adapters:  opts.Adapters,
		limiter:   opts.Limiter,
		client:    opts.Client,
		poll:      opts.Poll,
		logger:    opts.Logger,
	}, nil
}

// FromConfig builds the adapters registered for every provider and wires them
// into a Gateway. Vendor packages must be imported for their registration.
func FromConfig(cfg *config.Config, limiter ratelimit.Limiter, logger *zap.Logger) (*Gateway, error) {
	providers := make(map[llm.Provider]config.ProviderConfig, len(llm.All))
	adapters := make(map[llm.Provider]llm.Adapter, len(llm.All))

	for _, p := range llm.All {
		pCfg, ok := cfg.Providers.Get(p.String())
		if !ok {
			return nil, fmt.Errorf("gateway: no configuration for provider %s", p)
		}
		adapter, err := llm.NewAdapter(p, pCfg)
		if err != nil {
			return nil, err
		}
		providers[p] = pCfg
		adapters[p] = adapter
	}

	return New(Options{
		Providers: providers,
		Adapters:  adapters,
		Limiter:   limiter,
		Client:    &http.Client{Timeout: cfg.Gateway.RequestTimeout},
		Poll: PollPolicy{
			Interval:    cfg.Gateway.PollInterval,
			MaxAttempts: cfg.Gateway.PollMaxAttempts,
		},
		Logger: logger,
	})
}

// Generate sends prompt to the provider named by its public identifier and
// returns the completion text.
func (g *Gateway) Generate(ctx context.Context, id, prompt string) (string, error) {
	p, err := llm.ParseProvider(id)
	if err != nil {
		g.logger.Warn("Rejected unknown provider", zap.String("provider", id))
		return "", err
	}
	return g.GenerateWith(ctx, p, prompt)
}

// GenerateWith is Generate for an already resolved provider.
func (g *Gateway) GenerateWith(ctx context.Context, p llm.Provider, prompt string) (string, error) {
	if !p.Valid() {
		return "", &llm.UnknownProviderError{ID: p.String()}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gateway.generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.provider", p.String()))

	if err := g.CheckRateLimit(ctx, p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	cfg := g.providers[p]
	if cfg.Demo() {
		span.SetAttributes(attribute.Bool("llm.demo", true))
		return DemoResponse(p.DisplayName(), prompt), nil
	}

	start := time.Now()
	text, err := g.call(ctx, p, prompt)
	if err != nil {
		g.logger.Error("Provider call failed",
			zap.String("provider", p.String()),
			zap.String("model", cfg.Model),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	g.logger.Debug("Provider call succeeded",
		zap.String("provider", p.String()),
		zap.String("model", cfg.Model),
		zap.Duration("latency", time.Since(start)),
	)

	return text, nil
}

// CheckRateLimit records a call to p, failing with *llm.RateLimitError when
// the previous call is less than the limiter interval ago.
func (g *Gateway) CheckRateLimit(ctx context.Context, p llm.Provider) error {
	ok, err := g.limiter.Allow(ctx, p.String())
	if err != nil {
		g.logger.Error("Rate limit check failed", zap.String("provider", p.String()), zap.Error(err))
		return err
	}
	if !ok {
		g.logger.Debug("Rate limit exceeded", zap.String("provider", p.String()))
		return &llm.RateLimitError{Provider: p, RetryAfter: g.limiter.Interval()}
	}
	return nil
}

// Providers describes the configured providers in dispatch order.
func (g *Gateway) Providers() []api.ProviderInfo {
	infos := make([]api.ProviderInfo, 0, len(llm.All))
	for _, p := range llm.All {
		cfg := g.providers[p]
		infos = append(infos, api.ProviderInfo{
			ID:       p.PublicID(),
			Provider: p.String(),
			Name:     p.DisplayName(),
			Model:    cfg.Model,
			Demo:     cfg.Demo(),
		})
	}
	return infos
}

func (g *Gateway) call(ctx context.Context, p llm.Provider, prompt string) (string, error) {
	adapter := g.adapters[p]

	req, err := adapter.BuildRequest(prompt)
	if err != nil {
		return "", err
	}

	res, err := g.exchange(ctx, p, adapter, req)
	if err != nil {
		return "", err
	}

	attempts := 0
	for res.Pending {
		if g.poll.MaxAttempts > 0 && attempts >= g.poll.MaxAttempts {
			return "", &llm.PollTimeoutError{Provider: p, Attempts: attempts}
		}
		if res.Poll == nil {
			return "", fmt.Errorf("%s returned a pending result without a poll request", p)
		}
		if err := sleep(ctx, g.poll.Interval); err != nil {
			return "", err
		}
		attempts++

		res, err = g.exchange(ctx, p, adapter, res.Poll)
		if err != nil {
			return "", err
		}
	}

	return res.Text, nil
}

// exchange sends one call and hands the body to the adapter.
func (g *Gateway) exchange(ctx context.Context, p llm.Provider, adapter llm.Adapter, call *llm.Call) (*llm.Result, error) {
	body, err := httpclient.SendRequest(ctx, g.client, call.Method, call.URL, call.Headers, call.Body)
	if err != nil {
		var upstreamErr *httpclient.UpstreamError
		if errors.As(err, &upstreamErr) {
			return nil, &llm.APIError{
				Provider:   p,
				StatusCode: upstreamErr.StatusCode,
				Status:     upstreamErr.Status,
			}
		}
		return nil, err
	}
	return adapter.ParseResponse(body)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
