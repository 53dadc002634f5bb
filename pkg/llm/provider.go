package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Config selects and authenticates the model.
type Config struct {
	APIKey string
	Model  string
	// Timeout bounds a single GenerateJSON call. Zero means no extra bound.
	Timeout time.Duration
}

// Factory builds a Client from a Config.
type Factory func(ctx context.Context, cfg Config) (Client, error)

// Provider hands out one Client per process. The client is built on the first Client call,
// so a provider can be created before credentials are known to be valid and passed around freely.
type Provider struct {
	cfg     Config
	factory Factory
	static  bool

	once   sync.Once
	client Client
	err    error
}

// NewProvider returns a provider that builds a GeminiClient on first use.
func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg, factory: geminiFactory}
}

// NewProviderWithFactory returns a provider that builds its client with factory.
func NewProviderWithFactory(cfg Config, factory Factory) *Provider {
	return &Provider{cfg: cfg, factory: factory}
}

// Static returns a provider that always hands out c.
func Static(c Client) *Provider {
	return &Provider{
		factory: func(context.Context, Config) (Client, error) { return c, nil },
		static:  true,
	}
}

func geminiFactory(ctx context.Context, cfg Config) (Client, error) {
	c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Client returns the process-wide client, creating it on the first call.
// A nil provider or a provider without an API key returns ErrNotConfigured.
func (p *Provider) Client(ctx context.Context) (Client, error) {
	if p == nil || p.factory == nil {
		return nil, ErrNotConfigured
	}

	p.once.Do(func() {
		c, err := p.factory(ctx, p.cfg)
		if err != nil {
			p.err = err
			return
		}
		if p.cfg.Timeout > 0 {
			c = &timeoutClient{Client: c, timeout: p.cfg.Timeout}
		}
		p.client = c
	})
	return p.client, p.err
}

// Configured reports whether Client can possibly succeed.
func (p *Provider) Configured() bool {
	if p == nil || p.factory == nil {
		return false
	}
	return p.static || strings.TrimSpace(p.cfg.APIKey) != ""
}

type timeoutClient struct {
	Client
	timeout time.Duration
}

func (c *timeoutClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.Client.GenerateJSON(ctx, prompt, input)
}
