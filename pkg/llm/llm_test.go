package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Summary string   `json:"summary"`
	Items   []string `json:"items"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    doc
		wantErr bool
	}{
		{name: "plain", raw: `{"summary":"ok","items":["a"]}`, want: doc{Summary: "ok", Items: []string{"a"}}},
		{name: "fenced with language", raw: "```json\n{\"summary\":\"ok\"}\n```", want: doc{Summary: "ok"}},
		{name: "fenced without language", raw: "```\n{\"summary\":\"ok\"}\n```\n", want: doc{Summary: "ok"}},
		{name: "surrounding whitespace", raw: "\n  {\"summary\":\"ok\"}  \n", want: doc{Summary: "ok"}},
		{name: "empty", raw: "", wantErr: true},
		{name: "prose", raw: "Sure! Here is your document.", wantErr: true},
		{name: "wrong shape", raw: `{"summary": 3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[doc](json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got, err := buildPrompt("Describe.", map[string]int{"colors": 2})
	require.NoError(t, err)
	assert.Equal(t, "Describe.\n\n[INPUT JSON]\n{\n  \"colors\": 2\n}", got)

	got, err = buildPrompt("Describe.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Describe.", got)
}

type stubClient struct{ answer string }

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.RawMessage(s.answer), nil
}

func TestProviderNotConfigured(t *testing.T) {
	var nilProvider *Provider
	_, err := nilProvider.Client(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, nilProvider.Configured())

	p := NewProvider(Config{})
	assert.False(t, p.Configured())
	_, err = p.Client(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProviderBuildsClientOnce(t *testing.T) {
	var builds int32
	p := NewProviderWithFactory(Config{APIKey: "key", Model: "m"}, func(ctx context.Context, cfg Config) (Client, error) {
		atomic.AddInt32(&builds, 1)
		assert.Equal(t, "m", cfg.Model)
		return &stubClient{answer: `{}`}, nil
	})
	assert.True(t, p.Configured())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := p.Client(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, c)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestProviderRemembersFactoryError(t *testing.T) {
	boom := errors.New("boom")
	var builds int32
	p := NewProviderWithFactory(Config{APIKey: "key"}, func(context.Context, Config) (Client, error) {
		atomic.AddInt32(&builds, 1)
		return nil, boom
	})

	_, err := p.Client(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = p.Client(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

type slowClient struct{}

func (slowClient) Name() string { return "slow" }

func (slowClient) GenerateJSON(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProviderTimeout(t *testing.T) {
	p := NewProviderWithFactory(Config{APIKey: "key", Timeout: 10 * time.Millisecond}, func(context.Context, Config) (Client, error) {
		return slowClient{}, nil
	})

	c, err := p.Client(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "slow", c.Name())

	_, err = c.GenerateJSON(context.Background(), "p", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStaticProvider(t *testing.T) {
	p := Static(&stubClient{answer: `{"summary":"hi"}`})
	assert.True(t, p.Configured())

	c, err := p.Client(context.Background())
	require.NoError(t, err)
	raw, err := c.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)

	got, err := Decode[doc](raw)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Summary)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
