package figma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileKey(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "valid /file/ URL", url: "https://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "valid /design/ URL", url: "https://www.figma.com/design/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "valid /proto/ URL", url: "https://www.figma.com/proto/ABC123XYZ/Flow", want: "ABC123XYZ"},
		{
			name: "URL with node-id parameter",
			url:  "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Makis-s-file?node-id=11933-305884",
			want: "4gkABR5gEZnIvlCaXmA4KI",
		},
		{name: "URL without www subdomain", url: "https://figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "URL with http protocol", url: "http://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "URL with trailing slash", url: "https://www.figma.com/file/ABC123XYZ/", want: "ABC123XYZ"},
		{name: "URL with surrounding whitespace", url: "  https://www.figma.com/file/ABC123XYZ/x ", want: "ABC123XYZ"},
		{name: "invalid URL - missing file key", url: "https://www.figma.com/file/", wantErr: true},
		{name: "invalid URL - wrong domain", url: "https://www.example.com/file/ABC123XYZ", wantErr: true},
		{name: "invalid URL - lookalike domain", url: "https://figma.com.evil.io/file/ABC123XYZ", wantErr: true},
		{name: "invalid URL - wrong path", url: "https://www.figma.com/dashboard/ABC123XYZ", wantErr: true},
		{name: "empty URL", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFileKey(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{name: "single node-id with colon", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456", want: []string{"123:456"}},
		{
			name: "single node-id with dash",
			url:  "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Makis-s-file?node-id=11933-305884&t=ObvUckUHZc8tSjeT-1",
			want: []string{"11933:305884"},
		},
		{name: "multiple node-ids with mixed format", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,789-012", want: []string{"123:456", "789:012"}},
		{name: "hash fragment format", url: "https://www.figma.com/file/ABC123/Design#123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "path format", url: "https://www.figma.com/file/ABC123/Design/nodes/123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "no node-ids in URL", url: "https://www.figma.com/file/ABC123/Design", want: []string{}},
		{name: "duplicates removed", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "empty node-id parameter", url: "https://www.figma.com/file/ABC123/Design?node-id=", want: []string{}},
		{name: "node-id as middle parameter", url: "https://www.figma.com/file/ABC123/Design?first=value&node-id=123:456&last=value", want: []string{"123:456"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNodeIDs(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeduplicateNodeIDs(t *testing.T) {
	assert.Equal(t, []string{"789:012", "123:456", "345:678"},
		deduplicateNodeIDs([]string{"789:012", "123:456", "789:012", "345:678", "123:456"}))
	assert.Equal(t, []string{}, deduplicateNodeIDs(nil))
}

func TestClientGetFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/KEY1", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Figma-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Landing","version":"42","document":{"id":"0:0","name":"Document","type":"DOCUMENT",
			"children":[{"id":"1:1","name":"Card","type":"FRAME","cornerRadius":8,"itemSpacing":0,
			"fills":[{"type":"SOLID","color":{"r":1,"g":0,"b":0,"a":1}}]}]}}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	resp, err := c.GetFile(context.Background(), "KEY1")
	require.NoError(t, err)

	assert.Equal(t, "Landing", resp.Name)
	require.Len(t, resp.Document.Children, 1)
	card := resp.Document.Children[0]
	require.NotNil(t, card.CornerRadius)
	assert.Equal(t, 8.0, *card.CornerRadius)
	require.NotNil(t, card.ItemSpacing, "zero itemSpacing must stay distinguishable from absent")
	assert.Equal(t, 0.0, *card.ItemSpacing)
	assert.Nil(t, card.PaddingTop)
	assert.True(t, card.Fills[0].IsVisible())
}

func TestClientRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"name":"ok","nodes":{"1:2":{"document":{"id":"1:2","name":"Hero","type":"FRAME"}},"9:9":null}}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	resp, err := c.GetFileNodes(context.Background(), "KEY", []string{"1:2"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Hero", resp.Nodes["1:2"].Document.Name)
	assert.Contains(t, resp.Nodes, "9:9")
	assert.Nil(t, resp.Nodes["9:9"])
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"status":403,"err":"Invalid token"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	_, err := c.GetFile(context.Background(), "KEY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientGetImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/KEY", r.URL.Path)
		assert.Equal(t, "1:1,2:2", r.URL.Query().Get("ids"))
		assert.Equal(t, "png", r.URL.Query().Get("format"))
		assert.Equal(t, "2", r.URL.Query().Get("scale"))
		_, _ = w.Write([]byte(`{"images":{"1:1":"https://cdn/1.png","2:2":""}}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	resp, err := c.GetImages(context.Background(), "KEY", []string{"1:1", "2:2"}, "png", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/1.png", resp.Images["1:1"])
}

func TestGetFileNodesRequiresIDs(t *testing.T) {
	_, err := NewClient("t").GetFileNodes(context.Background(), "KEY", nil)
	assert.Error(t, err)
}
