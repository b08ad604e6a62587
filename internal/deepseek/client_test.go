package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}
}

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, `[{"en":"Pork Belly","zh":"五花肉","salePrice":"2.58","unit":"lb","quantity":924,"size":""}]`))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	items, err := c.Extract(context.Background(), "1、 Pork Belly 五花肉 2.58/lb")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pork Belly", items[0].En)
	assert.Equal(t, FlexString("924"), items[0].Quantity) // numeric quantity tolerated
}

func TestExtractItemsWrapper(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, `{"items":[{"en":"Soy Sauce","salePrice":"4.99"}]}`))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	items, err := c.Extract(context.Background(), "1、 Soy Sauce 4.99")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Soy Sauce", items[0].En)
}

func TestExtractErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		c := New(Config{APIKey: "k"}, zerolog.Nop())
		_, err := c.Extract(context.Background(), "  ")
		assert.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		c := New(Config{}, zerolog.Nop())
		_, err := c.Extract(context.Background(), "text")
		assert.Error(t, err)
	})

	t.Run("markdown fenced output rejected", func(t *testing.T) {
		srv := httptest.NewServer(chatReply(t, "```json\n[]\n```"))
		defer srv.Close()
		c := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
		_, err := c.Extract(context.Background(), "text")
		assert.Error(t, err)
	})

	t.Run("http error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()
		c := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
		_, err := c.Extract(context.Background(), "text")
		assert.ErrorContains(t, err, "429")
	})
}

func TestFlexString(t *testing.T) {
	var v struct {
		Q FlexString `json:"q"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"q":"924"}`), &v))
	assert.Equal(t, FlexString("924"), v.Q)
	require.NoError(t, json.Unmarshal([]byte(`{"q":2}`), &v))
	assert.Equal(t, FlexString("2"), v.Q)
	require.NoError(t, json.Unmarshal([]byte(`{"q":null}`), &v))
	assert.Equal(t, FlexString(""), v.Q)
}
