package tags

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teledrive-web/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model", Timeout: 5 * time.Second})
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestSuggestTags(t *testing.T) {
	t.Run("parses a plain tag array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)

			w.Write([]byte(completion(`["sunset","beach"]`)))
		})

		tags, err := c.SuggestTags(context.Background(), "document", "", "quarterly report")
		require.NoError(t, err)
		assert.Equal(t, []string{"sunset", "beach"}, tags)
	})

	t.Run("tolerates a fenced reply and normalizes tags", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completion("```json\n[\" Sunset \",\"BEACH\",\"\"]\n```")))
		})

		tags, err := c.SuggestTags(context.Background(), "document", "", "photo")
		require.NoError(t, err)
		assert.Equal(t, []string{"sunset", "beach"}, tags)
	})

	t.Run("attaches the data uri only for images", func(t *testing.T) {
		var got chatRequest
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(completion(`["cat"]`)))
		})

		_, err := c.SuggestTags(context.Background(), string(model.TypeImage), "data:image/png;base64,AAAA", "cat.png")
		require.NoError(t, err)

		require.Len(t, got.Messages, 1)
		require.Len(t, got.Messages[0].Content, 2)
		require.NotNil(t, got.Messages[0].Content[1].ImageURL)
		assert.Equal(t, "data:image/png;base64,AAAA", got.Messages[0].Content[1].ImageURL.URL)
	})

	t.Run("non-image media never attaches a data uri", func(t *testing.T) {
		var got chatRequest
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(completion(`["music"]`)))
		})

		_, err := c.SuggestTags(context.Background(), string(model.TypeAudio), "data:audio/mp3;base64,AAAA", "song.mp3")
		require.NoError(t, err)

		require.Len(t, got.Messages, 1)
		assert.Len(t, got.Messages[0].Content, 1)
	})

	t.Run("surfaces the provider error message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		})

		_, err := c.SuggestTags(context.Background(), "document", "", "report")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("rejects a non-array reply", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completion("Sure! Here are some tags: sunset, beach")))
		})

		_, err := c.SuggestTags(context.Background(), "document", "", "report")
		assert.Error(t, err)
	})
}

func TestSuggestTagsDisabled(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: time.Second})

	assert.False(t, c.Enabled())

	_, err := c.SuggestTags(context.Background(), "document", "", "report")
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}
