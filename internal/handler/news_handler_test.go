package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitmore/internal/service"
)

func TestHomeReturnsEveryBucket(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/news/home/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	payload := decodeBody(t, rec)
	require.Len(t, payload, len(service.HomeBuckets))
	for _, bucket := range service.HomeBuckets {
		section, ok := payload[bucket].([]any)
		require.True(t, ok, "bucket %s missing or not a list", bucket)
		assert.NotEmpty(t, section)
	}
}

func TestCategoryResponseShape(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/news/category/Sports/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "sports", payload["category"], "bucket names are normalized to lowercase")

	items, ok := payload["items"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, items)

	card := items[0].(map[string]any)
	assert.Equal(t, "Story", card["title"])
	assert.Contains(t, card, "summary")
	assert.Contains(t, card, "url")
	assert.Contains(t, card, "image")
	assert.Contains(t, card, "source")
	assert.Contains(t, card, "pubDate")
}

func TestCategoryServedFromCacheOnRepeat(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, http.MethodGet, "/api/news/category/health/", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodGet, "/api/news/category/health/", nil, nil)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, decodeBody(t, first)["items"], decodeBody(t, second)["items"])
}
