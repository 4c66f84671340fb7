package router_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	health "github.com/npavlov/go-luhn-service/internal/handlers/health"
	handlers "github.com/npavlov/go-luhn-service/internal/handlers/luhn"
	"github.com/npavlov/go-luhn-service/internal/luhn"
	"github.com/npavlov/go-luhn-service/internal/middlewares"
	"github.com/npavlov/go-luhn-service/internal/models"
	"github.com/npavlov/go-luhn-service/internal/ratelimit"
	"github.com/npavlov/go-luhn-service/internal/router"
)

func newServer(t *testing.T, policies router.Policies) *httptest.Server {
	t.Helper()

	return newServerWithResolver(t, policies, nil)
}

func newServerWithResolver(t *testing.T, policies router.Policies, resolver *middlewares.IPResolver) *httptest.Server {
	t.Helper()

	logger := zerolog.New(nil)
	cat, err := catalog.Default()
	require.NoError(t, err)

	cRouter := router.NewCustomRouter(policies, &logger).WithIPResolver(resolver)
	cRouter.SetMiddlewares()
	cRouter.SetHealthRouter(health.NewHealthHandler(nil, &logger))
	cRouter.SetLuhnRouter(handlers.NewLuhnHandler(luhn.NewEngine(nil), cat, 10, 16, &logger))

	server := httptest.NewServer(cRouter.GetRouter())
	t.Cleanup(server.Close)

	return server
}

func TestRouter_Endpoints(t *testing.T) {
	t.Parallel()

	server := newServer(t, router.Policies{Validate: nil, Generate: nil, Default: nil})

	t.Run("Ping", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(server.URL + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("Validate", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Post(server.URL+"/api/validate", "application/json",
			strings.NewReader(`{"number":"5632016887467943"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.ValidateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Valid)
		assert.Equal(t, "5632016887467943", body.Number)
	})

	t.Run("Generate", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(server.URL + "/api/generate?count=3&category=Maestro")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.GenerateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Cards, 3)
		for _, card := range body.Cards {
			assert.Len(t, card, 19)
			assert.True(t, luhn.IsValid(card))
		}
	})

	t.Run("Oversized validate body", func(t *testing.T) {
		t.Parallel()

		body := `{"number":"` + strings.Repeat("7", 8<<10) + `"}`
		resp, err := http.Post(server.URL+"/api/validate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("Wrong method", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(server.URL + "/api/validate")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("Brotli encoding", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequest(http.MethodGet, server.URL+"/api/categories", nil)
		require.NoError(t, err)
		req.Header.Set("Accept-Encoding", "br")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "br", resp.Header.Get("Content-Encoding"))

		var body models.CategoriesResponse
		require.NoError(t, json.NewDecoder(brotli.NewReader(resp.Body)).Decode(&body))
		assert.Len(t, body.Categories, 20)
	})
}

func TestRouter_RateLimits(t *testing.T) {
	t.Parallel()

	server := newServer(t, router.Policies{
		Validate: ratelimit.NewMemoryPolicy(t.Context(), ratelimit.Limit{Requests: 2, Period: time.Minute}),
		Generate: ratelimit.NewMemoryPolicy(t.Context(), ratelimit.Limit{Requests: 1, Period: time.Minute}),
		Default:  nil,
	})

	for i := 0; i < 2; i++ {
		resp, err := http.Post(server.URL+"/api/validate", "application/json", strings.NewReader(`{"number":"0"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Post(server.URL+"/api/validate", "application/json", strings.NewReader(`{"number":"0"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ratelimit exceeded", body.Error)

	// generate has its own budget
	genResp, err := http.Get(server.URL + "/api/generate")
	require.NoError(t, err)
	genResp.Body.Close()
	assert.Equal(t, http.StatusOK, genResp.StatusCode)

	genResp, err = http.Get(server.URL + "/api/generate")
	require.NoError(t, err)
	genResp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, genResp.StatusCode)
}

func TestRouter_RateLimitIgnoresForgedForwarding(t *testing.T) {
	t.Parallel()

	server := newServer(t, router.Policies{
		Validate: ratelimit.NewMemoryPolicy(t.Context(), ratelimit.Limit{Requests: 3, Period: time.Minute}),
		Generate: nil,
		Default:  nil,
	})

	statuses := make([]int, 0, 6)
	for i := range 6 {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/api/validate", strings.NewReader(`{"number":"0"}`))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429, 429}, statuses)
}

func TestRouter_RateLimitBehindTrustedProxy(t *testing.T) {
	t.Parallel()

	resolver, err := middlewares.NewIPResolver("127.0.0.1,::1")
	require.NoError(t, err)

	server := newServerWithResolver(t, router.Policies{
		Validate: ratelimit.NewMemoryPolicy(t.Context(), ratelimit.Limit{Requests: 1, Period: time.Minute}),
		Generate: nil,
		Default:  nil,
	}, resolver)

	post := func(caller string) int {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/api/validate", strings.NewReader(`{"number":"0"}`))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", caller)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.1"))
}
