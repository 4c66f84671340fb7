// Package client talks to a remote luhnd over its JSON API.
package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/models"
	"github.com/npavlov/go-luhn-service/internal/utils"
)

const (
	defaultTimeout = 5 * time.Second
	// Server-side cap on numbers per generate request.
	batchSize = 10
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

type Client struct {
	http *resty.Client
	log  *zerolog.Logger
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, log *zerolog.Logger) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http: httpClient,
		log:  log,
	}
}

func (c *Client) Validate(ctx context.Context, number string) (bool, error) {
	var result models.ValidateResponse

	err := c.do(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(models.ValidateRequest{Number: number}).
			SetResult(&result).
			Post("/api/validate")
	})
	if err != nil {
		return false, err
	}

	return result.Valid, nil
}

// Generate asks the server for count numbers of the given length, in batches the
// server accepts.
func (c *Client) Generate(ctx context.Context, length, count int) ([]string, error) {
	cards := make([]string, 0, count)

	for len(cards) < count {
		batch := min(count-len(cards), batchSize)

		var result models.GenerateResponse
		err := c.do(ctx, func() (*resty.Response, error) {
			return c.http.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"count":  strconv.Itoa(batch),
					"length": strconv.Itoa(length),
				}).
				SetResult(&result).
				Get("/api/generate")
		})
		if err != nil {
			return nil, err
		}

		if len(result.Cards) == 0 {
			return nil, errors.New("server returned no numbers")
		}
		cards = append(cards, result.Cards...)
	}

	return cards, nil
}

func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	var result models.CategoriesResponse

	err := c.do(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetResult(&result).
			Get("/api/categories")
	})
	if err != nil {
		return nil, err
	}

	return result.Categories, nil
}

// do retries rate-limited and server-side failures with backoff. Other non-2xx
// responses fail immediately.
func (c *Client) do(ctx context.Context, request func() (*resty.Response, error)) error {
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Dur("wait", wait).Msg("Server busy, retrying")
	}

	return utils.RetryOperationNotify(ctx, func() error {
		resp, err := request()
		if err != nil {
			return errors.Wrap(err, "could not send request")
		}

		switch status := resp.StatusCode(); {
		case status >= http.StatusOK && status < http.StatusMultipleChoices:
			return nil
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			return errors.Wrapf(ErrUnexpectedStatus, "%d from %s", status, resp.Request.URL)
		default:
			return utils.Permanent(errors.Wrapf(ErrUnexpectedStatus, "%d: %s", status, resp.String()))
		}
	}, notify)
}
