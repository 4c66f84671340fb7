package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Pinger is a dependency whose reachability decides service health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerHealth struct {
	logger *zerolog.Logger
	store  Pinger
}

// NewHealthHandler - constructor for HealthHandler. store may be nil when the
// service runs without a shared rate-limit store.
func NewHealthHandler(store Pinger, l *zerolog.Logger) *HandlerHealth {
	return &HandlerHealth{
		logger: l,
		store:  store,
	}
}

func (mh *HandlerHealth) Ping(response http.ResponseWriter, req *http.Request) {
	if mh.store != nil {
		if err := mh.store.Ping(req.Context()); err != nil {
			mh.logger.Error().Err(err).Msg("No connection to rate limit store")
			http.Error(response, "Failed to connect to rate limit store: "+err.Error(), http.StatusInternalServerError)

			return
		}
	}

	response.WriteHeader(http.StatusOK)
	_, _ = response.Write([]byte("pong"))
}
