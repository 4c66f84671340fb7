package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/logger"
	"github.com/npavlov/go-luhn-service/internal/models"
)

// Engine is the part of the Luhn engine the handlers need.
type Engine interface {
	Validate(number string) bool
	Generate(length int) (string, error)
}

type HandlerLuhn struct {
	logger        *zerolog.Logger
	engine        Engine
	catalog       *catalog.Catalog
	maxCount      int
	defaultLength int
}

// NewLuhnHandler - constructor for HandlerLuhn.
func NewLuhnHandler(engine Engine, cat *catalog.Catalog, maxCount, defaultLength int, l *zerolog.Logger) *HandlerLuhn {
	return &HandlerLuhn{
		logger:        l,
		engine:        engine,
		catalog:       cat,
		maxCount:      maxCount,
		defaultLength: defaultLength,
	}
}

func (mh *HandlerLuhn) Validate(response http.ResponseWriter, req *http.Request) {
	log := logger.GetWithTrace(req.Context(), mh.logger)

	var request models.ValidateRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("Validate: body too large")

			writeError(response, http.StatusRequestEntityTooLarge, "request too large",
				"Body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")

			return
		}

		log.Error().Err(err).Msg("Validate: error decoding body")

		writeError(response, http.StatusBadRequest, "invalid request", "Body must be a JSON object with a string number")

		return
	}

	valid := mh.engine.Validate(request.Number)
	log.Debug().Int("length", len(request.Number)).Bool("valid", valid).Msg("Number validated")

	writeJSON(response, http.StatusOK, models.NewValidateResponse(request.Number, valid))
}

func (mh *HandlerLuhn) Generate(response http.ResponseWriter, req *http.Request) {
	log := logger.GetWithTrace(req.Context(), mh.logger)
	query := req.URL.Query()

	count := mh.parseCount(query.Get("count"))

	length, err := mh.resolveLength(query.Get("length"), query.Get("category"))
	if err != nil {
		log.Error().Err(err).Msg("Generate: invalid length or category")

		writeError(response, http.StatusBadRequest, "invalid request", err.Error())

		return
	}

	cards := make([]string, 0, count)
	for range count {
		card, err := mh.engine.Generate(length)
		if err != nil {
			log.Error().Err(err).Int("length", length).Msg("Generate: engine failure")

			writeError(response, http.StatusInternalServerError, "internal error", "could not generate number")

			return
		}
		cards = append(cards, card)
	}

	log.Debug().Int("count", count).Int("length", length).Msg("Numbers generated")

	writeJSON(response, http.StatusOK, models.GenerateResponse{Cards: cards})
}

func (mh *HandlerLuhn) Categories(response http.ResponseWriter, _ *http.Request) {
	writeJSON(response, http.StatusOK, models.CategoriesResponse{Categories: mh.catalog.All()})
}

// parseCount defaults to 1 when raw is absent or not a number and caps it at maxCount.
// Zero and negative counts produce an empty result.
func (mh *HandlerLuhn) parseCount(raw string) int {
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}

	return max(min(count, mh.maxCount), 0)
}

func (mh *HandlerLuhn) resolveLength(rawLength, rawCategory string) (int, error) {
	switch {
	case rawLength != "":
		length, err := strconv.Atoi(rawLength)
		if err != nil || length < 1 || length > catalog.MaxLength {
			return 0, errors.Errorf("length must be an integer between 1 and %d", catalog.MaxLength)
		}

		return length, nil
	case rawCategory != "":
		category, err := mh.catalog.Resolve(rawCategory)
		if err != nil {
			return 0, err
		}

		return category.Length, nil
	default:
		return mh.defaultLength, nil
	}
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	_ = json.NewEncoder(response).Encode(payload)
}

func writeError(response http.ResponseWriter, status int, code, message string) {
	writeJSON(response, status, models.ErrorResponse{Error: code, Message: message})
}
