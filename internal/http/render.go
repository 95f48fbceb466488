package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/http/apierr"
	"github.com/qalicha-dev28/boutique-pos/pkg/validator"
)

// responder bundles request decoding and response writing shared by every
// handler.
type responder struct {
	logger   *slog.Logger
	validate validator.Validator
}

// decode unmarshals the JSON body into dst and validates it.
func (rs *responder) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErr.WithMsg("invalid request body").WrapParent(err)
	}

	return rs.validate.Validate(dst)
}

func (rs *responder) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rs *responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rs.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		rs.logger.ErrorContext(r.Context(), "error encoding error response", slog.Any("error", err))
	}
}

// pathUUID parses the named chi route parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WithMsg("invalid %s", name).WrapParent(err)
	}

	return id, nil
}
