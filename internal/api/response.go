package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/serrors"
	"net/http"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; filter stores are small.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statuses = map[serrors.Kind]int{ //nolint: gochecknoglobals
	serrors.ErrNotFound:     http.StatusNotFound,
	serrors.ErrUnauthorized: http.StatusUnauthorized,
	serrors.ErrForbidden:    http.StatusForbidden,
	serrors.ErrBadRequest:   http.StatusBadRequest,
	serrors.ErrConflict:     http.StatusConflict,
	serrors.ErrTimeout:      http.StatusGatewayTimeout,
	serrors.ErrUnavailable:  http.StatusServiceUnavailable,
	serrors.ErrRateLimited:  http.StatusTooManyRequests,
}

// StatusFor maps err to an HTTP status and error body. Errors without a
// known kind are internal and their message is not exposed.
func StatusFor(err error) (int, ErrorBody) {
	kind := serrors.KindOf(err)
	if status, ok := statuses[kind]; ok {
		return status, ErrorBody{Code: kind.Error(), Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorBody{Code: serrors.ErrInternal.Error(), Message: "internal error"}
}

func unavailable(err error) error {
	if serrors.KindOf(err) != nil {
		return err
	}

	return serrors.Wrap(serrors.ErrUnavailable, err, "unavailable")
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(ctx, w, status, body)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}

// decode reads a JSON body into v. An empty body leaves v at its zero value.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return serrors.Wrap(serrors.ErrBadRequest, err, "request body too large")
		}

		return serrors.Wrap(serrors.ErrBadRequest, err, "could not decode request")
	}

	return nil
}
