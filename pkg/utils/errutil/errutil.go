package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
)

// Handle logs the error with its goerr context and reports it to Sentry
// when a hub is configured. It returns the error as-is for the caller.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			if ge != nil {
				scope.SetContext("goerr", sentry.Context(ge.Values()))
			}
			hub.CaptureException(err)
		})
	}

	return err
}

type errorBody struct {
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// HandleHTTP logs the error and writes a JSON error response
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		_ = Handle(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP request rejected",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Reason: err.Error()})
}
