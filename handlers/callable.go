package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"subscriptionAPI/internal/apperr"
)

const maxCallableBodyBytes = 64 << 10

// Callable functions wrap their input as {"data": ...} and answer with either
// {"result": ...} or {"error": {"status": ..., "message": ...}}.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

type callableError struct {
	Status  apperr.CallableStatus `json:"status"`
	Message string                `json:"message"`
}

func decodeCallable(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallableBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	var envelope callableRequest
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("request body is not a callable envelope: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		return fmt.Errorf("invalid callable data: %w", err)
	}
	return nil
}

func respondCallable(w http.ResponseWriter, result interface{}) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

func respondCallableError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.New(apperr.KindInternal, "Internal error.")
	}

	status := e.Kind.CallableStatus()
	respondWithJSON(w, status.HTTPStatus(), map[string]interface{}{
		"error": callableError{Status: status, Message: e.Message},
	})
}
