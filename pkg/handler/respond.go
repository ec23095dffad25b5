package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AccelByte/extend-resolve-challenge/pkg/challenge"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 16

var errMissingUser = errors.New("missing user id")

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithErr maps domain errors onto status codes.
func respondWithErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logrus.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		respondWithError(w, code, "internal error")
		return
	}

	logrus.Debugf("%s %s rejected (%d): %v", r.Method, r.URL.Path, code, err)
	respondWithError(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, challenge.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, challenge.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, challenge.ErrInvalidArgument), errors.Is(err, errMissingUser):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUnknownHook):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(mux.Vars(r)["userID"])
	if id == "" {
		return "", errMissingUser
	}
	return id, nil
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %v: %w", err, challenge.ErrInvalidArgument)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed body: %v: %w", err, challenge.ErrInvalidArgument)
	}
	return nil
}
