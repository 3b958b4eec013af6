// Package handler implements the radar's JSON HTTP endpoints.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes bounds request bodies; order payloads are tiny.
const maxBodyBytes = 1 << 20

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// errorResponse is the JSON error body. Code is omitted for plain request
// errors.
type errorResponse struct {
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError sends {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeCodedError sends {"error": msg, "code": code}, with "ok": false when
// withOK is set.
func writeCodedError(w http.ResponseWriter, status int, msg, code string, withOK bool) {
	resp := errorResponse{Error: msg, Code: code}
	if withOK {
		ok := false
		resp.OK = &ok
	}
	writeJSON(w, status, resp)
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// untouched. Numbers decode as json.Number.
func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// positiveInt reads a positive integer query value, truncating fractions.
// Anything else yields 0.
func positiveInt(v string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 1 || f > float64(1<<31) {
		return 0
	}
	return int(f)
}

// logHandler attaches the handler name to logger.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("handler", handler))
}
