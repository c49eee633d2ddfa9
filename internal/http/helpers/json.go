package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
)

// DefaultMaxBody límite de body cuando el caller no define otro.
const DefaultMaxBody int64 = 1 << 20

// Envelope es la forma estándar de las respuestas exitosas.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ReadJSON decodifica de forma tolerante (ignora campos desconocidos).
// Un body vacío deja v sin tocar.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	raw, err := readBody(w, r, maxBytes)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// ReadStrictJSON decodifica rechazando cualquier campo fuera de allowed.
// Falla con INVALID_REQUEST_SHAPE antes de tocar v.
func ReadStrictJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64, allowed ...string) error {
	raw, err := readBody(w, r, maxBytes)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	if extra := unexpectedFields(fields, allowed); len(extra) > 0 {
		return httperrors.ErrInvalidRequestShape.WithDetail(strings.Join(extra, ","))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

func unexpectedFields(fields map[string]json.RawMessage, allowed []string) []string {
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}
	var extra []string
	for k := range fields {
		if _, found := ok[k]; !found {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, httperrors.ErrBodyTooLarge.WithCause(err)
		}
		return nil, httperrors.ErrBadRequest.WithCause(err)
	}
	if len(raw) > 0 {
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		if ct != "" && !strings.Contains(ct, "application/json") {
			return nil, httperrors.ErrBadRequest.WithMessage("Content-Type must be application/json")
		}
	}
	return raw, nil
}

// WriteJSON escribe v tal cual.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData escribe el Envelope con success=true.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}
