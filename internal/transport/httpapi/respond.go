package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"carfixer/backend/internal/service/appointments"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{OK: false, Error: msg})
}

// fail maps service errors onto HTTP statuses. Anything that is not a
// validation, conflict or not-found error is logged and hidden behind a
// generic message.
func (a *API) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		vErr *appointments.ValidationError
		cErr *appointments.ConflictError
		nErr *appointments.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &cErr):
		writeError(w, http.StatusConflict, cErr.Error())
	case errors.As(err, &nErr):
		writeError(w, http.StatusNotFound, nErr.Error())
	default:
		a.log.Error(op+" failed",
			slog.String("request_id", requestIDFrom(r.Context())),
			slog.Any("err", err),
		)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

type fields map[string]string

func (f fields) get(key string) string {
	return f[key]
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

// id parses a positive id. Missing or malformed values read as 0 so that
// the service reports them as absent input.
func (f fields) id(key string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(f[key]), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// readFields accepts either a JSON object or a urlencoded/multipart form.
// JSON numbers and booleans are read as their literal text.
func readFields(w http.ResponseWriter, r *http.Request) (fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, errBadBody
		}
		out := make(fields, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
			case string:
				out[k] = val
			case json.Number:
				out[k] = val.String()
			case bool:
				out[k] = strconv.FormatBool(val)
			default:
				return nil, fmt.Errorf("%w: %s must be a scalar", errBadBody, k)
			}
		}
		return out, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, errBadBody
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, errBadBody
	}
	out := make(fields, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}
