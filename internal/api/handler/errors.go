package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 4 << 10

// WriteError writes err as the API's JSON error body
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// decodeBody reads a JSON request body into v. An empty body leaves v zero.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierr.NewInvalidRequestError("request body too large")
		}
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
