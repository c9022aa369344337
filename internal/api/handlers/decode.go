package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/domain"
)

// decodeBody decodes a JSON request body into v and writes the error
// response itself when it cannot. allowEmpty accepts a missing body.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		api.HandleError(w, domain.ErrBodyTooLarge)
		return false
	}

	api.Error(w, http.StatusBadRequest, "invalid request body")
	return false
}
