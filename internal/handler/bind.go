package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/webmatic/api/internal/metrics"
	"github.com/webmatic/api/internal/validation"
)

// maxBodyBytes bounds request bodies; the largest valid form is well below it.
const maxBodyBytes = 64 << 10

// bind decodes the JSON body into a T and runs validate on it. On rejection
// it records the failing fields under form and returns the *validation.Error.
func bind[T any](w http.ResponseWriter, r *http.Request, m *metrics.Metrics, form string, validate func(T) (T, error)) (T, error) {
	var in T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return in, reject(m, form, &validation.Error{Fields: []validation.FieldError{
				{Field: typeErr.Field, Reason: "Type de valeur invalide"},
			}})
		}
		return in, fmt.Errorf("%w: %w", errInvalidJSON, err)
	}

	out, err := validate(in)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return out, reject(m, form, verr)
		}
		return out, err
	}
	return out, nil
}

// reject counts the failed fields of verr under form and returns it.
func reject(m *metrics.Metrics, form string, verr *validation.Error) error {
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	m.ObserveRejection(form, fields)
	return verr
}
