package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/golang/gddo/httputil/header"
)

// MaxBodyBytes bounds every decoded request body.
const MaxBodyBytes = 1 << 20

// MalformedRequestError reports a body that could not be decoded, with the status to answer.
type MalformedRequestError struct {
	Status  int
	Message string
}

func (e *MalformedRequestError) Error() string {
	return e.Message
}

// DecodeJSONBody decodes a single JSON object from the request body into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Header.Get("Content-Type") != "" {
		value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
		if value != "application/json" {
			return &MalformedRequestError{
				Status:  http.StatusUnsupportedMediaType,
				Message: "Content-Type header is not application/json",
			}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON at position %d", syntaxError.Offset)
			return &MalformedRequestError{Status: http.StatusBadRequest, Message: msg}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return &MalformedRequestError{Status: http.StatusBadRequest, Message: "Request body contains badly-formed JSON"}
		case errors.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			return &MalformedRequestError{Status: http.StatusBadRequest, Message: msg}
		case errors.Is(err, io.EOF):
			return &MalformedRequestError{Status: http.StatusBadRequest, Message: "Request body must not be empty"}
		case errors.As(err, &maxBytesError):
			msg := "Request body must not be larger than " + strconv.Itoa(MaxBodyBytes) + " bytes"
			return &MalformedRequestError{Status: http.StatusRequestEntityTooLarge, Message: msg}
		default:
			// decimal fields report their own parse errors
			return &MalformedRequestError{Status: http.StatusBadRequest, Message: "Invalid input"}
		}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &MalformedRequestError{Status: http.StatusBadRequest, Message: "Request body must only contain a single JSON object"}
	}
	return nil
}
