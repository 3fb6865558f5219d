package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Reason classifies an error for clients that want more than the status
// code: validation problems (bad cursor, bad filter shape) versus missing
// resources versus everything else.
type Reason string

const (
	ReasonValidation Reason = "validation"
	ReasonNotFound   Reason = "not_found"
	ReasonInternal   Reason = "internal"
)

// Error represents a universal error type between the services.
type Error struct {
	Status  int
	Reason  Reason
	Err     error // The error this wraps
	Details []Detail
}

type Detail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d (%s): %s, details: %v", e.Status, e.Reason, e.Err, e.Details)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type transport struct {
	Message string   `json:"message"`
	Reason  Reason   `json:"reason"`
	Details []Detail `json:"details"`
	Status  int      `json:"status"`
}

func (s *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(transport{
		Message: s.Err.Error(),
		Reason:  s.Reason,
		Details: s.Details,
		Status:  s.Status,
	})
}

func (s *Error) UnmarshalJSON(byts []byte) error {
	t := transport{}
	if err := json.Unmarshal(byts, &t); err != nil {
		return err
	}

	s.Err = errors.New(t.Message)
	s.Reason = t.Reason
	s.Details = t.Details
	s.Status = t.Status
	return nil
}

// E builds an Error out of whatever it's handed: strings and errors become
// the wrapped error, ints the status, Details the detail list, and a Reason
// the classification. An unset reason is derived from the status.
func E(args ...any) *Error {
	ret := &Error{
		Status:  http.StatusInternalServerError,
		Err:     nil,
		Details: nil,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case int:
			ret.Status = arg
		case Reason:
			ret.Reason = arg
		case Detail:
			ret.Details = append(ret.Details, arg)
		case []Detail:
			ret.Details = append(ret.Details, arg...)
		}
	}

	if ret.Reason == "" {
		switch ret.Status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			ret.Reason = ReasonValidation
		case http.StatusNotFound:
			ret.Reason = ReasonNotFound
		default:
			ret.Reason = ReasonInternal
		}
	}

	return ret
}
