package kis

import (
	"errors"
	"fmt"
)

// NetworkError is a transport fault: the request never produced a complete
// HTTP response (dial failures, resets, timeouts, truncated bodies).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a business fault reported by KIS: a non-200 status, rt_cd other
// than "0", or a body that is not the expected JSON.
type APIError struct {
	Status  int
	RtCd    string
	MsgCd   string
	Message string
}

func (e *APIError) Error() string {
	if e.MsgCd != "" || e.RtCd != "" {
		return fmt.Sprintf("KIS API error: status=%d code=%s msg=%s", e.Status, e.MsgCd, e.Message)
	}
	return fmt.Sprintf("KIS API error: status=%d body=%s", e.Status, e.Message)
}

// IsTransportError reports whether err (or anything it wraps) is a
// *NetworkError and therefore worth retrying.
func IsTransportError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
