package printify

import (
	"errors"
	"fmt"
)

var (
	// ErrNoShops is returned when the account has no shops to bind to.
	ErrNoShops = errors.New("no shops found for this account")
	// ErrShopRequired is returned by shop-scoped calls on a client without a shop id.
	ErrShopRequired = errors.New("shop id is required for this request")
)

// APIError describes a failed call to the remote API. StatusCode is 0 when
// the request never produced a response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("API request failed: %s %s: %d - %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
