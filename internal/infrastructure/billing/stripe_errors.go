package billing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
)

// upstreamError converts an SDK error into a shared.UpstreamError. The Stripe
// message is carried through unchanged.
func upstreamError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *shared.UpstreamError
	if errors.As(err, &ue) {
		return err
	}

	var se *stripe.Error
	if !errors.As(err, &se) {
		return &shared.UpstreamError{
			Provider: ProviderStripe,
			Message:  fmt.Sprintf("stripe: %s failed: %v", op, err),
			Err:      err,
		}
	}

	msg := se.Msg
	if msg == "" {
		msg = fmt.Sprintf("stripe: %s failed", op)
	}
	return &shared.UpstreamError{
		Provider:   ProviderStripe,
		Message:    msg,
		StatusCode: se.HTTPStatusCode,
		Code:       string(se.Code),
		Rejected:   isRejection(se),
		Err:        err,
	}
}

// isRejection reports whether Stripe refused the request itself, as opposed
// to failing to serve it.
func isRejection(se *stripe.Error) bool {
	switch se.HTTPStatusCode {
	case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusNotFound:
		return true
	case 0:
		return se.Type == stripe.ErrorTypeInvalidRequest || se.Type == stripe.ErrorTypeCard
	default:
		return false
	}
}

// IsResourceMissing reports whether err is Stripe's resource_missing
func IsResourceMissing(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.Code == stripe.ErrorCodeResourceMissing
	}
	var ue *shared.UpstreamError
	if errors.As(err, &ue) {
		return ue.Code == string(stripe.ErrorCodeResourceMissing)
	}
	return false
}
