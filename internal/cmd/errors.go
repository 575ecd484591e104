package cmd

import (
	"context"
	stderrors "errors"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/guard"
)

// apiError turns a client error into an AdminError with a code and
// suggestions. op names the attempted action, e.g. "delete user".
func (r *runtime) apiError(op string, err error) error {
	if err == nil {
		return nil
	}
	var adminErr *errors.AdminError
	if stderrors.As(err, &adminErr) {
		return err
	}

	var (
		transportErr *api.TransportError
		statusErr    *api.StatusError
		decodeErr    *api.DecodeError
	)
	switch {
	case stderrors.Is(err, guard.ErrMalformedLogin):
		return errors.NewLoginMalformedError(err)
	case api.IsUnauthorized(err):
		return errors.NewSessionRejectedError(err)
	case stderrors.Is(err, api.ErrInvalidInput), stderrors.Is(err, api.ErrInvalidPage):
		return errors.Wrap(errors.ErrCodeInputInvalid, op+" rejected", err)
	case stderrors.Is(err, api.ErrUnsupported):
		return errors.Wrap(errors.ErrCodeUnsupported, op+" is not available", err)
	case stderrors.Is(err, api.ErrNotInContract):
		return errors.Wrap(errors.ErrCodeNotInContract, op+" blocked by strict contract mode", err).
			WithSuggestion("Run 'skilladmin contract' to list the pinned endpoints").
			WithSuggestion("Set api.strict_contract to false to allow other routes")
	case stderrors.As(err, &transportErr), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewServerUnreachableError(r.cfg.API.BaseURL, err)
	case stderrors.As(err, &statusErr):
		// The status and server message are already in the text.
		return errors.NewServerRejectedError(op, statusErr.StatusCode, statusErr.Message, nil)
	case stderrors.As(err, &decodeErr):
		return errors.Wrap(errors.ErrCodeResponseMalformed, op+": unexpected response from the admin API", err)
	}
	return err
}

// loginError maps a failed login. A rejected login is not a rejected
// session, so 401/403 becomes AUTH-002 here rather than AUTH-004.
func (r *runtime) loginError(err error) error {
	var statusErr *api.StatusError
	if stderrors.As(err, &statusErr) {
		return errors.NewLoginFailedError(api.Message(err, ""), nil)
	}
	return r.apiError("login", err)
}
