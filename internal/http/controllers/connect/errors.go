package connect

import (
	"errors"

	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
)

// mapError traduce errores del flow controller a AppError.
func mapError(err error) *httperrors.AppError {
	var fe *svc.FlowError
	errors.As(err, &fe)

	detail := func(e *httperrors.AppError) *httperrors.AppError {
		if fe != nil && fe.Detail != "" {
			e = e.WithDetail(fe.Detail)
		}
		return e.WithCause(err)
	}

	switch {
	case errors.Is(err, svc.ErrProviderUnknown), errors.Is(err, svc.ErrProviderDisabled):
		return httperrors.ErrProviderNotFound.WithCause(err)
	case errors.Is(err, svc.ErrInvalidState):
		return detail(httperrors.ErrInvalidState)
	case errors.Is(err, svc.ErrProviderDenied):
		return detail(httperrors.ErrProviderDenied)
	case errors.Is(err, svc.ErrMissingCode):
		return detail(httperrors.ErrMissingCode)
	case errors.Is(err, svc.ErrTokenExchangeFailed):
		e := detail(httperrors.ErrTokenExchangeFailed)
		if fe == nil || !fe.Rejected {
			e = e.WithStatus(502)
		}
		return e
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
