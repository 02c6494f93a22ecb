package api

import (
	"errors"
	"net/http"

	domrepo "CryptoBrain/internal/domain/repository"
	xhttp "CryptoBrain/pkg/http"
)

// appError maps domain errors onto the HTTP error envelope.
func appError(err error) error {
	switch {
	case errors.Is(err, domrepo.ErrUnknownTimeframe):
		return xhttp.BadRequestErrorf("%v", err).WithError(err)
	case errors.Is(err, domrepo.ErrNoCandles):
		return xhttp.NotFoundErrorf("no candles available").WithError(err)
	case errors.Is(err, domrepo.ErrPatternNotFound):
		return xhttp.NotFoundErrorf("pattern not found").WithError(err)
	case errors.Is(err, domrepo.ErrMiningInProgress):
		return xhttp.ConflictErrorf("a mining pass is already running").WithError(err)
	case errors.Is(err, domrepo.ErrStoreUnavailable):
		return xhttp.NewAppError("ERR_UNAVAILABLE", "", "candle store unavailable", http.StatusServiceUnavailable).WithError(err)
	default:
		return xhttp.InternalErrorf("request failed").WithError(err)
	}
}
