package controllers

import (
	"errors"
	"net/http"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/utils"
)

// respondServiceError maps domain errors to HTTP responses. Anything
// unrecognized is a 500 with the generic message; the real error goes
// to the log, not the client.
func respondServiceError(w http.ResponseWriter, err error, fallbackMsg string) {
	var vErr *utils.ValidationError
	if errors.As(err, &vErr) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, vErr.Error(), nil,
		)
		return
	}

	var cErr *utils.ConflictError
	if errors.As(err, &cErr) {
		dates := make([]string, 0, len(cErr.Dates))
		for _, d := range cErr.Dates {
			dates = append(dates, d.Format(constants.DateLayout))
		}
		utils.RespondErrorWithCode(
			w, http.StatusConflict, utils.ErrCodeConflict,
			"Requested window conflicts with existing bookings",
			map[string]any{"conflicting_dates": dates},
		)
		return
	}

	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil,
		)
	case errors.Is(err, utils.ErrRangeExceeded):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeRangeExceeded,
			"Recurrence has no end date and exceeds the expansion horizon", nil,
		)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(
			w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
			constants.ErrMsgRowVersionConflictRefresh, nil,
		)
	case errors.Is(err, utils.ErrWrongStatus):
		utils.RespondErrorWithCode(
			w, http.StatusConflict, utils.ErrCodeWrongStatus, err.Error(), nil,
		)
	case errors.Is(err, utils.ErrOutOfRadius):
		utils.RespondErrorWithCode(
			w, http.StatusUnprocessableEntity, utils.ErrCodeOutOfRadius, err.Error(), nil,
		)
	case errors.Is(err, utils.ErrEmptyReason):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Reason must not be empty", nil,
		)
	default:
		utils.Logger.WithError(err).Error(fallbackMsg)
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, fallbackMsg, nil, err,
		)
	}
}
