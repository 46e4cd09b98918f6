package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/services"
	"github.com/crewfield/scheduling-service/internal/utils"
)

var overridesValidate = validator.New()

type OverridesController struct {
	overrideService services.OverrideService
}

func NewOverridesController(os services.OverrideService) *OverridesController {
	return &OverridesController{overrideService: os}
}

// ----------------------------------------------------------------
// POST /api/v1/radius-overrides
// ----------------------------------------------------------------
func (c *OverridesController) CreateOverrideHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := overridesValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.overrideService.CreateOverride(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create radius override")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/radius-overrides/employee/{employeeId}
// ----------------------------------------------------------------
func (c *OverridesController) ListForEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	empID, ok := pathUUID(r, "employeeId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid employee id", nil,
		)
		return
	}

	resp, err := c.overrideService.ListForEmployee(r.Context(), empID)
	if err != nil {
		respondServiceError(w, err, "Failed to list radius overrides")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/radius-overrides/{overrideId}/deactivate
// ----------------------------------------------------------------
func (c *OverridesController) DeactivateOverrideHandler(w http.ResponseWriter, r *http.Request) {
	ovID, ok := pathUUID(r, "overrideId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid override id", nil,
		)
		return
	}

	var req dtos.DeactivateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := overridesValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.overrideService.DeactivateOverride(r.Context(), ovID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to deactivate radius override")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
