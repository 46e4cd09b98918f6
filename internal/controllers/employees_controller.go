package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/services"
	"github.com/crewfield/scheduling-service/internal/utils"
)

var employeesValidate = validator.New()

type EmployeesController struct {
	employeeService services.EmployeeService
	availability    services.AvailabilityService
}

func NewEmployeesController(
	es services.EmployeeService,
	av services.AvailabilityService,
) *EmployeesController {
	return &EmployeesController{employeeService: es, availability: av}
}

// ----------------------------------------------------------------
// POST /api/v1/employees
// ----------------------------------------------------------------
func (c *EmployeesController) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := employeesValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}
	if code, msg := utils.ValidateLatLng(req.Latitude, req.Longitude); code != "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, code, msg, nil)
		return
	}

	resp, err := c.employeeService.CreateEmployee(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create employee")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/employees and /api/v1/employees/{employeeId}
// ----------------------------------------------------------------
func (c *EmployeesController) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.employeeService.ListEmployees(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list employees")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (c *EmployeesController) GetEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	empID, ok := pathUUID(r, "employeeId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid employee id", nil,
		)
		return
	}

	resp, err := c.employeeService.GetEmployee(r.Context(), empID)
	if err != nil {
		respondServiceError(w, err, "Failed to load employee")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// PATCH /api/v1/employees/{employeeId}/status
// ----------------------------------------------------------------
func (c *EmployeesController) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	empID, ok := pathUUID(r, "employeeId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid employee id", nil,
		)
		return
	}

	var req dtos.UpdateEmployeeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := employeesValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.employeeService.UpdateStatus(r.Context(), empID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update employee status")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/employees/{employeeId}/availability/{date}
// ----------------------------------------------------------------
func (c *EmployeesController) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	empID, ok := pathUUID(r, "employeeId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid employee id", nil,
		)
		return
	}
	date, err := time.Parse(constants.DateLayout, mux.Vars(r)["date"])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Date must be 2006-01-02", nil,
		)
		return
	}

	resp, svcErr := c.availability.FreeSlots(r.Context(), empID, date)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to resolve availability")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/employees/{employeeId}/effective-radius?at=RFC3339
// ----------------------------------------------------------------
func (c *EmployeesController) EffectiveRadiusHandler(w http.ResponseWriter, r *http.Request) {
	empID, ok := pathUUID(r, "employeeId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid employee id", nil,
		)
		return
	}

	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "at must be RFC3339", nil,
			)
			return
		}
		at = parsed
	}

	resp, err := c.availability.EffectiveRadius(r.Context(), empID, at)
	if err != nil {
		respondServiceError(w, err, "Failed to resolve effective radius")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
