package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/services"
	"github.com/crewfield/scheduling-service/internal/utils"
)

var jobsValidate = validator.New()

type JobsController struct {
	jobService services.JobService
}

func NewJobsController(js services.JobService) *JobsController {
	return &JobsController{jobService: js}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// ----------------------------------------------------------------
// POST /api/v1/jobs
// ----------------------------------------------------------------
func (c *JobsController) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := jobsValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.jobService.CreateJob(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create job")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/jobs/{jobId}
// ----------------------------------------------------------------
func (c *JobsController) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(r, "jobId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid job id", nil,
		)
		return
	}

	resp, err := c.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		respondServiceError(w, err, "Failed to load job")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/jobs/for-date/{date}
// ----------------------------------------------------------------
func (c *JobsController) ListJobsForDateHandler(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(constants.DateLayout, mux.Vars(r)["date"])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Date must be 2006-01-02", nil,
		)
		return
	}

	resp, svcErr := c.jobService.ListJobsForDate(r.Context(), date)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to list jobs for date")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/jobs/{jobId}/reschedule
// ----------------------------------------------------------------
func (c *JobsController) RescheduleJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(r, "jobId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid job id", nil,
		)
		return
	}

	var req dtos.RescheduleJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := jobsValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.jobService.RescheduleJob(r.Context(), jobID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to reschedule job")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/jobs/{jobId}/cancel
// ----------------------------------------------------------------
func (c *JobsController) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(r, "jobId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid job id", nil,
		)
		return
	}

	var req dtos.CancelJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := jobsValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := c.jobService.CancelJob(r.Context(), jobID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to cancel job")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/jobs/{jobId}/start and /complete
// ----------------------------------------------------------------
func (c *JobsController) StartJobHandler(w http.ResponseWriter, r *http.Request) {
	c.actionHandler(w, r, c.jobService.StartJob, "Failed to start job")
}

func (c *JobsController) CompleteJobHandler(w http.ResponseWriter, r *http.Request) {
	c.actionHandler(w, r, c.jobService.CompleteJob, "Failed to complete job")
}

func (c *JobsController) actionHandler(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, jobID uuid.UUID, rowVersion int64) (*dtos.JobResponse, error),
	fallbackMsg string,
) {
	jobID, ok := pathUUID(r, "jobId")
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid job id", nil,
		)
		return
	}

	var req dtos.JobActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil,
		)
		return
	}
	if err := jobsValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	resp, err := action(r.Context(), jobID, req.RowVersion)
	if err != nil {
		respondServiceError(w, err, fallbackMsg)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
