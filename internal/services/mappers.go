package services

import (
	"time"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

// Mapping between storage models and wire DTOs. Dates travel as
// "2006-01-02" and times of day as "15:04".

func patternToModel(d *dtos.RecurringPatternDTO) (*models.RecurringPattern, error) {
	if d == nil {
		return nil, nil
	}
	p := &models.RecurringPattern{
		Frequency:    models.RecurrenceFrequencyType(d.Frequency),
		Interval:     d.Interval,
		DaysOfWeek:   d.DaysOfWeek,
		DayOfMonth:   d.DayOfMonth,
		SkipHolidays: d.SkipHolidays,
	}
	if d.EndDate != nil {
		end, err := time.Parse(constants.DateLayout, *d.EndDate)
		if err != nil {
			return nil, utils.NewValidationError("end_date", "must be 2006-01-02")
		}
		p.EndDate = &end
	}
	for _, s := range d.HolidayExceptions {
		day, err := time.Parse(constants.DateLayout, s)
		if err != nil {
			return nil, utils.NewValidationError("holiday_exceptions", "must be 2006-01-02")
		}
		p.HolidayExceptions = append(p.HolidayExceptions, day)
	}
	return p, nil
}

func patternToDTO(p *models.RecurringPattern) *dtos.RecurringPatternDTO {
	if p == nil {
		return nil
	}
	d := &dtos.RecurringPatternDTO{
		Frequency:    string(p.Frequency),
		Interval:     p.Interval,
		DaysOfWeek:   p.DaysOfWeek,
		DayOfMonth:   p.DayOfMonth,
		SkipHolidays: p.SkipHolidays,
	}
	if p.EndDate != nil {
		d.EndDate = utils.Ptr(p.EndDate.Format(constants.DateLayout))
	}
	for _, day := range p.HolidayExceptions {
		d.HolidayExceptions = append(d.HolidayExceptions, day.Format(constants.DateLayout))
	}
	return d
}

func customFieldsToModel(in []dtos.CustomFieldDTO) []models.CustomField {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.CustomField, 0, len(in))
	for _, f := range in {
		out = append(out, models.CustomField{Key: f.Key, Value: f.Value})
	}
	return out
}

func customFieldsToDTO(in []models.CustomField) []dtos.CustomFieldDTO {
	if len(in) == 0 {
		return nil
	}
	out := make([]dtos.CustomFieldDTO, 0, len(in))
	for _, f := range in {
		out = append(out, dtos.CustomFieldDTO{Key: f.Key, Value: f.Value})
	}
	return out
}

func jobToDTO(j *models.Job) dtos.JobDTO {
	d := dtos.JobDTO{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,

		Customer:  j.Customer,
		Address:   j.Address,
		Latitude:  j.Latitude,
		Longitude: j.Longitude,

		JobType:  string(j.JobType),
		Priority: string(j.Priority),
		Status:   string(j.Status),

		TechnicianID: j.TechnicianID,

		StartDate:       j.StartDate.Format(constants.DateLayout),
		StartTime:       formatTimeOfDay(j.StartTime),
		DurationMinutes: j.DurationMinutes,

		IsRecurring:      j.IsRecurring,
		RecurringPattern: patternToDTO(j.RecurringPattern),
		CustomFields:     customFieldsToDTO(j.CustomFields),

		RowVersion: j.RowVersion,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
	if j.EndTime != nil {
		d.EndTime = utils.Ptr(formatTimeOfDay(*j.EndTime))
	}
	return d
}

func occurrenceToDTO(o *models.JobOccurrence) dtos.OccurrenceDTO {
	d := dtos.OccurrenceDTO{
		ID:         o.ID,
		JobID:      o.JobID,
		EmployeeID: o.EmployeeID,

		ServiceDate: o.ServiceDate.Format(constants.DateLayout),
		StartTime:   formatTimeOfDay(o.StartTime),

		Status:     string(o.Status),
		RowVersion: o.RowVersion,
	}
	if o.EndTime != nil {
		d.EndTime = utils.Ptr(formatTimeOfDay(*o.EndTime))
	}
	return d
}

func employeeToDTO(e *models.Employee) dtos.EmployeeDTO {
	d := dtos.EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,

		Skills: e.Skills,

		DefaultRadiusMiles: e.DefaultRadiusMiles,

		StreetAddress: e.StreetAddress,
		City:          e.City,
		State:         e.State,
		ZipCode:       e.ZipCode,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		TimeZone:      e.TimeZone,

		Status: string(e.Status),

		RowVersion: e.RowVersion,
		CreatedAt:  e.CreatedAt,
	}
	for _, ds := range e.WeeklySlots {
		d.WeeklySlots = append(d.WeeklySlots, dtos.DaySlotsDTO{
			Weekday: int(ds.Weekday),
			Slots:   ds.Slots,
		})
	}
	return d
}

func overrideToDTO(o *models.RadiusOverride) dtos.OverrideDTO {
	return dtos.OverrideDTO{
		ID:         o.ID,
		EmployeeID: o.EmployeeID,

		OverrideRadiusMiles: o.OverrideRadiusMiles,
		Reason:              o.Reason,

		StartTime: o.StartTime,
		EndTime:   o.EndTime,
		IsActive:  o.IsActive,

		RowVersion: o.RowVersion,
		CreatedAt:  o.CreatedAt,
	}
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(constants.DateLayout))
	}
	return out
}
