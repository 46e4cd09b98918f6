package app

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"

	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/services"
	"github.com/crewfield/scheduling-service/internal/utils"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var seedWeeklySlots = []dtos.DaySlotsDTO{
	{Weekday: 1, Slots: []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}},
	{Weekday: 2, Slots: []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}},
	{Weekday: 3, Slots: []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}},
	{Weekday: 4, Slots: []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}},
	{Weekday: 5, Slots: []string{"08:00", "09:00", "10:00", "11:00", "13:00"}},
}

/*
SeedTestData creates two technicians and a pair of jobs (one one-off,
one weekly recurring) so a fresh local environment has something to
look at. Safe to run repeatedly: unique violations are ignored.
*/
func SeedTestData(
	ctx context.Context,
	employeeService services.EmployeeService,
	jobService services.JobService,
) error {
	techs := []dtos.CreateEmployeeRequest{
		{
			Name:               "Dale Whitfield",
			Email:              "dale.whitfield@example.com",
			PhoneNumber:        "+15125550184",
			Skills:             []string{"hvac", "electrical"},
			DefaultRadiusMiles: 25,
			StreetAddress:      "401 Brazos St",
			City:               "Austin",
			State:              "TX",
			ZipCode:            "78701",
			Latitude:           30.2655,
			Longitude:          -97.7426,
			WeeklySlots:        seedWeeklySlots,
		},
		{
			Name:               "Marisol Vega",
			Email:              "marisol.vega@example.com",
			PhoneNumber:        "+15125550139",
			Skills:             []string{"plumbing", "inspection"},
			DefaultRadiusMiles: 40,
			StreetAddress:      "1100 Congress Ave",
			City:               "Austin",
			State:              "TX",
			ZipCode:            "78701",
			Latitude:           30.2747,
			Longitude:          -97.7404,
			WeeklySlots:        seedWeeklySlots,
		},
	}

	var techIDs []string
	for _, req := range techs {
		emp, err := employeeService.CreateEmployee(ctx, &req)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
		techIDs = append(techIDs, emp.ID.String())

		startDate := services.DateOnly(time.Now().UTC()).AddDate(0, 0, 1)
		oneOff := &dtos.CreateJobRequest{
			Title:        "Water heater inspection",
			Customer:     "Lakeline Property Group",
			Address:      "2901 S Capital of Texas Hwy, Austin, TX",
			Latitude:     30.2573,
			Longitude:    -97.8060,
			JobType:      "INSPECTION",
			Priority:     "MEDIUM",
			TechnicianID: emp.ID,
			StartDate:    startDate.Format("2006-01-02"),
			StartTime:    "09:00",
			EndTime:      utils.Ptr("10:00"),
		}
		if _, err := jobService.CreateJob(ctx, oneOff); err != nil && !isConflict(err) {
			return err
		}

		recurring := &dtos.CreateJobRequest{
			Title:        "Weekly HVAC filter service",
			Customer:     "Mueller Business Park",
			Address:      "1801 E 51st St, Austin, TX",
			Latitude:     30.3005,
			Longitude:    -97.7045,
			JobType:      "MAINTENANCE",
			Priority:     "LOW",
			TechnicianID: emp.ID,
			StartDate:    startDate.Format("2006-01-02"),
			StartTime:    "13:00",
			EndTime:      utils.Ptr("14:00"),
			IsRecurring:  true,
			RecurringPattern: &dtos.RecurringPatternDTO{
				Frequency:  "WEEKLY",
				Interval:   1,
				DaysOfWeek: []int16{1, 4},
			},
		}
		if _, err := jobService.CreateJob(ctx, recurring); err != nil && !isConflict(err) {
			return err
		}
	}

	utils.Logger.Infof("Seeded %d technicians with starter jobs", len(techIDs))
	return nil
}

func isConflict(err error) bool {
	var cErr *utils.ConflictError
	return errors.As(err, &cErr)
}
