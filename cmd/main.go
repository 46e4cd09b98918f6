package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/crewfield/scheduling-service/internal/app"
	"github.com/crewfield/scheduling-service/internal/config"
	"github.com/crewfield/scheduling-service/internal/controllers"
	"github.com/crewfield/scheduling-service/internal/middleware"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/routes"
	"github.com/crewfield/scheduling-service/internal/services"
	"github.com/crewfield/scheduling-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize scheduling-service:", err)
	}
	defer application.Close()

	jobRepo := repositories.NewJobRepository(application.DB)
	occurrenceRepo := repositories.NewJobOccurrenceRepository(application.DB)
	employeeRepo := repositories.NewEmployeeRepository(application.DB)
	overrideRepo := repositories.NewRadiusOverrideRepository(application.DB)

	// One lock instance for every occurrence writer.
	scheduleLocks := utils.NewKeyedMutex()

	conflictService := services.NewConflictService(occurrenceRepo)
	availabilityService := services.NewAvailabilityService(employeeRepo, overrideRepo, occurrenceRepo)
	employeeService := services.NewEmployeeService(employeeRepo)
	overrideService := services.NewOverrideService(overrideRepo, employeeRepo)
	jobService := services.NewJobService(
		jobRepo,
		occurrenceRepo,
		employeeRepo,
		conflictService,
		availabilityService,
		scheduleLocks,
	)
	scheduler := services.NewSchedulerService(jobRepo, occurrenceRepo, conflictService, scheduleLocks)

	if cfg.SeedTestData {
		if err := app.SeedTestData(context.Background(), employeeService, jobService); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	healthController := controllers.NewHealthController(application.DB)
	jobsController := controllers.NewJobsController(jobService)
	employeesController := controllers.NewEmployeesController(employeeService, availabilityService)
	overridesController := controllers.NewOverridesController(overrideService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.JobsBase, jobsController.CreateJobHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.JobsForDate, jobsController.ListJobsForDateHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.JobByID, jobsController.GetJobHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.JobReschedule, jobsController.RescheduleJobHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.JobCancel, jobsController.CancelJobHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.JobStart, jobsController.StartJobHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.JobComplete, jobsController.CompleteJobHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.EmployeesBase, employeesController.CreateEmployeeHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.EmployeesBase, employeesController.ListEmployeesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EmployeeByID, employeesController.GetEmployeeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EmployeeStatus, employeesController.UpdateStatusHandler).Methods(http.MethodPatch, http.MethodPut)
	secured.HandleFunc(routes.EmployeeAvailability, employeesController.AvailabilityHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EmployeeEffectiveRadius, employeesController.EffectiveRadiusHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.OverridesBase, overridesController.CreateOverrideHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.OverridesByEmployee, overridesController.ListForEmployeeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.OverrideDeactivate, overridesController.DeactivateOverrideHandler).Methods(http.MethodPost)

	c := cron.New()
	_, dailyErr := c.AddFunc("5 0 * * *", func() {
		if e := scheduler.RunDailyWindowMaintenance(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled daily maintenance failed")
		}
	})
	if dailyErr != nil {
		utils.Logger.WithError(dailyErr).Fatal("Failed to schedule daily maintenance cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("scheduling-service failed to start:", err)
	}
}
