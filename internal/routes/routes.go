package routes

// Route paths registered in cmd/main.go. Kept in one place so
// controllers, tests and the router never drift apart.
const (
	Health = "/health"

	JobsBase      = "/api/v1/jobs"
	JobByID       = "/api/v1/jobs/{jobId}"
	JobsForDate   = "/api/v1/jobs/for-date/{date}"
	JobReschedule = "/api/v1/jobs/{jobId}/reschedule"
	JobCancel     = "/api/v1/jobs/{jobId}/cancel"
	JobStart      = "/api/v1/jobs/{jobId}/start"
	JobComplete   = "/api/v1/jobs/{jobId}/complete"

	EmployeesBase           = "/api/v1/employees"
	EmployeeByID            = "/api/v1/employees/{employeeId}"
	EmployeeAvailability    = "/api/v1/employees/{employeeId}/availability/{date}"
	EmployeeEffectiveRadius = "/api/v1/employees/{employeeId}/effective-radius"
	EmployeeStatus          = "/api/v1/employees/{employeeId}/status"

	OverridesBase       = "/api/v1/radius-overrides"
	OverridesByEmployee = "/api/v1/radius-overrides/employee/{employeeId}"
	OverrideDeactivate  = "/api/v1/radius-overrides/{overrideId}/deactivate"
)
