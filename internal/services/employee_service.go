package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req *dtos.CreateEmployeeRequest) (*dtos.EmployeeDTO, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*dtos.EmployeeDTO, error)
	ListEmployees(ctx context.Context) (*dtos.ListEmployeesResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dtos.UpdateEmployeeStatusRequest) (*dtos.EmployeeDTO, error)
}

type employeeService struct {
	employeeRepo repositories.EmployeeRepository
}

func NewEmployeeService(employeeRepo repositories.EmployeeRepository) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo}
}

func (s *employeeService) CreateEmployee(ctx context.Context, req *dtos.CreateEmployeeRequest) (*dtos.EmployeeDTO, error) {
	emp := &models.Employee{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,

		Skills: req.Skills,

		DefaultRadiusMiles: req.DefaultRadiusMiles,

		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,

		Status: models.EmployeeStatusAvailable,
	}
	// Resolve the home timezone once at creation.
	emp.TimeZone = utils.LocationForCoords(req.Latitude, req.Longitude).String()

	for _, ds := range req.WeeklySlots {
		emp.WeeklySlots = append(emp.WeeklySlots, models.DaySlots{
			Weekday: time.Weekday(ds.Weekday),
			Slots:   ds.Slots,
		})
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	d := employeeToDTO(emp)
	return &d, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*dtos.EmployeeDTO, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", id, utils.ErrNotFound)
	}
	d := employeeToDTO(emp)
	return &d, nil
}

func (s *employeeService) ListEmployees(ctx context.Context) (*dtos.ListEmployeesResponse, error) {
	emps, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dtos.ListEmployeesResponse{Results: make([]dtos.EmployeeDTO, 0, len(emps)), Total: len(emps)}
	for _, emp := range emps {
		resp.Results = append(resp.Results, employeeToDTO(emp))
	}
	return resp, nil
}

func (s *employeeService) UpdateStatus(ctx context.Context, id uuid.UUID, req *dtos.UpdateEmployeeStatusRequest) (*dtos.EmployeeDTO, error) {
	updated, err := s.employeeRepo.UpdateStatusAtomic(ctx, id, models.EmployeeStatusType(req.Status), req.RowVersion)
	if err != nil {
		return nil, mapNoRows(err)
	}
	d := employeeToDTO(updated)
	return &d, nil
}
