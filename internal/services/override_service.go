package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type OverrideService interface {
	CreateOverride(ctx context.Context, req *dtos.CreateOverrideRequest) (*dtos.OverrideDTO, error)
	ListForEmployee(ctx context.Context, employeeID uuid.UUID) (*dtos.ListOverridesResponse, error)
	DeactivateOverride(ctx context.Context, id uuid.UUID, req *dtos.DeactivateOverrideRequest) (*dtos.OverrideDTO, error)
}

type overrideService struct {
	overrideRepo repositories.RadiusOverrideRepository
	employeeRepo repositories.EmployeeRepository
}

func NewOverrideService(
	overrideRepo repositories.RadiusOverrideRepository,
	employeeRepo repositories.EmployeeRepository,
) OverrideService {
	return &overrideService{overrideRepo: overrideRepo, employeeRepo: employeeRepo}
}

func (s *overrideService) CreateOverride(ctx context.Context, req *dtos.CreateOverrideRequest) (*dtos.OverrideDTO, error) {
	// An override is an audited exception; a blank reason defeats that.
	if strings.TrimSpace(req.Reason) == "" {
		return nil, utils.ErrEmptyReason
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", req.EmployeeID, utils.ErrNotFound)
	}

	ov := &models.RadiusOverride{
		ID:         uuid.New(),
		EmployeeID: req.EmployeeID,

		OverrideRadiusMiles: req.OverrideRadiusMiles,
		Reason:              strings.TrimSpace(req.Reason),

		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}
	if err := s.overrideRepo.Create(ctx, ov); err != nil {
		return nil, err
	}

	d := overrideToDTO(ov)
	return &d, nil
}

func (s *overrideService) ListForEmployee(ctx context.Context, employeeID uuid.UUID) (*dtos.ListOverridesResponse, error) {
	ovs, err := s.overrideRepo.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	resp := &dtos.ListOverridesResponse{Results: make([]dtos.OverrideDTO, 0, len(ovs)), Total: len(ovs)}
	for _, ov := range ovs {
		resp.Results = append(resp.Results, overrideToDTO(ov))
	}
	return resp, nil
}

func (s *overrideService) DeactivateOverride(ctx context.Context, id uuid.UUID, req *dtos.DeactivateOverrideRequest) (*dtos.OverrideDTO, error) {
	updated, err := s.overrideRepo.DeactivateAtomic(ctx, id, req.RowVersion)
	if err != nil {
		return nil, mapNoRows(err)
	}
	d := overrideToDTO(updated)
	return &d, nil
}
