package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignRequest is the admin assignment path: set assignee, move a
// SUBMITTED request to ASSIGNED, and record both audit trails in one
// transaction. The previous assignee (if any) is kept on the history row.
func AssignRequest(ctx context.Context, requestId int, technicianId int, reason string) (*MaintenanceRequest, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}
	roleStr, _ := utils.GetUserRoleFromContext(ctx)
	role := UserRole(roleStr)

	if role != UserRoleSuperAdmin && role != UserRoleMaintenanceAdmin {
		return nil, fmt.Errorf("%w: role %s cannot assign technicians", utils.ErrorRoleNotPermitted, role)
	}

	if err := validateTechnician(ctx, technicianId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var request MaintenanceRequest
	var fromStatus RequestStatus

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, requestId).Error; err != nil {
			return utils.WrapRecordError("load request", err)
		}
		fromStatus = request.Status

		previousAssignee := request.AssignedToId
		assignmentType := AssignmentTypeInitial
		if previousAssignee != nil {
			assignmentType = AssignmentTypeReassignment
		}

		if err := tx.Model(&request).Updates(map[string]interface{}{
			"AssignedToId": technicianId,
			"AssignedById": userId,
		}).Error; err != nil {
			return fmt.Errorf("assign request: %w", err)
		}
		request.AssignedToId = &technicianId
		request.AssignedById = &userId

		if request.Status == RequestStatusSubmitted {
			if err := ValidateStatusTransition(request.Status, RequestStatusAssigned); err != nil {
				return err
			}
			if err := applyStatusChange(tx, &request, RequestStatusAssigned, "Request assigned to technician", userId); err != nil {
				return err
			}
		}

		return createAssignmentHistory(tx, request.ID, previousAssignee, technicianId, assignmentType, reason, userId)
	})
	if err != nil {
		return nil, err
	}

	dispatchRequestEvent(ctx, RequestEventAssigned, &request, fromStatus, request.Status, reason)

	return &request, nil
}

// SelfAssignRequest lets a technician claim a SUBMITTED or ASSIGNED
// request, including one already assigned to someone else (takeover). The
// status is forced to ASSIGNED; no extra history row is written when it
// already was.
func SelfAssignRequest(ctx context.Context, requestId int) (*MaintenanceRequest, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}
	roleStr, _ := utils.GetUserRoleFromContext(ctx)
	role := UserRole(roleStr)

	if role != UserRoleTechnician {
		return nil, fmt.Errorf("%w: role %s cannot self-assign requests", utils.ErrorRoleNotPermitted, role)
	}

	db := config.GetDB()
	var request MaintenanceRequest
	var fromStatus RequestStatus

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, requestId).Error; err != nil {
			return utils.WrapRecordError("load request", err)
		}
		fromStatus = request.Status

		if request.Status != RequestStatusSubmitted && request.Status != RequestStatusAssigned {
			return utils.NewNotAvailableForAssignmentError(string(request.Status))
		}

		previousAssignee := request.AssignedToId

		if err := tx.Model(&request).Updates(map[string]interface{}{
			"AssignedToId": userId,
			"AssignedById": userId,
		}).Error; err != nil {
			return fmt.Errorf("self-assign request: %w", err)
		}
		request.AssignedToId = &userId
		request.AssignedById = &userId

		if request.Status == RequestStatusSubmitted {
			if err := applyStatusChange(tx, &request, RequestStatusAssigned, "Request self-assigned", userId); err != nil {
				return err
			}
		}

		return createAssignmentHistory(tx, request.ID, previousAssignee, userId, AssignmentTypeSelf, "", userId)
	})
	if err != nil {
		return nil, err
	}

	dispatchRequestEvent(ctx, RequestEventAssigned, &request, fromStatus, request.Status, "Request self-assigned")

	return &request, nil
}

// validateTechnician requires the target user to exist, be active, and
// hold exactly the TECHNICIAN role.
func validateTechnician(ctx context.Context, technicianId int) error {
	user, err := utils.FetchModel[User](ctx, technicianId)
	if err != nil {
		return utils.NewInvalidTechnicianError(technicianId)
	}
	if user.Role != UserRoleTechnician || user.IsActive == nil || !*user.IsActive {
		return utils.NewInvalidTechnicianError(technicianId)
	}
	return nil
}
