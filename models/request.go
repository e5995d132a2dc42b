package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MaintenanceRequest struct {
	ID               int             `gorm:"primary_key" json:"id"`
	CustomIdentifier string          `gorm:"size:30;uniqueIndex;not null" json:"custom_identifier"`
	Title            string          `gorm:"size:255;not null" json:"title" binding:"required"`
	Description      string          `gorm:"type:text" json:"description"`
	Priority         RequestPriority `gorm:"type:enum('LOW','MEDIUM','HIGH','URGENT');not null;default:'MEDIUM'" json:"priority"`
	CategoryId       int             `gorm:"index" json:"category_id"`
	Status           RequestStatus   `gorm:"type:enum('DRAFT','SUBMITTED','ASSIGNED','IN_PROGRESS','COMPLETED','CLOSED','REJECTED');not null" json:"status"`
	Building         string          `gorm:"size:100;index;not null" json:"building" binding:"required"`
	Location         string          `gorm:"size:255" json:"location"`
	SpecificLocation string          `gorm:"size:255" json:"specific_location"`
	EstimatedCost    decimal.Decimal `gorm:"type:decimal(15,2)" json:"estimated_cost"`
	ScheduledDate    *time.Time      `json:"scheduled_date"`
	CompletedDate    *time.Time      `json:"completed_date"`
	RequestedById    int             `gorm:"index;not null" json:"requested_by_id"`
	AssignedToId     *int            `gorm:"index" json:"assigned_to_id"`
	AssignedById     *int            `json:"assigned_by_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	StatusHistories     []RequestStatusHistory     `gorm:"foreignKey:RequestId" json:"status_histories,omitempty"`
	AssignmentHistories []RequestAssignmentHistory `gorm:"foreignKey:RequestId" json:"assignment_histories,omitempty"`
}

type NewMaintenanceRequest struct {
	Title            string          `json:"title" validate:"required,max=255"`
	Description      string          `json:"description"`
	Priority         RequestPriority `json:"priority"`
	CategoryId       int             `json:"category_id"`
	Building         string          `json:"building" validate:"required,max=100"`
	Location         string          `json:"location"`
	SpecificLocation string          `json:"specific_location"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	ScheduledDate    *time.Time      `json:"scheduled_date"`
	CustomIdentifier string          `json:"custom_identifier"`
}

// statusTransitions is the full transition graph. A pair absent here is
// rejected regardless of who asks. CLOSED is terminal.
var statusTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusDraft:      {RequestStatusSubmitted},
	RequestStatusSubmitted:  {RequestStatusAssigned, RequestStatusRejected},
	RequestStatusAssigned:   {RequestStatusInProgress, RequestStatusRejected},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusRejected},
	RequestStatusCompleted:  {RequestStatusClosed, RequestStatusInProgress},
	RequestStatusClosed:     {},
	RequestStatusRejected:   {RequestStatusSubmitted},
}

// roleStatusTargets maps a role to the target statuses it may request.
// A role absent from the map is denied by default. Both this check and the
// graph check must pass. Adding a role is a data change, not a code change.
var roleStatusTargets = map[UserRole][]RequestStatus{
	UserRoleCustomer:   {RequestStatusDraft, RequestStatusSubmitted},
	UserRoleTechnician: {RequestStatusInProgress, RequestStatusCompleted},
	UserRoleBasmaAdmin: {},
	UserRoleMaintenanceAdmin: {
		RequestStatusAssigned, RequestStatusRejected,
		RequestStatusInProgress, RequestStatusCompleted,
	},
	UserRoleSuperAdmin: {
		RequestStatusDraft, RequestStatusSubmitted, RequestStatusAssigned,
		RequestStatusInProgress, RequestStatusCompleted, RequestStatusClosed,
		RequestStatusRejected,
	},
}

// ValidateStatusTransition checks the transition graph only.
func ValidateStatusTransition(from RequestStatus, to RequestStatus) error {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return utils.NewInvalidTransitionError(string(from), string(to))
}

// ValidateRoleStatusTarget checks the role permission matrix only.
func ValidateRoleStatusTarget(role UserRole, to RequestStatus) error {
	for _, allowed := range roleStatusTargets[role] {
		if allowed == to {
			return nil
		}
	}
	return utils.NewRoleNotPermittedError(string(role), string(to))
}

func CreateMaintenanceRequest(ctx context.Context, input *NewMaintenanceRequest) (*MaintenanceRequest, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.CategoryId != 0 {
		if err := utils.ValidateResourceId[Category](ctx, input.CategoryId); err != nil {
			return nil, err
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = RequestPriorityMedium
	}

	db := config.GetDB()
	tx := db.Begin()

	identifier, err := AllocateRequestIdentifier(ctx, tx, input.Building, input.CustomIdentifier, userId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	request := MaintenanceRequest{
		CustomIdentifier: identifier,
		Title:            input.Title,
		Description:      input.Description,
		Priority:         priority,
		CategoryId:       input.CategoryId,
		Status:           RequestStatusSubmitted,
		Building:         input.Building,
		Location:         input.Location,
		SpecificLocation: input.SpecificLocation,
		EstimatedCost:    input.EstimatedCost,
		ScheduledDate:    input.ScheduledDate,
		RequestedById:    userId,
	}
	if err := tx.WithContext(ctx).Create(&request).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("create maintenance request: %w", err)
	}

	// The creation history row (no prior status) commits with the request.
	if err := createStatusHistory(tx.WithContext(ctx), request.ID, nil, RequestStatusSubmitted, "Request submitted", userId); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	dispatchRequestEvent(ctx, RequestEventCreated, &request, "", RequestStatusSubmitted, "Request submitted")

	return &request, nil
}

// UpdateRequestStatus applies one role-gated transition. The status write
// and its history row share one transaction; the request row is locked so
// a concurrent writer reloads the committed state and fails the graph
// check instead of overwriting it. Actor identity and role come from ctx.
func UpdateRequestStatus(ctx context.Context, id int, target RequestStatus, reason string) (*MaintenanceRequest, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}
	roleStr, _ := utils.GetUserRoleFromContext(ctx)
	role := UserRole(roleStr)

	db := config.GetDB()
	var request MaintenanceRequest
	var fromStatus RequestStatus

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, id).Error; err != nil {
			return utils.WrapRecordError("load request", err)
		}
		fromStatus = request.Status

		if err := ValidateStatusTransition(fromStatus, target); err != nil {
			return err
		}
		if err := ValidateRoleStatusTarget(role, target); err != nil {
			return err
		}

		return applyStatusChange(tx, &request, target, reason, userId)
	})
	if err != nil {
		return nil, err
	}

	dispatchRequestEvent(ctx, RequestEventStatusChanged, &request, fromStatus, target, reason)

	return &request, nil
}

// applyStatusChange persists the status (and the completedDate invariant)
// plus the matching history row on the caller's transaction. The caller is
// responsible for graph/role validation and for holding the row lock.
func applyStatusChange(tx *gorm.DB, request *MaintenanceRequest, target RequestStatus, reason string, changedById int) error {
	from := request.Status

	var completedDate *time.Time
	if target == RequestStatusCompleted {
		now := time.Now().UTC()
		completedDate = &now
	}

	if err := tx.Model(request).Updates(map[string]interface{}{
		"Status":        target,
		"CompletedDate": completedDate,
	}).Error; err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	request.Status = target
	request.CompletedDate = completedDate

	return createStatusHistory(tx, request.ID, &from, target, reason, changedById)
}

func GetMaintenanceRequest(ctx context.Context, id int) (*MaintenanceRequest, error) {
	return utils.FetchModel[MaintenanceRequest](ctx, id, "StatusHistories", "AssignmentHistories")
}

func GetMaintenanceRequests(ctx context.Context, building *string, status *RequestStatus, assignedToId *int) ([]*MaintenanceRequest, error) {

	db := config.GetDB()
	var results []*MaintenanceRequest

	dbCtx := db.WithContext(ctx)
	if building != nil && len(*building) > 0 {
		dbCtx = dbCtx.Where("building = ?", *building)
	}
	if status != nil && len(*status) > 0 {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if assignedToId != nil && *assignedToId > 0 {
		dbCtx = dbCtx.Where("assigned_to_id = ?", *assignedToId)
	}
	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
