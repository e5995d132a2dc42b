package models

import (
	"context"
	"fmt"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"gorm.io/gorm"
)

// RequestAssignmentHistory is the append-only audit log of ownership
// changes. FromTechnicianId is null when the request had no assignee.
type RequestAssignmentHistory struct {
	ID               int            `gorm:"primary_key" json:"id"`
	RequestId        int            `gorm:"index;not null" json:"request_id"`
	FromTechnicianId *int           `json:"from_technician_id"`
	ToTechnicianId   int            `gorm:"not null" json:"to_technician_id"`
	AssignmentType   AssignmentType `gorm:"size:30;not null" json:"assignment_type"`
	Reason           string         `gorm:"size:500" json:"reason"`
	AssignedById     int            `gorm:"index;not null" json:"assigned_by_id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func createAssignmentHistory(tx *gorm.DB, requestId int, fromTechnicianId *int, toTechnicianId int, assignmentType AssignmentType, reason string, assignedById int) error {
	history := RequestAssignmentHistory{
		RequestId:        requestId,
		FromTechnicianId: fromTechnicianId,
		ToTechnicianId:   toTechnicianId,
		AssignmentType:   assignmentType,
		Reason:           reason,
		AssignedById:     assignedById,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("create assignment history: %w", err)
	}
	return nil
}

func GetRequestAssignmentHistories(ctx context.Context, requestId int) ([]*RequestAssignmentHistory, error) {

	db := config.GetDB()
	var results []*RequestAssignmentHistory

	err := db.WithContext(ctx).Where("request_id = ?", requestId).
		Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
