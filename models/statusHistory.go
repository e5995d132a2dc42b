package models

import (
	"context"
	"fmt"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"gorm.io/gorm"
)

// RequestStatusHistory is the append-only audit log of status changes.
// Rows are only ever inserted, inside the same transaction as the status
// write they record; FromStatus is null for the creation entry.
type RequestStatusHistory struct {
	ID          int            `gorm:"primary_key" json:"id"`
	RequestId   int            `gorm:"index;not null" json:"request_id"`
	FromStatus  *RequestStatus `gorm:"size:20" json:"from_status"`
	ToStatus    RequestStatus  `gorm:"size:20;not null" json:"to_status"`
	Reason      string         `gorm:"size:500" json:"reason"`
	ChangedById int            `gorm:"index;not null" json:"changed_by_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func createStatusHistory(tx *gorm.DB, requestId int, fromStatus *RequestStatus, toStatus RequestStatus, reason string, changedById int) error {
	history := RequestStatusHistory{
		RequestId:   requestId,
		FromStatus:  fromStatus,
		ToStatus:    toStatus,
		Reason:      reason,
		ChangedById: changedById,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("create status history: %w", err)
	}
	return nil
}

// GetRequestStatusHistories returns the timeline oldest-first; ordering by
// id matches commit order since rows are only inserted.
func GetRequestStatusHistories(ctx context.Context, requestId int) ([]*RequestStatusHistory, error) {

	db := config.GetDB()
	var results []*RequestStatusHistory

	err := db.WithContext(ctx).Where("request_id = ?", requestId).
		Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
