package models

import (
	"context"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
)

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCategory) validate(ctx context.Context, id int) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	// name
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	category := Category{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    isActive,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}
	if input.IsActive != nil {
		updates["IsActive"] = input.IsActive
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteCategory(ctx context.Context, id int) (*Category, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any request uses this category
	var count int64
	if err = db.WithContext(ctx).Model(&MaintenanceRequest{}).
		Where("category_id = ?", result.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewCategoryInUseError(result.Name)
	}

	// db action
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetCategories(ctx context.Context) ([]*Category, error) {
	return utils.FetchAllModels[Category](ctx)
}
