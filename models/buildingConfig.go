package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuildingConfig owns a building's identifier settings and its
// per-year sequence counter. CurrentSequence only ever increases within
// LastResetYear; it is mutated by the allocator and by admin resets only.
type BuildingConfig struct {
	ID              int       `gorm:"primary_key" json:"id"`
	BuildingName    string    `gorm:"size:100;uniqueIndex;not null" json:"building_name" binding:"required"`
	BuildingCode    string    `gorm:"size:10;uniqueIndex;not null" json:"building_code"`
	DisplayName     string    `gorm:"size:100" json:"display_name"`
	AllowCustomId   *bool     `gorm:"not null;default:false" json:"allow_custom_id"`
	CurrentSequence int       `gorm:"not null;default:0" json:"current_sequence"`
	LastResetYear   int       `gorm:"not null" json:"last_reset_year"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBuildingConfig struct {
	BuildingName  string `json:"building_name" validate:"required,max=100"`
	BuildingCode  string `json:"building_code" validate:"required"`
	DisplayName   string `json:"display_name"`
	AllowCustomId *bool  `json:"allow_custom_id"`
}

var buildingCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

const buildingConfigsCacheKey = "buildingConfigs"

func removeBuildingConfigsCache() {
	if err := config.RemoveRedisKey(buildingConfigsCacheKey); err != nil {
		config.LogError(config.GetLogger(), "models", "removeBuildingConfigsCache", "RemoveRedisKey", nil, err)
	}
}

// validate input for both create & update. (id = 0 for create)

func (input *NewBuildingConfig) validate(ctx context.Context, id int) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	if !buildingCodePattern.MatchString(input.BuildingCode) {
		return utils.NewInvalidBuildingCodeError(input.BuildingCode)
	}
	// name
	if err := utils.ValidateUnique[BuildingConfig](ctx, "building_name", input.BuildingName, id); err != nil {
		return err
	}
	// code: renames must not collide with another building's code
	if err := utils.ValidateUnique[BuildingConfig](ctx, "building_code", input.BuildingCode, id); err != nil {
		return err
	}
	return nil
}

func CreateBuildingConfig(ctx context.Context, input *NewBuildingConfig) (*BuildingConfig, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	allowCustomId := input.AllowCustomId
	if allowCustomId == nil {
		allowCustomId = utils.NewFalse()
	}

	buildingConfig := BuildingConfig{
		BuildingName:  input.BuildingName,
		BuildingCode:  input.BuildingCode,
		DisplayName:   input.DisplayName,
		AllowCustomId: allowCustomId,
		LastResetYear: time.Now().Year(),
		CreatedBy:     userId,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&buildingConfig).Error; err != nil {
		return nil, err
	}

	removeBuildingConfigsCache()

	return &buildingConfig, nil
}

func UpdateBuildingConfig(ctx context.Context, id int, input *NewBuildingConfig) (*BuildingConfig, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	buildingConfig, err := utils.FetchModel[BuildingConfig](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	updates := map[string]interface{}{
		"BuildingName": input.BuildingName,
		"BuildingCode": input.BuildingCode,
		"DisplayName":  input.DisplayName,
	}
	if input.AllowCustomId != nil {
		updates["AllowCustomId"] = input.AllowCustomId
	}
	// db action
	if err := db.WithContext(ctx).Model(buildingConfig).Updates(updates).Error; err != nil {
		return nil, err
	}

	removeBuildingConfigsCache()

	return buildingConfig, nil
}

func DeleteBuildingConfig(ctx context.Context, id int) (*BuildingConfig, error) {

	db := config.GetDB()
	var result BuildingConfig

	// Lock the row so the in-use check and the delete see the same state:
	// a concurrent allocation against this building blocks on the lock.
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&result, id).Error; err != nil {
			return utils.WrapRecordError("load building config", err)
		}

		// Do not delete while any request references the building
		var count int64
		if err := tx.Model(&MaintenanceRequest{}).
			Where("building = ?", result.BuildingName).Count(&count).Error; err != nil {
			return fmt.Errorf("count building requests: %w", err)
		}
		if count > 0 {
			return utils.NewBuildingInUseError(result.BuildingName)
		}

		// db action
		return tx.Delete(&result).Error
	})
	if err != nil {
		return nil, err
	}

	removeBuildingConfigsCache()

	return &result, nil
}

func GetBuildingConfig(ctx context.Context, id int) (*BuildingConfig, error) {
	return utils.FetchModel[BuildingConfig](ctx, id)
}

// GetBuildingConfigs serves the admin list, redis-cached until the next
// config change or allocation invalidates it.
func GetBuildingConfigs(ctx context.Context) ([]*BuildingConfig, error) {

	var results []*BuildingConfig
	exists, err := config.GetRedisObject(buildingConfigsCacheKey, &results)
	if err != nil {
		return nil, err
	}
	if exists {
		return results, nil
	}

	db := config.GetDB()
	// db query
	if err := db.WithContext(ctx).Order("building_name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(buildingConfigsCacheKey, &results, 0); err != nil {
		return nil, err
	}
	return results, nil
}

// ResetBuildingSequence force-resets a building's counter mid-year. The
// row lock keeps the reset from interleaving with a concurrent allocation.
func ResetBuildingSequence(ctx context.Context, buildingName string) (*BuildingConfig, error) {

	db := config.GetDB()
	var buildingConfig BuildingConfig

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("building_name = ?", buildingName).First(&buildingConfig).Error; err != nil {
			return utils.WrapRecordError("load building config", err)
		}
		if err := tx.Model(&buildingConfig).Updates(map[string]interface{}{
			"CurrentSequence": 0,
			"LastResetYear":   time.Now().Year(),
		}).Error; err != nil {
			return fmt.Errorf("reset building sequence: %w", err)
		}
		buildingConfig.CurrentSequence = 0
		buildingConfig.LastResetYear = time.Now().Year()
		return nil
	})
	if err != nil {
		return nil, err
	}

	removeBuildingConfigsCache()

	return &buildingConfig, nil
}
