package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
	"github.com/bsm/redislock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestIdentifier is the audit copy of every allocation. It stays
// inspectable even if the building's code is renamed later. Sequence 0
// marks an admin-supplied custom identifier.
type RequestIdentifier struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Identifier string    `gorm:"size:30;uniqueIndex;not null" json:"identifier"`
	Building   string    `gorm:"size:100;index" json:"building"`
	Year       int       `json:"year"`
	Sequence   int       `json:"sequence"`
	CreatedBy  int       `json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

var customIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,20}$`)

// AllocateRequestIdentifier reserves the permanent human identifier for a
// request, on the caller's transaction so it commits (or rolls back) with
// the request itself.
//
// With a custom identifier the building counter is bypassed entirely.
// Otherwise the building's sequence row is bumped under a SELECT ... FOR
// UPDATE row lock; two concurrent allocations for the same building
// serialize on that lock, so reading N and writing N+1 cannot be lost. A
// redis lock is taken first as a best-effort contention shortcut across
// instances, but the row lock alone is what makes the increment correct.
func AllocateRequestIdentifier(ctx context.Context, tx *gorm.DB, building string, customIdentifier string, createdBy int) (string, error) {

	if customIdentifier != "" {
		return allocateCustomIdentifier(ctx, tx, building, customIdentifier, createdBy)
	}

	if strings.TrimSpace(building) == "" {
		return "", utils.ErrorBuildingRequired
	}

	if lock := obtainAllocationLock(ctx, building); lock != nil {
		defer releaseAllocationLock(ctx, lock)
	}

	cfg, err := lockBuildingConfig(tx.WithContext(ctx), building, createdBy)
	if err != nil {
		return "", err
	}

	year := time.Now().Year()
	sequence := cfg.CurrentSequence
	if cfg.LastResetYear != year {
		// calendar year advanced since the last allocation
		sequence = 0
	}
	sequence++

	if err := tx.WithContext(ctx).Model(cfg).Updates(map[string]interface{}{
		"CurrentSequence": sequence,
		"LastResetYear":   year,
	}).Error; err != nil {
		return "", fmt.Errorf("bump building sequence: %w", err)
	}

	identifier := formatRequestIdentifier(cfg.BuildingCode, year, sequence)

	record := RequestIdentifier{
		Identifier: identifier,
		Building:   building,
		Year:       year,
		Sequence:   sequence,
		CreatedBy:  createdBy,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("create identifier record: %w", err)
	}

	removeBuildingConfigsCache()

	return identifier, nil
}

func allocateCustomIdentifier(ctx context.Context, tx *gorm.DB, building string, customIdentifier string, createdBy int) (string, error) {

	if !customIdentifierPattern.MatchString(customIdentifier) {
		return "", utils.NewInvalidIdentifierFormatError(customIdentifier)
	}

	// MySQL's default collation makes this match case-insensitively, as
	// does the unique index that backs it up.
	var count int64
	if err := tx.WithContext(ctx).Model(&RequestIdentifier{}).
		Where("identifier = ?", customIdentifier).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", utils.NewDuplicateIdentifierError(customIdentifier)
	}

	record := RequestIdentifier{
		Identifier: customIdentifier,
		Building:   building,
		Year:       time.Now().Year(),
		Sequence:   0, // sentinel: not machine-generated
		CreatedBy:  createdBy,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKeyError(err) {
			return "", utils.NewDuplicateIdentifierError(customIdentifier)
		}
		return "", fmt.Errorf("create identifier record: %w", err)
	}

	return customIdentifier, nil
}

// lockBuildingConfig selects the building's config row FOR UPDATE,
// creating it lazily on first allocation. A concurrent first allocation
// loses the insert on the unique name index and falls back to locking the
// winner's row.
func lockBuildingConfig(tx *gorm.DB, building string, createdBy int) (*BuildingConfig, error) {
	var cfg BuildingConfig

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("building_name = ?", building).First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := deriveUniqueBuildingCode(tx, building)
	if err != nil {
		return nil, err
	}
	cfg = BuildingConfig{
		BuildingName:    building,
		BuildingCode:    code,
		DisplayName:     building,
		AllowCustomId:   utils.NewFalse(),
		CurrentSequence: 0,
		LastResetYear:   time.Now().Year(),
		CreatedBy:       createdBy,
	}
	if err := tx.Create(&cfg).Error; err != nil {
		if isDuplicateKeyError(err) {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("building_name = ?", building).First(&cfg).Error; err != nil {
				return nil, fmt.Errorf("reload building config: %w", err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("create building config: %w", err)
	}
	return &cfg, nil
}

// deriveBuildingCode uppercases the building name, strips everything that
// is not a letter or digit, and truncates to 10 characters.
func deriveBuildingCode(building string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(building) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) > 10 {
		code = code[:10]
	}
	if code == "" {
		code = "BLDG"
	}
	return code
}

// deriveUniqueBuildingCode avoids code collisions between distinct
// building names that derive to the same code ("Tower-1" vs "Tower 1").
func deriveUniqueBuildingCode(tx *gorm.DB, building string) (string, error) {
	base := deriveBuildingCode(building)
	code := base
	for suffix := 2; suffix <= 9; suffix++ {
		var count int64
		if err := tx.Model(&BuildingConfig{}).
			Where("building_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		trimmed := base
		if len(trimmed) > 9 {
			trimmed = trimmed[:9]
		}
		code = fmt.Sprintf("%s%d", trimmed, suffix)
	}
	return "", fmt.Errorf("could not derive a unique building code for %s", building)
}

// formatRequestIdentifier renders {YY}-{CODE}-{SEQ}, sequence zero-padded
// to at least 3 digits; beyond 999 it simply grows.
func formatRequestIdentifier(buildingCode string, year int, sequence int) string {
	return fmt.Sprintf("%02d-%s-%03d", year%100, buildingCode, sequence)
}

func obtainAllocationLock(ctx context.Context, building string) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, "lock:allocate:"+building, 10*time.Second, nil)
	if err == redislock.ErrNotObtained {
		// safe to proceed: the row lock serializes the increment
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "models",
			"building": building,
		}).Warn("could not obtain allocation lock; proceeding with row lock only")
		return nil
	} else if err != nil {
		config.LogError(config.GetLogger(), "models", "obtainAllocationLock", "Obtain", building, err)
		return nil
	}
	return lock
}

func releaseAllocationLock(ctx context.Context, lock *redislock.Lock) {
	if err := lock.Release(ctx); err != nil {
		config.LogError(config.GetLogger(), "models", "releaseAllocationLock", "Release", nil, err)
	}
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// GetRequestIdentifiers lists allocations for a building, newest first.
func GetRequestIdentifiers(ctx context.Context, building *string) ([]*RequestIdentifier, error) {

	db := config.GetDB()
	var results []*RequestIdentifier

	dbCtx := db.WithContext(ctx)
	if building != nil && len(*building) > 0 {
		dbCtx = dbCtx.Where("building = ?", *building)
	}
	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
