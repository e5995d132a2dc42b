package models_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/models"
	"github.com/basma-app/maintenance_backend/utils"
)

func TestBuildingConfigValidation(t *testing.T) {
	ctx := setupIntegration(t)

	created, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "West Wing",
		BuildingCode: "WW",
		DisplayName:  "West Wing Offices",
	})
	if err != nil {
		t.Fatalf("CreateBuildingConfig: %v", err)
	}
	if created.CurrentSequence != 0 {
		t.Errorf("new config sequence = %d, want 0", created.CurrentSequence)
	}

	// Codes outside 2-10 alphanumerics are rejected.
	for _, code := range []string{"W", "TOOLONGCODE", "W-1"} {
		_, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
			BuildingName: "Another " + code,
			BuildingCode: code,
		})
		if !errors.Is(err, utils.ErrorInvalidBuildingCode) {
			t.Errorf("code %q should be rejected, got %v", code, err)
		}
	}

	// Names and codes are unique across configs.
	if _, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "West Wing",
		BuildingCode: "WW2",
	}); err == nil {
		t.Error("duplicate building name should be rejected")
	}
	if _, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "West Wing Annex",
		BuildingCode: "WW",
	}); err == nil {
		t.Error("duplicate building code should be rejected")
	}

	// Allocation for a pre-registered building uses the admin's code,
	// not a derived one.
	customerCtx := asRole(ctx, 10, models.UserRoleCustomer)
	request, err := models.CreateMaintenanceRequest(customerCtx, &models.NewMaintenanceRequest{
		Title:    "Door jammed",
		Building: "West Wing",
	})
	if err != nil {
		t.Fatalf("CreateMaintenanceRequest: %v", err)
	}
	want := fmt.Sprintf("%02d-WW-001", time.Now().Year()%100)
	if request.CustomIdentifier != want {
		t.Fatalf("identifier = %q, want %q", request.CustomIdentifier, want)
	}
}

func TestBuildingConfigDeleteInUse(t *testing.T) {
	ctx := setupIntegration(t)

	inUse, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "Depot",
		BuildingCode: "DEP",
	})
	if err != nil {
		t.Fatalf("CreateBuildingConfig: %v", err)
	}
	unused, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "Ghost Block",
		BuildingCode: "GB",
	})
	if err != nil {
		t.Fatalf("CreateBuildingConfig(unused): %v", err)
	}

	customerCtx := asRole(ctx, 10, models.UserRoleCustomer)
	if _, err := models.CreateMaintenanceRequest(customerCtx, &models.NewMaintenanceRequest{
		Title:    "Broken gate",
		Building: "Depot",
	}); err != nil {
		t.Fatalf("CreateMaintenanceRequest: %v", err)
	}

	if _, err := models.DeleteBuildingConfig(ctx, inUse.ID); !errors.Is(err, utils.ErrorBuildingInUse) {
		t.Fatalf("delete of referenced building should fail with in-use error, got %v", err)
	}
	// The rejected delete rolls back: the config row survives intact.
	kept, err := models.GetBuildingConfig(ctx, inUse.ID)
	if err != nil {
		t.Fatalf("GetBuildingConfig after rejected delete: %v", err)
	}
	if kept.BuildingName != "Depot" {
		t.Fatalf("config after rejected delete = %q, want Depot", kept.BuildingName)
	}
	if _, err := models.DeleteBuildingConfig(ctx, unused.ID); err != nil {
		t.Fatalf("delete of unused building: %v", err)
	}

	configs, err := models.GetBuildingConfigs(ctx)
	if err != nil {
		t.Fatalf("GetBuildingConfigs: %v", err)
	}
	for _, c := range configs {
		if c.ID == unused.ID {
			t.Error("deleted config still listed")
		}
	}
}

func TestResetBuildingSequenceMidYear(t *testing.T) {
	ctx := setupIntegration(t)

	if _, err := models.CreateBuildingConfig(ctx, &models.NewBuildingConfig{
		BuildingName: "Storage Yard",
		BuildingCode: "SY",
	}); err != nil {
		t.Fatalf("CreateBuildingConfig: %v", err)
	}

	// Seed a non-zero counter without allocating identifiers so the
	// reset path is observable in isolation.
	db := config.GetDB()
	if err := db.Model(&models.BuildingConfig{}).
		Where("building_name = ?", "Storage Yard").
		Updates(map[string]interface{}{"CurrentSequence": 57}).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	reset, err := models.ResetBuildingSequence(ctx, "Storage Yard")
	if err != nil {
		t.Fatalf("ResetBuildingSequence: %v", err)
	}
	if reset.CurrentSequence != 0 {
		t.Fatalf("sequence after reset = %d, want 0", reset.CurrentSequence)
	}
	if reset.LastResetYear != time.Now().Year() {
		t.Fatalf("lastResetYear = %d, want %d", reset.LastResetYear, time.Now().Year())
	}

	if _, err := models.ResetBuildingSequence(ctx, "No Such Building"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("reset of unknown building should be not-found, got %v", err)
	}

	customerCtx := asRole(ctx, 10, models.UserRoleCustomer)
	request, err := models.CreateMaintenanceRequest(customerCtx, &models.NewMaintenanceRequest{
		Title:    "Fence repair",
		Building: "Storage Yard",
	})
	if err != nil {
		t.Fatalf("CreateMaintenanceRequest: %v", err)
	}
	want := fmt.Sprintf("%02d-SY-001", time.Now().Year()%100)
	if request.CustomIdentifier != want {
		t.Fatalf("identifier after reset = %q, want %q", request.CustomIdentifier, want)
	}
}
