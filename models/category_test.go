package models_test

import (
	"errors"
	"testing"

	"github.com/basma-app/maintenance_backend/models"
	"github.com/basma-app/maintenance_backend/utils"
)

func TestCategoryDeleteInUse(t *testing.T) {
	ctx := setupIntegration(t)
	customerCtx := asRole(ctx, 10, models.UserRoleCustomer)

	plumbing, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Plumbing"})
	if err != nil {
		t.Fatalf("CreateCategory(Plumbing): %v", err)
	}
	painting, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Painting"})
	if err != nil {
		t.Fatalf("CreateCategory(Painting): %v", err)
	}

	// A request referencing a category pins it.
	if _, err := models.CreateMaintenanceRequest(customerCtx, &models.NewMaintenanceRequest{
		Title:      "Burst pipe",
		Building:   "Depot",
		CategoryId: plumbing.ID,
	}); err != nil {
		t.Fatalf("CreateMaintenanceRequest: %v", err)
	}

	if _, err := models.DeleteCategory(ctx, plumbing.ID); !errors.Is(err, utils.ErrorCategoryInUse) {
		t.Fatalf("delete of referenced category: got %v, want category-in-use", err)
	}

	// An unreferenced category deletes cleanly.
	if _, err := models.DeleteCategory(ctx, painting.ID); err != nil {
		t.Fatalf("DeleteCategory(Painting): %v", err)
	}

	// A request cannot point at a category that does not exist.
	if _, err := models.CreateMaintenanceRequest(customerCtx, &models.NewMaintenanceRequest{
		Title:      "Ghost category",
		Building:   "Depot",
		CategoryId: painting.ID,
	}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("create with deleted category: got %v, want record not found", err)
	}
}
