package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/basma-app/maintenance_backend/models"
	"github.com/basma-app/maintenance_backend/utils"
)

var allStatuses = []models.RequestStatus{
	models.RequestStatusDraft,
	models.RequestStatusSubmitted,
	models.RequestStatusAssigned,
	models.RequestStatusInProgress,
	models.RequestStatusCompleted,
	models.RequestStatusClosed,
	models.RequestStatusRejected,
}

func TestStatusTransitionGraph(t *testing.T) {
	allowed := map[models.RequestStatus][]models.RequestStatus{
		models.RequestStatusDraft:      {models.RequestStatusSubmitted},
		models.RequestStatusSubmitted:  {models.RequestStatusAssigned, models.RequestStatusRejected},
		models.RequestStatusAssigned:   {models.RequestStatusInProgress, models.RequestStatusRejected},
		models.RequestStatusInProgress: {models.RequestStatusCompleted, models.RequestStatusRejected},
		models.RequestStatusCompleted:  {models.RequestStatusClosed, models.RequestStatusInProgress},
		models.RequestStatusClosed:     {},
		models.RequestStatusRejected:   {models.RequestStatusSubmitted},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := models.ValidateStatusTransition(from, to)
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if want && err != nil {
				t.Errorf("%s -> %s should be allowed, got %v", from, to, err)
			}
			if !want {
				if err == nil {
					t.Errorf("%s -> %s should be rejected", from, to)
				} else if !errors.Is(err, utils.ErrorInvalidTransition) {
					t.Errorf("%s -> %s wrong error: %v", from, to, err)
				}
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, to := range allStatuses {
		if err := models.ValidateStatusTransition(models.RequestStatusClosed, to); err == nil {
			t.Errorf("CLOSED -> %s should be rejected", to)
		}
	}
}

func TestTransitionErrorNamesRule(t *testing.T) {
	err := models.ValidateStatusTransition(models.RequestStatusClosed, models.RequestStatusSubmitted)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "from CLOSED to SUBMITTED") {
		t.Errorf("error should name both statuses, got %q", err.Error())
	}
}

func TestRoleStatusTargets(t *testing.T) {
	allowed := map[models.UserRole][]models.RequestStatus{
		models.UserRoleCustomer:   {models.RequestStatusDraft, models.RequestStatusSubmitted},
		models.UserRoleTechnician: {models.RequestStatusInProgress, models.RequestStatusCompleted},
		models.UserRoleBasmaAdmin: {},
		models.UserRoleMaintenanceAdmin: {
			models.RequestStatusAssigned, models.RequestStatusRejected,
			models.RequestStatusInProgress, models.RequestStatusCompleted,
		},
		models.UserRoleSuperAdmin: allStatuses,
	}

	roles := []models.UserRole{
		models.UserRoleCustomer,
		models.UserRoleTechnician,
		models.UserRoleBasmaAdmin,
		models.UserRoleMaintenanceAdmin,
		models.UserRoleSuperAdmin,
	}
	for _, role := range roles {
		for _, to := range allStatuses {
			err := models.ValidateRoleStatusTarget(role, to)
			want := false
			for _, a := range allowed[role] {
				if a == to {
					want = true
				}
			}
			if want && err != nil {
				t.Errorf("role %s -> %s should be allowed, got %v", role, to, err)
			}
			if !want {
				if err == nil {
					t.Errorf("role %s -> %s should be denied", role, to)
				} else if !errors.Is(err, utils.ErrorRoleNotPermitted) {
					t.Errorf("role %s -> %s wrong error: %v", role, to, err)
				}
			}
		}
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	err := models.ValidateRoleStatusTarget(models.UserRole("AUDITOR"), models.RequestStatusClosed)
	if !errors.Is(err, utils.ErrorRoleNotPermitted) {
		t.Fatalf("unknown role should be denied, got %v", err)
	}
}

func TestRoleErrorNamesRoleAndTarget(t *testing.T) {
	err := models.ValidateRoleStatusTarget(models.UserRoleCustomer, models.RequestStatusClosed)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "CUSTOMER") || !strings.Contains(err.Error(), "CLOSED") {
		t.Errorf("error should name role and target, got %q", err.Error())
	}
}

func TestParseRequestStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, err := models.ParseRequestStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseRequestStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := models.ParseRequestStatus("submitted"); err == nil {
		t.Error("statuses are case sensitive; lowercase should be rejected")
	}
	if _, err := models.ParseRequestStatus("DONE"); err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestParseUserRole(t *testing.T) {
	for _, r := range []string{"CUSTOMER", "TECHNICIAN", "BASMA_ADMIN", "MAINTENANCE_ADMIN", "SUPER_ADMIN"} {
		if _, err := models.ParseUserRole(r); err != nil {
			t.Errorf("ParseUserRole(%q): %v", r, err)
		}
	}
	if _, err := models.ParseUserRole("ADMIN"); err == nil {
		t.Error("unknown role should be rejected")
	}
}
