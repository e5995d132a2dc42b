package models

import (
	"errors"
)

type RequestStatus string

const (
	RequestStatusDraft      RequestStatus = "DRAFT"
	RequestStatusSubmitted  RequestStatus = "SUBMITTED"
	RequestStatusAssigned   RequestStatus = "ASSIGNED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusClosed     RequestStatus = "CLOSED"
	RequestStatusRejected   RequestStatus = "REJECTED"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch s {
	case "DRAFT":
		return RequestStatusDraft, nil
	case "SUBMITTED":
		return RequestStatusSubmitted, nil
	case "ASSIGNED":
		return RequestStatusAssigned, nil
	case "IN_PROGRESS":
		return RequestStatusInProgress, nil
	case "COMPLETED":
		return RequestStatusCompleted, nil
	case "CLOSED":
		return RequestStatusClosed, nil
	case "REJECTED":
		return RequestStatusRejected, nil
	}
	return "", errors.New("invalid request status")
}

type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "LOW"
	RequestPriorityMedium RequestPriority = "MEDIUM"
	RequestPriorityHigh   RequestPriority = "HIGH"
	RequestPriorityUrgent RequestPriority = "URGENT"
)

func ParseRequestPriority(s string) (RequestPriority, error) {
	switch s {
	case "LOW":
		return RequestPriorityLow, nil
	case "MEDIUM":
		return RequestPriorityMedium, nil
	case "HIGH":
		return RequestPriorityHigh, nil
	case "URGENT":
		return RequestPriorityUrgent, nil
	}
	return "", errors.New("invalid request priority")
}

type UserRole string

const (
	UserRoleCustomer         UserRole = "CUSTOMER"
	UserRoleTechnician       UserRole = "TECHNICIAN"
	UserRoleBasmaAdmin       UserRole = "BASMA_ADMIN"
	UserRoleMaintenanceAdmin UserRole = "MAINTENANCE_ADMIN"
	UserRoleSuperAdmin       UserRole = "SUPER_ADMIN"
)

func ParseUserRole(s string) (UserRole, error) {
	switch s {
	case "CUSTOMER":
		return UserRoleCustomer, nil
	case "TECHNICIAN":
		return UserRoleTechnician, nil
	case "BASMA_ADMIN":
		return UserRoleBasmaAdmin, nil
	case "MAINTENANCE_ADMIN":
		return UserRoleMaintenanceAdmin, nil
	case "SUPER_ADMIN":
		return UserRoleSuperAdmin, nil
	}
	return "", errors.New("invalid user role")
}

type AssignmentType string

const (
	AssignmentTypeInitial      AssignmentType = "INITIAL_ASSIGNMENT"
	AssignmentTypeReassignment AssignmentType = "REASSIGNMENT"
	AssignmentTypeSelf         AssignmentType = "SELF_ASSIGNMENT"
)
