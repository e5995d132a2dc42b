package utils

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors for the engine's failure taxonomy. Callers match with
// errors.Is; the wrapped message always names the offending rule so API
// responses and tests can assert on the specific cause.
var (
	ErrorRecordNotFound = errors.New("record not found")

	ErrorInvalidTransition         = errors.New("invalid status transition")
	ErrorRoleNotPermitted          = errors.New("role not permitted")
	ErrorInvalidTechnician         = errors.New("invalid technician")
	ErrorNotAvailableForAssignment = errors.New("request not available for assignment")
	ErrorDuplicateIdentifier       = errors.New("duplicate identifier")
	ErrorInvalidIdentifierFormat   = errors.New("invalid identifier format")
	ErrorBuildingRequired          = errors.New("building is required")
	ErrorBuildingInUse             = errors.New("building is in use")
	ErrorInvalidBuildingCode       = errors.New("invalid building code")
	ErrorCategoryInUse             = errors.New("category is in use")
)

// WrapRecordError classifies a row-load failure. Only a genuinely missing
// row becomes ErrorRecordNotFound; anything else (connection loss, lock
// wait timeout, deadlock) is wrapped with the operation name so it
// surfaces as an internal fault and gets logged, never as a 404.
func WrapRecordError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorRecordNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func NewInvalidTransitionError(from string, to string) error {
	return fmt.Errorf("%w: cannot change status from %s to %s", ErrorInvalidTransition, from, to)
}

func NewRoleNotPermittedError(role string, to string) error {
	return fmt.Errorf("%w: role %s cannot update status to %s", ErrorRoleNotPermitted, role, to)
}

func NewInvalidTechnicianError(userId int) error {
	return fmt.Errorf("%w: user %d is not an active technician", ErrorInvalidTechnician, userId)
}

func NewNotAvailableForAssignmentError(status string) error {
	return fmt.Errorf("%w: request with status %s cannot be self-assigned", ErrorNotAvailableForAssignment, status)
}

func NewDuplicateIdentifierError(identifier string) error {
	return fmt.Errorf("%w: identifier %s is already taken", ErrorDuplicateIdentifier, identifier)
}

func NewInvalidIdentifierFormatError(identifier string) error {
	return fmt.Errorf("%w: %q must be 3-20 letters, digits or hyphens", ErrorInvalidIdentifierFormat, identifier)
}

func NewBuildingInUseError(buildingName string) error {
	return fmt.Errorf("%w: requests still reference building %s", ErrorBuildingInUse, buildingName)
}

func NewInvalidBuildingCodeError(code string) error {
	return fmt.Errorf("%w: %q must be 2-10 alphanumeric characters", ErrorInvalidBuildingCode, code)
}

func NewCategoryInUseError(name string) error {
	return fmt.Errorf("%w: requests still reference category %s", ErrorCategoryInUse, name)
}
