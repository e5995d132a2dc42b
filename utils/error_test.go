package utils

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestWrapRecordErrorMissingRow(t *testing.T) {
	err := WrapRecordError("load request", gorm.ErrRecordNotFound)
	if !errors.Is(err, ErrorRecordNotFound) {
		t.Fatalf("missing row should map to record not found, got %v", err)
	}
}

func TestWrapRecordErrorInfrastructureFault(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	err := WrapRecordError("load request", cause)
	if errors.Is(err, ErrorRecordNotFound) {
		t.Fatalf("connection failure must not map to record not found: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped error should keep the cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "load request") {
		t.Fatalf("wrapped error should name the operation, got %q", err.Error())
	}
}
