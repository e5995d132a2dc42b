package models

import (
	"log"

	"github.com/basma-app/maintenance_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&BuildingConfig{}, &Category{},
		&MaintenanceRequest{}, &RequestStatusHistory{}, &RequestAssignmentHistory{},
		&RequestIdentifier{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
