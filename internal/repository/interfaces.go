package repository

import (
	"gundetect/internal/dto"
	"gundetect/internal/model"
)

// AlertRepository defines the interface for alert index operations.
type AlertRepository interface {
	// Create operations
	Insert(alert *model.Alert) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Alert, error)
	GetByFilename(filename string) (*model.Alert, error)
	GetAll(filter *dto.AlertFilters) ([]model.Alert, error)
	GetTotalCount(filter *dto.AlertFilters) (int, error)
	GetSources() ([]string, error)
	GetStats() (*model.AlertStats, error)
	Exists(filename string) (bool, error)

	// Delete operations
	DeleteByFilename(filename string) error
	DeleteAll() error
}

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	// Create operations
	InsertBatch(detections []model.Detection) error

	// Read operations
	GetByAlertID(alertID int64) ([]model.Detection, error)
	GetClassNamesByAlertID(alertID int64) ([]string, error)
	GetAllClassNames() ([]string, error)

	// Delete operations
	DeleteByAlertID(alertID int64) error
}
