package sqlite

import (
	"fmt"

	"gundetect/internal/model"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// InsertBatch adds multiple detections in a single transaction.
func (r *DetectionRepository) InsertBatch(detections []model.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO detections (alert_id, class_name, confidence, x1, y1, x2, y2)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, det := range detections {
		if _, err := stmt.Exec(det.AlertID, det.ClassName, det.Confidence, det.X1, det.Y1, det.X2, det.Y2); err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	return tx.Commit()
}

// GetByAlertID retrieves all detections for an alert.
func (r *DetectionRepository) GetByAlertID(alertID int64) ([]model.Detection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, alert_id, class_name, confidence, x1, y1, x2, y2
		FROM detections WHERE alert_id = ? ORDER BY id
	`, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []model.Detection
	for rows.Next() {
		var det model.Detection
		if err := rows.Scan(&det.ID, &det.AlertID, &det.ClassName, &det.Confidence, &det.X1, &det.Y1, &det.X2, &det.Y2); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, det)
	}

	return detections, rows.Err()
}

// GetClassNamesByAlertID returns the distinct class names recorded for an alert.
func (r *DetectionRepository) GetClassNamesByAlertID(alertID int64) ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT class_name FROM detections WHERE alert_id = ? ORDER BY class_name`, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query class names: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("failed to scan class name: %w", err)
		}
		classes = append(classes, class)
	}

	return classes, rows.Err()
}

// GetAllClassNames returns a list of all unique detected class names.
func (r *DetectionRepository) GetAllClassNames() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT class_name FROM detections ORDER BY class_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, class)
	}

	return classes, rows.Err()
}

// DeleteByAlertID removes all detections for a specific alert.
func (r *DetectionRepository) DeleteByAlertID(alertID int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM detections WHERE alert_id = ?`, alertID); err != nil {
		return fmt.Errorf("failed to delete detections: %w", err)
	}
	return nil
}
