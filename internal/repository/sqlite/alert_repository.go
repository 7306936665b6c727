package sqlite

import (
	"database/sql"
	"fmt"

	"gundetect/internal/dto"
	"gundetect/internal/model"
)

// AlertRepository implements repository.AlertRepository for SQLite.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new SQLite alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert adds an alert record. An existing record with the same filename is
// replaced together with its detections, matching the overwrite on disk.
func (r *AlertRepository) Insert(alert *model.Alert) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM detections WHERE alert_id IN (SELECT id FROM alerts WHERE filename = ?)
	`, alert.Filename); err != nil {
		return 0, fmt.Errorf("failed to delete previous detections: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM alerts WHERE filename = ?`, alert.Filename); err != nil {
		return 0, fmt.Errorf("failed to delete previous alert: %w", err)
	}

	result, err := tx.Exec(`
		INSERT INTO alerts (filename, source, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?)
	`, alert.Filename, alert.Source, alert.Timestamp, alert.FilePath, alert.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit alert: %w", err)
	}
	return id, nil
}

// GetByID retrieves an alert by its ID. It returns nil when no record matches.
func (r *AlertRepository) GetByID(id int64) (*model.Alert, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var alert model.Alert
	err := r.db.Conn().QueryRow(`
		SELECT id, filename, source, timestamp, filepath, filesize
		FROM alerts WHERE id = ?
	`, id).Scan(&alert.ID, &alert.Filename, &alert.Source, &alert.Timestamp, &alert.FilePath, &alert.FileSize)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// GetByFilename retrieves an alert by its filename. It returns nil when no record matches.
func (r *AlertRepository) GetByFilename(filename string) (*model.Alert, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var alert model.Alert
	err := r.db.Conn().QueryRow(`
		SELECT id, filename, source, timestamp, filepath, filesize
		FROM alerts WHERE filename = ?
	`, filename).Scan(&alert.ID, &alert.Filename, &alert.Source, &alert.Timestamp, &alert.FilePath, &alert.FileSize)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// filterClause builds the WHERE conditions shared by GetAll and GetTotalCount.
func filterClause(filter *dto.AlertFilters) (string, []interface{}) {
	query := ""
	args := []interface{}{}

	if filter == nil {
		return query, args
	}

	if filter.Source != "" {
		query += " AND a.source = ?"
		args = append(args, filter.Source)
	}

	if filter.Class != "" {
		query += " AND d.class_name = ?"
		args = append(args, filter.Class)
	}

	// Timestamps are stored with their own offset; the leading date is the
	// capture-local day, which DATE() would shift to UTC.
	if !filter.DateAfter.IsZero() {
		query += " AND substr(a.timestamp, 1, 10) >= ?"
		args = append(args, filter.DateAfter.Format("2006-01-02"))
	}

	if !filter.DateBefore.IsZero() {
		query += " AND substr(a.timestamp, 1, 10) <= ?"
		args = append(args, filter.DateBefore.Format("2006-01-02"))
	}

	return query, args
}

// GetAll retrieves alerts matching the filter, newest first.
func (r *AlertRepository) GetAll(filter *dto.AlertFilters) ([]model.Alert, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)
	query := `
		SELECT DISTINCT a.id, a.filename, a.source, a.timestamp, a.filepath, a.filesize
		FROM alerts a
		LEFT JOIN detections d ON a.id = d.alert_id
		WHERE 1=1` + where + `
		ORDER BY a.timestamp DESC, a.id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var alert model.Alert
		if err := rows.Scan(&alert.ID, &alert.Filename, &alert.Source, &alert.Timestamp, &alert.FilePath, &alert.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// GetTotalCount returns the number of alerts matching the filter, ignoring paging.
func (r *AlertRepository) GetTotalCount(filter *dto.AlertFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)
	query := `
		SELECT COUNT(DISTINCT a.id)
		FROM alerts a
		LEFT JOIN detections d ON a.id = d.alert_id
		WHERE 1=1` + where

	var count int
	if err := r.db.Conn().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	return count, nil
}

// Exists checks if an alert with the given filename is indexed.
func (r *AlertRepository) Exists(filename string) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM alerts WHERE filename = ?`, filename).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check alert existence: %w", err)
	}
	return count > 0, nil
}

// GetSources returns a list of unique source tags.
func (r *AlertRepository) GetSources() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT source FROM alerts ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// GetStats returns statistics about indexed alerts.
func (r *AlertRepository) GetStats() (*model.AlertStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.AlertStats{
		PerSource:   make(map[string]int),
		ClassCounts: make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&stats.TotalAlerts); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	if err := r.db.Conn().QueryRow(`SELECT COALESCE(SUM(filesize), 0) FROM alerts`).Scan(&stats.TotalSizeBytes); err != nil {
		return nil, fmt.Errorf("failed to sum alert sizes: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT source, COUNT(*) FROM alerts GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to group alerts by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats.PerSource[source] = count
	}

	classRows, err := r.db.Conn().Query(`
		SELECT class_name, COUNT(*) AS cnt
		FROM detections
		GROUP BY class_name
		ORDER BY cnt DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to group detections by class: %w", err)
	}
	defer classRows.Close()

	for classRows.Next() {
		var class string
		var count int
		if err := classRows.Scan(&class, &count); err != nil {
			return nil, err
		}
		stats.ClassCounts[class] = count
	}

	return stats, nil
}

// DeleteByFilename removes an alert and its detections by filename.
func (r *AlertRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	var alertID int64
	err := r.db.Conn().QueryRow(`SELECT id FROM alerts WHERE filename = ?`, filename).Scan(&alertID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get alert id: %w", err)
	}

	if _, err := r.db.Conn().Exec(`DELETE FROM detections WHERE alert_id = ?`, alertID); err != nil {
		return fmt.Errorf("failed to delete detections: %w", err)
	}

	if _, err := r.db.Conn().Exec(`DELETE FROM alerts WHERE id = ?`, alertID); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

// DeleteAll removes all alerts and their detections.
func (r *AlertRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM detections`); err != nil {
		return fmt.Errorf("failed to delete detections: %w", err)
	}

	if _, err := r.db.Conn().Exec(`DELETE FROM alerts`); err != nil {
		return fmt.Errorf("failed to delete alerts: %w", err)
	}

	return nil
}
