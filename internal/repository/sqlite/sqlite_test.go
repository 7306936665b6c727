package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gundetect/internal/dto"
	"gundetect/internal/model"
)

// ========================================
// Test Setup Helpers
// ========================================

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func insertAlert(t *testing.T, repo *AlertRepository, filename, source string, ts time.Time) int64 {
	t.Helper()

	id, err := repo.Insert(&model.Alert{
		Filename:  filename,
		Source:    source,
		Timestamp: ts,
		FilePath:  filepath.Join("alerts", filename),
		FileSize:  1024,
	})
	if err != nil {
		t.Fatalf("Insert(%s) failed: %v", filename, err)
	}
	return id
}

// ========================================
// Database Tests
// ========================================

func TestNew_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "alerts.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

// ========================================
// Alert Repository Tests
// ========================================

func TestAlertRepository_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	ts := time.Date(2025, 6, 15, 14, 30, 5, 0, time.UTC)
	id := insertAlert(t, repo, "alert_webcam_20250615_143005.jpg", "webcam", ts)
	if id <= 0 {
		t.Fatalf("Expected positive ID, got %d", id)
	}

	byID, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID == nil || byID.Filename != "alert_webcam_20250615_143005.jpg" {
		t.Fatalf("GetByID returned %+v", byID)
	}
	if byID.Source != "webcam" {
		t.Errorf("Expected source webcam, got %s", byID.Source)
	}
	if !byID.Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, byID.Timestamp)
	}

	byName, err := repo.GetByFilename("alert_webcam_20250615_143005.jpg")
	if err != nil {
		t.Fatalf("GetByFilename failed: %v", err)
	}
	if byName == nil || byName.ID != id {
		t.Errorf("GetByFilename returned %+v, expected id %d", byName, id)
	}
}

func TestAlertRepository_GetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	alert, err := repo.GetByID(42)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if alert != nil {
		t.Errorf("Expected nil alert, got %+v", alert)
	}

	alert, err = repo.GetByFilename("nope.jpg")
	if err != nil {
		t.Fatalf("GetByFilename failed: %v", err)
	}
	if alert != nil {
		t.Errorf("Expected nil alert, got %+v", alert)
	}
}

func TestAlertRepository_InsertReplacesSameFilename(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	ts := time.Date(2025, 6, 15, 14, 30, 5, 0, time.UTC)
	first := insertAlert(t, alerts, "alert_video_20250615_143005.jpg", "video", ts)
	if err := detections.InsertBatch([]model.Detection{{AlertID: first, ClassName: "Gun", Confidence: 80}}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	second := insertAlert(t, alerts, "alert_video_20250615_143005.jpg", "video", ts)
	if second == first {
		t.Errorf("Expected a new id after replace, got %d twice", first)
	}

	count, err := alerts.GetTotalCount(nil)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 alert after replace, got %d", count)
	}

	stale, err := detections.GetByAlertID(first)
	if err != nil {
		t.Fatalf("GetByAlertID failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("Expected detections of replaced alert to be removed, got %d", len(stale))
	}
}

func TestAlertRepository_GetAllFilters(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	day1 := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

	a1 := insertAlert(t, alerts, "alert_webcam_20250614_100000.jpg", "webcam", day1)
	a2 := insertAlert(t, alerts, "alert_video_20250615_100000.jpg", "video", day2)
	insertAlert(t, alerts, "alert_webcam_20250616_100000.jpg", "webcam", day3)

	if err := detections.InsertBatch([]model.Detection{
		{AlertID: a1, ClassName: "Gun", Confidence: 91},
		{AlertID: a2, ClassName: "Gun", Confidence: 75},
		{AlertID: a2, ClassName: "Knife", Confidence: 72},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	tests := []struct {
		name   string
		filter *dto.AlertFilters
		want   []string
	}{
		{
			name:   "no filter newest first",
			filter: &dto.AlertFilters{},
			want:   []string{"alert_webcam_20250616_100000.jpg", "alert_video_20250615_100000.jpg", "alert_webcam_20250614_100000.jpg"},
		},
		{
			name:   "by source",
			filter: &dto.AlertFilters{Source: "webcam"},
			want:   []string{"alert_webcam_20250616_100000.jpg", "alert_webcam_20250614_100000.jpg"},
		},
		{
			name:   "by class",
			filter: &dto.AlertFilters{Class: "Knife"},
			want:   []string{"alert_video_20250615_100000.jpg"},
		},
		{
			name:   "date range",
			filter: &dto.AlertFilters{DateAfter: day2, DateBefore: day2},
			want:   []string{"alert_video_20250615_100000.jpg"},
		},
		{
			name:   "paging",
			filter: &dto.AlertFilters{Limit: 1, Offset: 1},
			want:   []string{"alert_video_20250615_100000.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alerts.GetAll(tt.filter)
			if err != nil {
				t.Fatalf("GetAll failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d alerts, got %d", len(tt.want), len(got))
			}
			for i, alert := range got {
				if alert.Filename != tt.want[i] {
					t.Errorf("alerts[%d] = %s, expected %s", i, alert.Filename, tt.want[i])
				}
			}
		})
	}

	count, err := alerts.GetTotalCount(&dto.AlertFilters{Source: "webcam", Limit: 1})
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected total count 2 ignoring paging, got %d", count)
	}
}

func TestAlertRepository_DateFilterUsesCaptureDay(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)

	// 01:30 in Seoul is still the previous day in UTC.
	kst := time.FixedZone("KST", 9*3600)
	insertAlert(t, alerts, "alert_webcam_20250615_013000.jpg", "webcam", time.Date(2025, 6, 15, 1, 30, 0, 0, kst))

	tests := []struct {
		name string
		day  time.Time
		want int
	}{
		{"capture day", time.Date(2025, 6, 15, 0, 0, 0, 0, kst), 1},
		{"utc day", time.Date(2025, 6, 14, 0, 0, 0, 0, kst), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alerts.GetAll(&dto.AlertFilters{DateAfter: tt.day, DateBefore: tt.day})
			if err != nil {
				t.Fatalf("GetAll failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d alerts, got %d", tt.want, len(got))
			}

			count, err := alerts.GetTotalCount(&dto.AlertFilters{DateAfter: tt.day, DateBefore: tt.day})
			if err != nil {
				t.Fatalf("GetTotalCount failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("Expected total count %d, got %d", tt.want, count)
			}
		})
	}
}

func TestAlertRepository_StatsAndSources(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	now := time.Now().UTC()
	a1 := insertAlert(t, alerts, "a.jpg", "webcam", now)
	a2 := insertAlert(t, alerts, "b.jpg", "video", now)
	insertAlert(t, alerts, "c.jpg", "video", now)

	if err := detections.InsertBatch([]model.Detection{
		{AlertID: a1, ClassName: "Gun", Confidence: 80},
		{AlertID: a2, ClassName: "Gun", Confidence: 90},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	stats, err := alerts.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalAlerts != 3 {
		t.Errorf("Expected 3 alerts, got %d", stats.TotalAlerts)
	}
	if stats.TotalSizeBytes != 3072 {
		t.Errorf("Expected 3072 bytes, got %d", stats.TotalSizeBytes)
	}
	if stats.PerSource["video"] != 2 || stats.PerSource["webcam"] != 1 {
		t.Errorf("Unexpected per-source counts: %v", stats.PerSource)
	}
	if stats.ClassCounts["Gun"] != 2 {
		t.Errorf("Expected 2 Gun detections, got %v", stats.ClassCounts)
	}

	sources, err := alerts.GetSources()
	if err != nil {
		t.Fatalf("GetSources failed: %v", err)
	}
	if len(sources) != 2 || sources[0] != "video" || sources[1] != "webcam" {
		t.Errorf("Unexpected sources: %v", sources)
	}
}

func TestAlertRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	id := insertAlert(t, alerts, "delete_me.jpg", "webcam", time.Now())
	insertAlert(t, alerts, "keep_me.jpg", "webcam", time.Now())
	if err := detections.InsertBatch([]model.Detection{{AlertID: id, ClassName: "Gun", Confidence: 99}}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	if err := alerts.DeleteByFilename("delete_me.jpg"); err != nil {
		t.Fatalf("DeleteByFilename failed: %v", err)
	}
	if err := alerts.DeleteByFilename("never_existed.jpg"); err != nil {
		t.Errorf("Deleting a missing alert should not fail: %v", err)
	}

	exists, err := alerts.Exists("delete_me.jpg")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected deleted alert to be gone")
	}

	remaining, err := detections.GetByAlertID(id)
	if err != nil {
		t.Fatalf("GetByAlertID failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected detections to be deleted, got %d", len(remaining))
	}

	if err := alerts.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	count, err := alerts.GetTotalCount(nil)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty index, got %d", count)
	}
}

// ========================================
// Detection Repository Tests
// ========================================

func TestDetectionRepository_ClassNames(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	id := insertAlert(t, alerts, "classes.jpg", "webcam", time.Now())
	if err := detections.InsertBatch([]model.Detection{
		{AlertID: id, ClassName: "Gun", Confidence: 80, X1: 1, Y1: 2, X2: 3, Y2: 4},
		{AlertID: id, ClassName: "Gun", Confidence: 40},
		{AlertID: id, ClassName: "Knife", Confidence: 75},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	names, err := detections.GetClassNamesByAlertID(id)
	if err != nil {
		t.Fatalf("GetClassNamesByAlertID failed: %v", err)
	}
	if len(names) != 2 || names[0] != "Gun" || names[1] != "Knife" {
		t.Errorf("Unexpected class names: %v", names)
	}

	all, err := detections.GetByAlertID(id)
	if err != nil {
		t.Fatalf("GetByAlertID failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 detections, got %d", len(all))
	}
	if all[0].X1 != 1 || all[0].Y1 != 2 || all[0].X2 != 3 || all[0].Y2 != 4 {
		t.Errorf("Unexpected box: %+v", all[0])
	}

	if err := detections.DeleteByAlertID(id); err != nil {
		t.Fatalf("DeleteByAlertID failed: %v", err)
	}
	classes, err := detections.GetAllClassNames()
	if err != nil {
		t.Fatalf("GetAllClassNames failed: %v", err)
	}
	if len(classes) != 0 {
		t.Errorf("Expected no classes after delete, got %v", classes)
	}
}

func TestDetectionRepository_InsertEmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	detections := NewDetectionRepository(db)

	if err := detections.InsertBatch(nil); err != nil {
		t.Errorf("Empty batch should be a no-op, got %v", err)
	}
}

func TestDatabase_ConcurrentInserts(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			defer func() { done <- true }()

			id, err := alerts.Insert(&model.Alert{
				Filename:  "alert_webcam_" + string(rune('a'+idx)) + ".jpg",
				Source:    "webcam",
				Timestamp: time.Now(),
				FilePath:  "alerts/",
				FileSize:  100,
			})
			if err != nil {
				t.Errorf("Concurrent insert %d failed: %v", idx, err)
				return
			}
			if err := detections.InsertBatch([]model.Detection{{AlertID: id, ClassName: "Gun", Confidence: 80}}); err != nil {
				t.Errorf("Concurrent detection insert %d failed: %v", idx, err)
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	count, _ := alerts.GetTotalCount(&dto.AlertFilters{Class: "Gun"})
	if count != 10 {
		t.Errorf("Expected 10 alerts, got %d", count)
	}
}

func TestDatabase_ForeignKeyCascade(t *testing.T) {
	db := setupTestDB(t)
	alerts := NewAlertRepository(db)
	detections := NewDetectionRepository(db)

	id := insertAlert(t, alerts, "fk_test.jpg", "webcam", time.Now())
	detections.InsertBatch([]model.Detection{
		{AlertID: id, ClassName: "Gun", Confidence: 90},
		{AlertID: id, ClassName: "Gun", Confidence: 75},
	})

	// Bypass the repository so only the ON DELETE CASCADE removes detections.
	if _, err := db.Conn().Exec(`DELETE FROM alerts WHERE id = ?`, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	retrieved, _ := detections.GetByAlertID(id)
	if len(retrieved) != 0 {
		t.Errorf("Expected 0 detections after cascade delete, got %d", len(retrieved))
	}
}

func TestDetectionRepository_InsertForMissingAlertFails(t *testing.T) {
	db := setupTestDB(t)
	detections := NewDetectionRepository(db)

	err := detections.InsertBatch([]model.Detection{{AlertID: 999, ClassName: "Gun", Confidence: 90}})
	if err == nil {
		t.Error("Expected foreign key violation, got nil")
	}
}
