package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gundetect/internal/config"
	"gundetect/internal/logger"
	"gundetect/internal/model"

	"gocv.io/x/gocv"
)

const (
	// VideoSource routes alerts into the video alerts folder.
	VideoSource = "video"
	// FilenameTimeLayout is the timestamp layout embedded in alert filenames.
	FilenameTimeLayout = "20060102_150405"
)

var (
	unsafeSourceChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	alertFilename     = regexp.MustCompile(`^alert_(.*)_(\d{8}_\d{6})\.jpg$`)
)

// AlertStore writes annotated alert frames to disk, one folder per source kind.
type AlertStore struct {
	alertsDir      string
	videoAlertsDir string
	logger         *logger.Logger
}

// NewAlertStore creates the alert folders if they do not exist.
func NewAlertStore(config *config.Config, logger *logger.Logger) (*AlertStore, error) {
	store := &AlertStore{
		alertsDir:      config.AlertsDirectory,
		videoAlertsDir: config.VideoAlertsDirectory(),
		logger:         logger,
	}

	for _, dir := range []string{store.alertsDir, store.videoAlertsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create alert directory %s: %w", dir, err)
		}
	}

	return store, nil
}

// Folder returns the directory alerts from source are written to.
func (s *AlertStore) Folder(source string) string {
	if source == VideoSource {
		return s.videoAlertsDir
	}
	return s.alertsDir
}

// Folders lists every alert directory, base folder first.
func (s *AlertStore) Folders() []string {
	return []string{s.alertsDir, s.videoAlertsDir}
}

// Save writes frame as alert_<source>_<YYYYMMDD_HHMMSS>.jpg. A file with the
// same name from the same second is overwritten.
func (s *AlertStore) Save(frame gocv.Mat, source string, at time.Time) (*model.Alert, error) {
	filename := AlertFilename(source, at)
	fullpath := filepath.Join(s.Folder(source), filename)

	if ok := gocv.IMWrite(fullpath, frame); !ok {
		return nil, fmt.Errorf("failed to write alert image %s", fullpath)
	}

	info, err := os.Stat(fullpath)
	if err != nil {
		return nil, fmt.Errorf("stat alert image %s: %w", fullpath, err)
	}

	s.logger.Info("Saved alert %s (%d bytes)", fullpath, info.Size())

	return &model.Alert{
		Filename:  filename,
		Source:    source,
		Timestamp: at,
		FilePath:  fullpath,
		FileSize:  info.Size(),
	}, nil
}

// Resolve returns the on-disk path of an alert file, searching every folder.
// Names containing path elements are rejected.
func (s *AlertStore) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid alert filename %q", filename)
	}

	for _, dir := range s.Folders() {
		path := filepath.Join(dir, filename)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// Remove deletes an alert file. Missing files are not an error.
func (s *AlertStore) Remove(filename string) error {
	path, err := s.Resolve(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Clear deletes every alert file from all folders and returns how many were removed.
func (s *AlertStore) Clear() (int, error) {
	removed := 0
	for _, dir := range s.Folders() {
		files, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("read alert directory %s: %w", dir, err)
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
				s.logger.Error("Error deleting alert %s: %v", file.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// AlertFilename builds the file name for an alert. Characters outside
// [A-Za-z0-9_-] in source are replaced so the name stays inside its folder.
func AlertFilename(source string, at time.Time) string {
	return fmt.Sprintf("alert_%s_%s.jpg", unsafeSourceChars.ReplaceAllString(source, "_"), at.Format(FilenameTimeLayout))
}

// ParseAlertFilename extracts the source tag and timestamp from an alert file
// name. The timestamp is interpreted in loc.
func ParseAlertFilename(filename string, loc *time.Location) (string, time.Time, error) {
	match := alertFilename.FindStringSubmatch(filename)
	if match == nil {
		return "", time.Time{}, fmt.Errorf("not an alert filename: %s", filename)
	}

	ts, err := time.ParseInLocation(FilenameTimeLayout, match[2], loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid timestamp in %s: %w", filename, err)
	}
	return match[1], ts, nil
}

// Scan lists every alert file in the alert folders as records ready for
// indexing. Files whose names do not follow the alert naming scheme are
// returned in skipped.
func (s *AlertStore) Scan(loc *time.Location) (alerts []model.Alert, skipped []string, err error) {
	for _, dir := range s.Folders() {
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("read alert directory %s: %w", dir, err)
		}

		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) != ".jpg" {
				continue
			}

			source, ts, err := ParseAlertFilename(file.Name(), loc)
			if err != nil {
				skipped = append(skipped, file.Name())
				continue
			}

			info, err := file.Info()
			if err != nil {
				skipped = append(skipped, file.Name())
				continue
			}

			alerts = append(alerts, model.Alert{
				Filename:  file.Name(),
				Source:    source,
				Timestamp: ts,
				FilePath:  filepath.Join(dir, file.Name()),
				FileSize:  info.Size(),
			})
		}
	}
	return alerts, skipped, nil
}
