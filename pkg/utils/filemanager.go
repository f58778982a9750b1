// =============================================================================
// Catalog Seeder - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a generated dump:
//   - Directory management
//   - Writing the dump without leaving partial files behind
//   - Output archival (a named copy of every dump written)
//   - Archive file naming
//
// ARCHIVAL STRATEGY:
//   - The dump stays at its configured output path
//   - A copy is written to the archive directory, optionally under
//     date-based subdirectories (archive/2024/01/15/...)
//   - Failed runs write nothing, so nothing is archived
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the seeder.
type FileManager struct {
	// OutputArchiveDir is the directory for archived dumps. Archival is
	// disabled when empty.
	OutputArchiveDir string

	// ArchiveNameFormat names archived copies; see GenerateArchiveName.
	ArchiveNameFormat string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/initial-data_20240115_143022_<uuid>.sql
	UseTimestampSubdirs bool

	// now supplies archive timestamps; see WithClock.
	now func() time.Time
}

// NewFileManager creates a FileManager archiving into outputArchiveDir.
func NewFileManager(outputArchiveDir, archiveNameFormat string) *FileManager {
	return &FileManager{
		OutputArchiveDir:  outputArchiveDir,
		ArchiveNameFormat: archiveNameFormat,
		now:               time.Now,
	}
}

// WithClock replaces the time source used for archive names and date
// subdirectories.
func (fm *FileManager) WithClock(now func() time.Time) *FileManager {
	fm.now = now
	return fm
}

// ArchiveEnabled reports whether dumps should be archived.
func (fm *FileManager) ArchiveEnabled() bool {
	return fm.OutputArchiveDir != ""
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the given directories if they don't exist. Empty
// entries are skipped.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteFileAtomic writes data to path through a temporary file in the same
// directory and renames it into place, so readers never observe a partially
// written dump. Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDirectories(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveOutputFile copies a written dump to the archive directory.
//
// PARAMETERS:
//   - filePath: The path of the dump to archive.
//
// RETURNS:
//   - The path to the archived copy, or "" when archival is disabled.
//   - An error if archival fails.
//
// NOTE: The dump is copied, not moved, so it remains at its output path.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveEnabled() {
		return "", nil
	}

	original := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	fileName := GenerateArchiveName(fm.ArchiveNameFormat, fm.now(), map[string]string{
		"original": original,
	})
	archivePath := filepath.Join(fm.archiveDir(), fileName)

	if err := EnsureDirectories(filepath.Dir(archivePath)); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// archiveDir returns the archive directory for the current time.
func (fm *FileManager) archiveDir() string {
	if !fm.UseTimestampSubdirs {
		return fm.OutputArchiveDir
	}

	now := fm.now()
	return filepath.Join(
		fm.OutputArchiveDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
	)
}

// =============================================================================
// ARCHIVE FILE NAMING
// =============================================================================

// GenerateArchiveName expands an archive file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Date (YYYYMMDD)
//     {time}      - Time (HHMMSS)
//     {original}  - Output file name without extension (via params)
//   - now: The time used for the date placeholders.
//   - params: Additional placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, always ending in ".sql".
//
// EXAMPLE:
//
//	format: "{original}_{timestamp}_{uuid}.sql"
//	params: {"original": "initial-data"}
//	output: "initial-data_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.sql"
func GenerateArchiveName(format string, now time.Time, params map[string]string) string {
	replacements := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", value)
	}

	result := strings.NewReplacer(replacements...).Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), ".sql") {
		result += ".sql"
	}

	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
