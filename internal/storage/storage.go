package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/columns"
	"github.com/pfrederiksen/dira-lottery/internal/lottery"
)

// Storage resolves input and export files under a data directory.
type Storage struct {
	dataDir string
}

// Export is the file the dashboard grid loads.
type Export struct {
	UpdatedAt string           `json:"updated_at"`
	Columns   []columns.Column `json:"columns"`
	Cities    []lottery.City   `json:"cities"`
	Rows      []lottery.Row    `json:"rows"`
}

// New creates a Storage rooted at dataDir. A leading ~/ expands to the home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the expanded data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Path resolves name against the data directory unless it is absolute.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// LoadRecords loads lottery records from a .json or .csv file.
func (s *Storage) LoadRecords(name string) ([]lottery.Record, error) {
	path := s.Path(name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return decodeRecordsJSON(f)
	case ".csv":
		return decodeRecordsCSV(f)
	default:
		return nil, fmt.Errorf("unsupported records format: %q", ext)
	}
}

// LoadLocalHousing loads the local-housing table from a .json, .csv or .html file.
func (s *Storage) LoadLocalHousing(name string) (lottery.LocalHousingTable, error) {
	path := s.Path(name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening local housing table: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return decodeLocalHousingJSON(f)
	case ".csv":
		return decodeLocalHousingCSV(f)
	case ".html", ".htm":
		return decodeLocalHousingHTML(f)
	default:
		return nil, fmt.Errorf("unsupported local housing format: %q", ext)
	}
}

// SaveExport writes the export as indented JSON, creating parent directories.
func (s *Storage) SaveExport(name string, export *Export) error {
	path := s.Path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	export.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	return nil
}

// LoadExport reads an export written by SaveExport.
func (s *Storage) LoadExport(name string) (*Export, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	return &export, nil
}
