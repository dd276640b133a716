package config

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/pkg/migrate"

	_ "modernc.org/sqlite"
)

// Migrations holds the SQLite configuration schema
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationTable tracks the applied configuration schema version
const MigrationTable = "config_schema_migrations"

// NewMigrator returns a migrator for the configuration schema of db
func NewMigrator(db *sql.DB) *migrate.Migrator {
	provider := migrate.NewFSProvider(Migrations, "migrations", MigrationTable)
	return migrate.NewMigrator(db, provider).WithLogger(log.With("component", "config-migrate"))
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider, creating the
// schema if the database is new
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := NewMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	server, err := s.GetServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	analysis, err := s.GetAnalysisConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}
	config.Analysis = *analysis

	datasets, err := s.GetDatasets()
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	config.Datasets = datasets

	ApplyDefaults(config)
	return config, nil
}

// GetServerConfig returns the REST server configuration from the database.
// A missing row yields an empty configuration.
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	query := `
		SELECT tls_cert, tls_key, listen_addr, port, enable_cors, max_upload_bytes
		FROM server_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var server ServerData
	var cert, key, listenAddr sql.NullString
	var port, maxUpload sql.NullInt64

	err := s.db.QueryRow(query).Scan(&cert, &key, &listenAddr, &port, &server.EnableCORS, &maxUpload)
	if err == sql.ErrNoRows {
		return &server, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}

	server.Cert = cert.String
	server.Key = key.String
	server.ListenAddr = listenAddr.String
	if port.Valid {
		server.Port = int(port.Int64)
	}
	if maxUpload.Valid {
		server.MaxUploadBytes = maxUpload.Int64
	}

	return &server, nil
}

// GetAnalysisConfig returns the analysis configuration from the database
func (s *SQLiteProvider) GetAnalysisConfig() (*AnalysisData, error) {
	query := `
		SELECT default_dataset, tangent_half_width, tangent_points
		FROM analysis_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var analysis AnalysisData
	var defaultDataset sql.NullString
	var halfWidth sql.NullFloat64
	var points sql.NullInt64

	err := s.db.QueryRow(query).Scan(&defaultDataset, &halfWidth, &points)
	if err == sql.ErrNoRows {
		return &analysis, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis config: %w", err)
	}

	analysis.DefaultDataset = defaultDataset.String
	analysis.TangentHalfWidth = halfWidth.Float64
	if points.Valid {
		analysis.TangentPoints = int(points.Int64)
	}

	return &analysis, nil
}

// GetDatasets returns dataset configurations, with inline rows in their stored order
func (s *SQLiteProvider) GetDatasets() ([]DatasetData, error) {
	query := `
		SELECT id, name, description, file
		FROM datasets
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var datasets []DatasetData
	for rows.Next() {
		var id int64
		var ds DatasetData
		var description, file sql.NullString

		if err := rows.Scan(&id, &ds.Name, &description, &file); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		ds.Description = description.String
		ds.File = file.String

		ids = append(ids, id)
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	for i, id := range ids {
		datasetRows, err := s.getDatasetRows(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load rows for dataset %s: %w", datasets[i].Name, err)
		}
		datasets[i].Rows = datasetRows
	}

	return datasets, nil
}

func (s *SQLiteProvider) getDatasetRows(datasetID int64) ([]DatasetRow, error) {
	rows, err := s.db.Query(`SELECT label, value FROM dataset_rows WHERE dataset_id = ? ORDER BY position`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DatasetRow
	for rows.Next() {
		var row DatasetRow
		if err := rows.Scan(&row.Label, &row.Value); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Write methods for configuration management

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	// Start transaction
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx, "default")
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	// Clear existing data
	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	if err := s.insertServerConfig(tx, configID, &configData.Server); err != nil {
		return fmt.Errorf("failed to insert server config: %w", err)
	}

	if err := s.insertAnalysisConfig(tx, configID, &configData.Analysis); err != nil {
		return fmt.Errorf("failed to insert analysis config: %w", err)
	}

	for _, ds := range configData.Datasets {
		if err := s.insertDataset(tx, configID, &ds); err != nil {
			return fmt.Errorf("failed to insert dataset %s: %w", ds.Name, err)
		}
	}

	// Commit transaction
	return tx.Commit()
}

func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx, name string) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO configs (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET updated_at = datetime('now')
	`, name)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id)
	return id, err
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM dataset_rows WHERE dataset_id IN (SELECT id FROM datasets WHERE config_id = ?)",
		"DELETE FROM datasets WHERE config_id = ?",
		"DELETE FROM server_configs WHERE config_id = ?",
		"DELETE FROM analysis_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertServerConfig(tx *sql.Tx, configID int64, server *ServerData) error {
	query := `
		INSERT INTO server_configs (config_id, tls_cert, tls_key, listen_addr, port, enable_cors, max_upload_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, configID,
		nullString(server.Cert), nullString(server.Key), nullString(server.ListenAddr),
		server.Port, server.EnableCORS, server.MaxUploadBytes)
	return err
}

func (s *SQLiteProvider) insertAnalysisConfig(tx *sql.Tx, configID int64, analysis *AnalysisData) error {
	query := `
		INSERT INTO analysis_configs (config_id, default_dataset, tangent_half_width, tangent_points)
		VALUES (?, ?, ?, ?)
	`
	_, err := tx.Exec(query, configID,
		nullString(analysis.DefaultDataset), nullFloat64(analysis.TangentHalfWidth), analysis.TangentPoints)
	return err
}

func (s *SQLiteProvider) insertDataset(tx *sql.Tx, configID int64, ds *DatasetData) error {
	result, err := tx.Exec(`INSERT INTO datasets (config_id, name, description, file) VALUES (?, ?, ?, ?)`,
		configID, ds.Name, nullString(ds.Description), nullString(ds.File))
	if err != nil {
		return err
	}

	datasetID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, row := range ds.Rows {
		_, err := tx.Exec(`INSERT INTO dataset_rows (dataset_id, position, label, value) VALUES (?, ?, ?, ?)`,
			datasetID, i, row.Label, row.Value)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Helper functions for handling NULL values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat64(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
