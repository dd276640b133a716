// Package config loads mvtanalyzer configuration from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServerConfig() (*ServerData, error)
	GetAnalysisConfig() (*AnalysisData, error)
	GetDatasets() ([]DatasetData, error)

	IsReadOnly() bool
	Close() error
}

// Defaults applied to any configuration section left empty
const (
	DefaultListenAddr       = "0.0.0.0"
	DefaultPort             = 8080
	DefaultMaxUploadBytes   = 1 << 20
	DefaultDatasetName      = "sample"
	DefaultTangentHalfWidth = 0.8
	DefaultTangentPoints    = 50
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData    `json:"server"`
	Analysis AnalysisData  `json:"analysis"`
	Datasets []DatasetData `json:"datasets,omitempty"`
}

// ServerData holds the REST server configuration
type ServerData struct {
	Cert           string `json:"cert,omitempty"`
	Key            string `json:"key,omitempty"`
	ListenAddr     string `json:"listen_addr,omitempty"`
	Port           int    `json:"port,omitempty"`
	EnableCORS     bool   `json:"enable_cors,omitempty"`
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty"`
}

// AnalysisData holds settings for the analysis outputs
type AnalysisData struct {
	// DefaultDataset is analyzed when no input file or dataset is given
	DefaultDataset string `json:"default_dataset,omitempty"`

	// TangentHalfWidth bounds the chart tangent segments to c±TangentHalfWidth
	TangentHalfWidth float64 `json:"tangent_half_width,omitempty"`

	// TangentPoints is the number of x values sampled along each tangent segment
	TangentPoints int `json:"tangent_points,omitempty"`
}

// DatasetData names a dataset, either inline rows or a CSV file
type DatasetData struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	File        string       `json:"file,omitempty"`
	Rows        []DatasetRow `json:"rows,omitempty"`
}

// DatasetRow is one inline (period, value) row. Value is kept as text so bad entries
// surface as warnings at analysis time rather than as config errors.
type DatasetRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ApplyDefaults fills zero-valued settings with their defaults
func ApplyDefaults(c *ConfigData) {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Analysis.DefaultDataset == "" {
		c.Analysis.DefaultDataset = DefaultDatasetName
	}
	if c.Analysis.TangentHalfWidth <= 0 {
		c.Analysis.TangentHalfWidth = DefaultTangentHalfWidth
	}
	if c.Analysis.TangentPoints < 2 {
		c.Analysis.TangentPoints = DefaultTangentPoints
	}
}

// Default returns a configuration with every default applied
func Default() *ConfigData {
	c := &ConfigData{}
	ApplyDefaults(c)
	return c
}
