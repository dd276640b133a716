package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Server   ServerYAML    `yaml:"server,omitempty"`
		Analysis AnalysisYAML  `yaml:"analysis,omitempty"`
		Datasets []DatasetYAML `yaml:"datasets,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Server: ServerData{
			Cert:           yamlConfig.Server.Cert,
			Key:            yamlConfig.Server.Key,
			ListenAddr:     yamlConfig.Server.ListenAddr,
			Port:           yamlConfig.Server.Port,
			EnableCORS:     yamlConfig.Server.EnableCORS,
			MaxUploadBytes: yamlConfig.Server.MaxUploadBytes,
		},
		Analysis: AnalysisData{
			DefaultDataset:   yamlConfig.Analysis.DefaultDataset,
			TangentHalfWidth: yamlConfig.Analysis.TangentHalfWidth,
			TangentPoints:    yamlConfig.Analysis.TangentPoints,
		},
		Datasets: make([]DatasetData, len(yamlConfig.Datasets)),
	}

	// Convert datasets
	for i, ds := range yamlConfig.Datasets {
		config.Datasets[i] = DatasetData{
			Name:        ds.Name,
			Description: ds.Description,
			File:        ds.File,
		}
		for _, row := range ds.Rows {
			config.Datasets[i].Rows = append(config.Datasets[i].Rows, DatasetRow{
				Label: row.Period,
				Value: row.Value,
			})
		}
	}

	ApplyDefaults(config)

	y.config = config
	return config, nil
}

// GetServerConfig returns the REST server configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Server, nil
}

// GetAnalysisConfig returns the analysis configuration
func (y *YAMLProvider) GetAnalysisConfig() (*AnalysisData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Analysis, nil
}

// GetDatasets returns the configured datasets
func (y *YAMLProvider) GetDatasets() ([]DatasetData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Datasets, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with YAML tags
type ServerYAML struct {
	Cert           string `yaml:"cert,omitempty"`
	Key            string `yaml:"key,omitempty"`
	ListenAddr     string `yaml:"listen-addr,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	EnableCORS     bool   `yaml:"enable-cors,omitempty"`
	MaxUploadBytes int64  `yaml:"max-upload-bytes,omitempty"`
}

type AnalysisYAML struct {
	DefaultDataset   string  `yaml:"default-dataset,omitempty"`
	TangentHalfWidth float64 `yaml:"tangent-half-width,omitempty"`
	TangentPoints    int     `yaml:"tangent-points,omitempty"`
}

type DatasetYAML struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	File        string           `yaml:"file,omitempty"`
	Rows        []DatasetRowYAML `yaml:"rows,omitempty"`
}

// DatasetRowYAML keeps the value as text; YAML numbers decode into strings as written
type DatasetRowYAML struct {
	Period string `yaml:"period"`
	Value  string `yaml:"value"`
}
