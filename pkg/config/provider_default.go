package config

// DefaultProvider serves the built-in defaults when no configuration source exists
type DefaultProvider struct {
	config *ConfigData
}

// NewDefaultProvider creates a provider backed by Default()
func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{config: Default()}
}

// LoadConfig returns a copy of the default configuration
func (d *DefaultProvider) LoadConfig() (*ConfigData, error) {
	c := *d.config
	return &c, nil
}

// GetServerConfig returns the default server configuration
func (d *DefaultProvider) GetServerConfig() (*ServerData, error) {
	s := d.config.Server
	return &s, nil
}

// GetAnalysisConfig returns the default analysis configuration
func (d *DefaultProvider) GetAnalysisConfig() (*AnalysisData, error) {
	a := d.config.Analysis
	return &a, nil
}

// GetDatasets returns no datasets; the built-in sample is registered by the dataset registry
func (d *DefaultProvider) GetDatasets() ([]DatasetData, error) {
	return nil, nil
}

// IsReadOnly returns true
func (d *DefaultProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op
func (d *DefaultProvider) Close() error {
	return nil
}
