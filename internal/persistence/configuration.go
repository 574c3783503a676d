package persistence

// AppConfiguration is the persisted application state.
type AppConfiguration struct {
	Repositories []string `json:"repositories" mapstructure:"repositories"`
	ThemeIndex   int      `json:"theme_idx" mapstructure:"theme_idx"`
	ShowFullPath bool     `json:"show_full_path" mapstructure:"show_full_path"`
}

// DefaultAppConfiguration returns the configuration used when nothing was persisted.
func DefaultAppConfiguration() AppConfiguration {
	return AppConfiguration{Repositories: []string{}, ThemeIndex: 0, ShowFullPath: true}
}
