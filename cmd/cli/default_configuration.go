package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the yaml configuration layered beneath user files.
func EmbeddedDefaultConfiguration() []byte {
	return append([]byte(nil), embeddedDefaultConfigurationContent...)
}
