package utils

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant           = "."
	environmentKeySeparatorConstant             = "_"
	configurationReadErrorTemplateConstant      = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant = "failed to parse configuration: %w"
	embeddedConfigurationErrorTemplateConstant  = "failed to merge embedded configuration: %w"
)

// ConfigurationSource names where a configuration is looked up.
type ConfigurationSource struct {
	Name              string
	Type              string
	EnvironmentPrefix string
	SearchPaths       []string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
	// UnknownKeys lists configuration keys that no field of the target consumed.
	UnknownKeys []string
}

// ConfigurationLoader layers embedded defaults, a configuration file and environment variables through Viper.
type ConfigurationLoader struct {
	source                ConfigurationSource
	embeddedConfiguration []byte
}

// NewConfigurationLoader creates a loader for the source. The embedded configuration uses the source type and may be empty.
func NewConfigurationLoader(source ConfigurationSource, embeddedConfiguration []byte) *ConfigurationLoader {
	source.SearchPaths = append([]string(nil), source.SearchPaths...)
	return &ConfigurationLoader{
		source:                source,
		embeddedConfiguration: append([]byte(nil), embeddedConfiguration...),
	}
}

// LoadConfiguration decodes the layered configuration into targetConfiguration.
// An explicit file path wins over the search paths; a missing searched file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance, setupError := loader.newViper(defaultValues)
	if setupError != nil {
		return LoadedConfiguration{}, setupError
	}

	if len(explicitFilePath) > 0 {
		viperInstance.SetConfigFile(explicitFilePath)
	}

	readError := viperInstance.MergeInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if readError != nil && !errors.As(readError, &notFoundError) {
		return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}

	var decodeMetadata mapstructure.Metadata
	unmarshalError := viperInstance.Unmarshal(targetConfiguration, func(decoderConfiguration *mapstructure.DecoderConfig) {
		decoderConfiguration.Metadata = &decodeMetadata
	})
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	unknownKeys := append([]string(nil), decodeMetadata.Unused...)
	sort.Strings(unknownKeys)

	return LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
		UnknownKeys:    unknownKeys,
	}, nil
}

func (loader *ConfigurationLoader) newViper(defaultValues map[string]any) (*viper.Viper, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.source.Name)
	viperInstance.SetConfigType(loader.source.Type)

	if len(loader.embeddedConfiguration) > 0 {
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return nil, fmt.Errorf(embeddedConfigurationErrorTemplateConstant, mergeError)
		}
	}

	for _, searchPath := range loader.source.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.source.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	return viperInstance, nil
}
