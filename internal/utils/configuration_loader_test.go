package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTMANAHG"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigFileNameConstant        = "config.yaml"
	testExecutableKeyConstant         = "mercurial.executable"
	testMaxParallelKeyConstant        = "dispatch.max_parallel"
	testExecutableEnvironmentConstant = "TESTMANAHG_MERCURIAL_EXECUTABLE"
	testEmbeddedConfigurationConstant = "mercurial:\n  executable: hg-embedded\ndispatch:\n  max_parallel: 2\n"
)

type loaderFixture struct {
	Mercurial loaderMercurialFixture `mapstructure:"mercurial"`
	Dispatch  loaderDispatchFixture  `mapstructure:"dispatch"`
}

type loaderMercurialFixture struct {
	Executable string `mapstructure:"executable"`
}

type loaderDispatchFixture struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	configurationPath := filepath.Join(directory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestConfigurationLoaderLayers(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		embedded               string
		fileContent            string
		environmentExecutable  string
		expectedExecutable     string
		expectedMaxParallel    int
		expectConfigFileRecord bool
	}{
		{
			name:                "defaults_only",
			expectedExecutable:  "hg",
			expectedMaxParallel: 0,
		},
		{
			name:                "embedded_over_defaults",
			embedded:            testEmbeddedConfigurationConstant,
			expectedExecutable:  "hg-embedded",
			expectedMaxParallel: 2,
		},
		{
			name:                   "file_over_embedded",
			embedded:               testEmbeddedConfigurationConstant,
			fileContent:            "mercurial:\n  executable: /opt/hg/bin/hg\n",
			expectedExecutable:     "/opt/hg/bin/hg",
			expectedMaxParallel:    2,
			expectConfigFileRecord: true,
		},
		{
			name:                   "environment_over_file",
			embedded:               testEmbeddedConfigurationConstant,
			fileContent:            "dispatch:\n  max_parallel: 8\n",
			environmentExecutable:  "hg-from-env",
			expectedExecutable:     "hg-from-env",
			expectedMaxParallel:    8,
			expectConfigFileRecord: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			configurationPath := ""
			if len(testCase.fileContent) > 0 {
				configurationPath = writeConfigurationFile(subtest, subtest.TempDir(), testCase.fileContent)
			}
			if len(testCase.environmentExecutable) > 0 {
				subtest.Setenv(testExecutableEnvironmentConstant, testCase.environmentExecutable)
			}

			loader := utils.NewConfigurationLoader(utils.ConfigurationSource{
				Name:              testConfigurationNameConstant,
				Type:              testConfigurationTypeConstant,
				EnvironmentPrefix: testEnvironmentPrefixConstant,
				SearchPaths:       []string{subtest.TempDir()},
			}, []byte(testCase.embedded))

			defaults := map[string]any{testExecutableKeyConstant: "hg", testMaxParallelKeyConstant: 0}
			var loaded loaderFixture
			metadata, loadError := loader.LoadConfiguration(configurationPath, defaults, &loaded)
			require.NoError(subtest, loadError)
			require.Equal(subtest, testCase.expectedExecutable, loaded.Mercurial.Executable)
			require.Equal(subtest, testCase.expectedMaxParallel, loaded.Dispatch.MaxParallel)
			if testCase.expectConfigFileRecord {
				require.Equal(subtest, configurationPath, metadata.ConfigFileUsed)
			} else {
				require.Empty(subtest, metadata.ConfigFileUsed)
			}
			require.Empty(subtest, metadata.UnknownKeys)
		})
	}
}

func TestConfigurationLoaderSearchesPathsInOrder(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	userDirectory := filepath.Join(testInstance.TempDir(), "manahg")
	writeConfigurationFile(testInstance, userDirectory, "mercurial:\n  executable: hg-user\n")

	loader := utils.NewConfigurationLoader(utils.ConfigurationSource{
		Name:              testConfigurationNameConstant,
		Type:              testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
		SearchPaths:       []string{workingDirectory, userDirectory},
	}, nil)

	var loaded loaderFixture
	metadata, loadError := loader.LoadConfiguration("", map[string]any{testExecutableKeyConstant: "hg"}, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "hg-user", loaded.Mercurial.Executable)
	require.Equal(testInstance, filepath.Join(userDirectory, testConfigFileNameConstant), metadata.ConfigFileUsed)

	workingConfigurationPath := writeConfigurationFile(testInstance, workingDirectory, "mercurial:\n  executable: hg-local\n")
	metadata, loadError = loader.LoadConfiguration("", map[string]any{testExecutableKeyConstant: "hg"}, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "hg-local", loaded.Mercurial.Executable)
	require.Equal(testInstance, workingConfigurationPath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderReportsUnknownKeys(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testInstance.TempDir(), "mercurial:\n  executable: hg\n  colour: auto\nthemes: dark\n")

	loader := utils.NewConfigurationLoader(utils.ConfigurationSource{
		Name:              testConfigurationNameConstant,
		Type:              testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
	}, nil)

	var loaded loaderFixture
	metadata, loadError := loader.LoadConfiguration(configurationPath, nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"mercurial.colour", "themes"}, metadata.UnknownKeys)
}

func TestConfigurationLoaderRejectsMalformedFiles(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testInstance.TempDir(), "mercurial: [unterminated\n")

	loader := utils.NewConfigurationLoader(utils.ConfigurationSource{
		Name:              testConfigurationNameConstant,
		Type:              testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
	}, nil)

	var loaded loaderFixture
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &loaded)
	require.ErrorContains(testInstance, loadError, "failed to read configuration")
}
