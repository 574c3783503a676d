package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/manahg/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	const homeDirectory = "/home/hguser"

	testCases := []struct {
		name     string
		provider pathutils.HomeDirectoryProvider
		input    string
		expected string
	}{
		{name: "bare_tilde", input: "~", expected: homeDirectory},
		{name: "tilde_slash", input: "~/src/alpha", expected: filepath.Join(homeDirectory, "src/alpha")},
		{name: "other_user_untouched", input: "~other/src", expected: "~other/src"},
		{name: "absolute_untouched", input: "/srv/hg", expected: "/srv/hg"},
		{
			name:     "provider_failure_untouched",
			provider: func() (string, error) { return "", errors.New("no home") },
			input:    "~/src",
			expected: "~/src",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return homeDirectory, nil }
			}
			expander := pathutils.NewHomeExpanderWithProvider(provider)
			require.Equal(testInstance, testCase.expected, expander.Expand(testCase.input))
		})
	}
}
