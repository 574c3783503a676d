package pathutils

import (
	"path/filepath"
	"runtime"
	"strings"
)

// RepositoryPathSanitizerConfiguration controls repository path sanitization behavior.
type RepositoryPathSanitizerConfiguration struct {
	// ResolveAbsolutePaths turns relative inputs into cleaned absolute paths, the identity of a tracked repository.
	ResolveAbsolutePaths bool
	// DropDuplicatePaths keeps the first occurrence of each path. Comparison ignores case on Windows.
	DropDuplicatePaths bool
}

// RepositoryPathSanitizer normalizes discovery roots and repository paths typed by the user.
type RepositoryPathSanitizer struct {
	homeExpander  *HomeExpander
	configuration RepositoryPathSanitizerConfiguration
}

// NewRepositoryPathSanitizer constructs a sanitizer that only trims and expands "~".
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithConfiguration(nil, RepositoryPathSanitizerConfiguration{})
}

// NewRepositoryPathSanitizerWithConfiguration constructs a sanitizer; a nil expander uses the user's home directory.
func NewRepositoryPathSanitizerWithConfiguration(homeExpander *HomeExpander, configuration RepositoryPathSanitizerConfiguration) *RepositoryPathSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RepositoryPathSanitizer{homeExpander: homeExpander, configuration: configuration}
}

// Sanitize returns the normalized form of every non-blank candidate, in input order.
// It returns nil when no candidate survives.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePaths []string) []string {
	if sanitizer == nil {
		sanitizer = NewRepositoryPathSanitizer()
	}

	var sanitizedPaths []string
	seen := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		normalizedPath, usable := sanitizer.normalize(candidatePath)
		if !usable {
			continue
		}

		if sanitizer.configuration.DropDuplicatePaths {
			identity := pathIdentity(normalizedPath)
			if _, duplicate := seen[identity]; duplicate {
				continue
			}
			seen[identity] = struct{}{}
		}

		sanitizedPaths = append(sanitizedPaths, normalizedPath)
	}
	return sanitizedPaths
}

func (sanitizer *RepositoryPathSanitizer) normalize(candidatePath string) (string, bool) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", false
	}

	expandedPath := sanitizer.homeExpander.Expand(trimmedPath)
	if !sanitizer.configuration.ResolveAbsolutePaths {
		return expandedPath, true
	}
	if absolutePath, absoluteError := filepath.Abs(expandedPath); absoluteError == nil {
		return absolutePath, true
	}
	return filepath.Clean(expandedPath), true
}

func pathIdentity(path string) string {
	cleanedPath := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		return strings.ToLower(cleanedPath)
	}
	return cleanedPath
}
