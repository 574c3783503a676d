// Package pathutils normalizes user-supplied repository paths and discovery roots.
package pathutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const homeShortcutConstant = "~"

var errHomeDirectoryUnknown = errors.New("home directory unknown")

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading "~" in discovery roots with the user's home directory.
// "~user" forms are left as typed.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander resolves the home directory through the XDG base directory lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(xdgHomeDirectory)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = xdgHomeDirectory
	}
	return &HomeExpander{provider: provider}
}

// Expand returns candidatePath with the home shortcut resolved, or unchanged when it has none.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil {
		return candidatePath
	}

	remainder, hasShortcut := strings.CutPrefix(candidatePath, homeShortcutConstant)
	if !hasShortcut {
		return candidatePath
	}
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory := expander.home()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

func (expander *HomeExpander) home() string {
	expander.resolveOnce.Do(func() {
		if resolved, resolveError := expander.provider(); resolveError == nil {
			expander.homeDirectory = resolved
		}
	})
	return expander.homeDirectory
}

func xdgHomeDirectory() (string, error) {
	if len(xdg.Home) == 0 {
		return "", errHomeDirectoryUnknown
	}
	return xdg.Home, nil
}
