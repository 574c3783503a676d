package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleAnnotationKeyConstant        = "manahg_toggle"
	toggleTrueLiteralConstant          = "true"
	toggleFalseLiteralConstant         = "false"
	toggleInvalidValueTemplateConstant = "invalid toggle value %q (expected on/off, yes/no, true/false or 1/0)"
	toggleTypeNameConstant             = "toggle"
	longFlagPrefixConstant             = "--"
	argumentTerminatorConstant         = "--"
)

var toggleLiterals = map[string]bool{
	toggleTrueLiteralConstant:  true,
	"yes":                      true,
	"on":                       true,
	"1":                        true,
	toggleFalseLiteralConstant: false,
	"no":                       false,
	"off":                      false,
	"0":                        false,
}

// AddToggleFlag registers a long boolean flag that also accepts an explicit on/off style value.
// A bare flag sets the target to true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil || len(strings.TrimSpace(name)) == 0 {
		return
	}

	*target = defaultValue
	flagSet.Var(&toggleValue{target: target}, name, usage)

	flag := flagSet.Lookup(name)
	flag.NoOptDefVal = toggleTrueLiteralConstant
	flag.DefValue = formatToggle(defaultValue)
	flag.Annotations = map[string][]string{toggleAnnotationKeyConstant: {toggleTrueLiteralConstant}}
}

// NormalizeToggleArguments joins "--name value" into "--name=value" for toggle flags declared anywhere in the command tree.
// Values that are not toggle literals are left as positional arguments.
func NormalizeToggleArguments(rootCommand *cobra.Command, arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	toggleNames := collectToggleNames(rootCommand)

	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}

		flagName, isLongFlag := strings.CutPrefix(argument, longFlagPrefixConstant)
		_, isToggle := toggleNames[flagName]
		if !isLongFlag || !isToggle || index+1 >= len(arguments) {
			normalized = append(normalized, argument)
			continue
		}

		nextArgument := arguments[index+1]
		if _, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; !isLiteral {
			normalized = append(normalized, argument)
			continue
		}

		normalized = append(normalized, argument+"="+nextArgument)
		index++
	}

	return normalized
}

func collectToggleNames(command *cobra.Command) map[string]struct{} {
	names := make(map[string]struct{})
	if command == nil {
		return names
	}

	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Annotations[toggleAnnotationKeyConstant]; isToggle {
			names[flag.Name] = struct{}{}
		}
	}
	command.Flags().VisitAll(visit)
	command.PersistentFlags().VisitAll(visit)

	for _, subcommand := range command.Commands() {
		for name := range collectToggleNames(subcommand) {
			names[name] = struct{}{}
		}
	}
	return names
}

type toggleValue struct {
	target *bool
}

func (value *toggleValue) Set(rawValue string) error {
	parsed, known := toggleLiterals[strings.ToLower(strings.TrimSpace(rawValue))]
	if !known {
		return fmt.Errorf(toggleInvalidValueTemplateConstant, rawValue)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return toggleFalseLiteralConstant
	}
	return formatToggle(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}

func formatToggle(enabled bool) string {
	if enabled {
		return toggleTrueLiteralConstant
	}
	return toggleFalseLiteralConstant
}
