package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	choiceSeparatorConstant            = "|"
	choiceUsageTemplateConstant        = "%s (%s)"
	choiceInvalidValueTemplateConstant = "invalid value %q; expected one of %s"
	choiceTypeNameConstant             = "string"
)

// AddChoiceFlag registers a string flag restricted to choices, matched case-insensitively.
// The choices are also offered as shell completions.
func AddChoiceFlag(command *cobra.Command, target *string, name string, defaultChoice string, choices []string, usage string) {
	if command == nil || target == nil || len(name) == 0 {
		return
	}

	*target = normalizeChoice(defaultChoice)
	command.Flags().Var(&choiceValue{target: target, choices: choices}, name, fmt.Sprintf(choiceUsageTemplateConstant, usage, strings.Join(choices, choiceSeparatorConstant)))
	_ = command.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
}

type choiceValue struct {
	target  *string
	choices []string
}

func (value *choiceValue) Set(rawValue string) error {
	candidate := normalizeChoice(rawValue)
	for _, choice := range value.choices {
		if normalizeChoice(choice) == candidate {
			*value.target = candidate
			return nil
		}
	}
	return fmt.Errorf(choiceInvalidValueTemplateConstant, rawValue, strings.Join(value.choices, choiceSeparatorConstant))
}

func (value *choiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceValue) Type() string {
	return choiceTypeNameConstant
}

func normalizeChoice(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
