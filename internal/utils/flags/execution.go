// Package flags binds the flags shared by manahg subcommands.
package flags

import "github.com/spf13/cobra"

const (
	// AssumeYesFlagName skips confirmation prompts of destructive batches.
	AssumeYesFlagName      = "yes"
	assumeYesFlagShorthand = "y"
	assumeYesFlagUsage     = "Confirm without prompting"
	// BranchFlagName selects the named branch an update switches to.
	BranchFlagName  = "branch"
	branchFlagUsage = "Named branch to update the working directory to"
	// OutputFlagName selects how command results are rendered.
	OutputFlagName  = "output"
	outputFlagUsage = "Output format"
)

// Output formats accepted by the output flag.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// OutputFormats lists the accepted output formats in usage order.
var OutputFormats = []string{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}

// OutputFlagValues stores the selected output format.
type OutputFlagValues struct {
	Format string
}

// BindOutputFlags attaches the output format flag, defaulting to defaultFormat.
func BindOutputFlags(command *cobra.Command, defaultFormat string) *OutputFlagValues {
	values := &OutputFlagValues{}
	AddChoiceFlag(command, &values.Format, OutputFlagName, defaultFormat, OutputFormats, outputFlagUsage)
	return values
}

// ExecutionFlagValues stores parsed execution flag values.
type ExecutionFlagValues struct {
	AssumeYes bool
}

// BindExecutionFlags attaches --yes/-y to a command that asks before it changes working copies.
func BindExecutionFlags(command *cobra.Command) *ExecutionFlagValues {
	values := &ExecutionFlagValues{}
	command.Flags().BoolVarP(&values.AssumeYes, AssumeYesFlagName, assumeYesFlagShorthand, false, assumeYesFlagUsage)
	return values
}

// BindBranchFlag attaches --branch and returns where its value is stored.
// Callers check Changed to tell an explicit empty value from an absent flag.
func BindBranchFlag(command *cobra.Command) *string {
	var branchName string
	command.Flags().StringVar(&branchName, BranchFlagName, "", branchFlagUsage)
	return &branchName
}
