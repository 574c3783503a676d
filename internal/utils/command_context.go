package utils

import "context"

type commandEnvironmentKey struct{}

// CommandEnvironment carries the resolved locations a command runs against.
type CommandEnvironment struct {
	// ConfigurationFile is the configuration file that was loaded, empty when only defaults applied.
	ConfigurationFile string
	// StorePath overrides the default repository list location when not empty.
	StorePath string
}

// WithCommandEnvironment returns a child context carrying environment.
func WithCommandEnvironment(parentContext context.Context, environment CommandEnvironment) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, commandEnvironmentKey{}, environment)
}

// CommandEnvironmentFrom returns the environment attached by WithCommandEnvironment.
func CommandEnvironmentFrom(executionContext context.Context) (CommandEnvironment, bool) {
	if executionContext == nil {
		return CommandEnvironment{}, false
	}
	environment, attached := executionContext.Value(commandEnvironmentKey{}).(CommandEnvironment)
	return environment, attached
}
