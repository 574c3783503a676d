// Package utils holds the Viper-backed ConfigurationLoader, the zap LoggerFactory
// and the plumbing that carries a CommandEnvironment into manahg commands.
package utils
