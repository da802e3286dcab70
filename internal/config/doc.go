// Package config loads Config from an optional config file and TASKS_*
// environment variables through viper, fills defaults and validates the
// result. cmd/server loads it once and hands each component its section.
package config
