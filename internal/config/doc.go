// Package config provides the build configuration of docepub.
// It defines the documentation source, output and network settings, the
// YAML configuration file with per-site credentials, and the XDG locations
// used for the configuration file and build history.
package config
