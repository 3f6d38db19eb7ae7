// Package config provides configuration loading and the centralized
// filesystem layout for the blpcli tools.
//
// Configuration is merged from three sources in increasing precedence:
// built-in defaults, an optional config.yaml, and BLP_-prefixed
// environment variables. Paths are always resolved relative to the
// executable directory, never the current working directory.
package config
