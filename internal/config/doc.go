// Package config provides configuration structures and utilities for linkcheck.
// It defines the fetch, rendering and report settings of a check, the
// per-site overrides read from .linkcheck files and the environment
// overrides read from LINKCHECK_* variables.
package config
