// Package config provides configuration structures and utilities for pdflinkcheck.
// It defines which PDF documents are checked, how relative local links are
// resolved, how external URLs are probed, and which report format is written.
package config
