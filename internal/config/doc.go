// Package config provides configuration loading for richfmt.
//
// Configuration comes from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A configuration file, TOML or YAML by extension
//  3. Environment variables prefixed with RICHFMT_
//
// # File Format
//
//	[log]
//	level = "debug"
//	file = "/var/log/richfmt.log"
//	format = "json"
//
//	[engine]
//	list_in_paragraph = true
//	separator = "p"
//
//	[output]
//	markers = false
//
//	[script]
//	timeout = "10s"
//	debounce = "250ms"
//
// The same keys are accepted in YAML.
//
// # Environment
//
// Every key maps to RICHFMT_<SECTION>_<KEY>, for example RICHFMT_LOG_LEVEL
// or RICHFMT_ENGINE_LIST_IN_PARAGRAPH.
package config
