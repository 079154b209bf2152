package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Build scripts may overwrite embed_config.yaml with site defaults before
// compiling; an external config file and env vars still override it.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
