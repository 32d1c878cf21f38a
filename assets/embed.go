package assets

import (
	_ "embed"
)

// ConfigSchema is the JSON schema config files are validated against before
// decoding.
//
//go:embed config.schema.json
var ConfigSchema []byte
