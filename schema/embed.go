// Package schema provides the embedded JSON schema for aqa configuration files.
package schema

import "embed"

// ConfigSchemaName is the file name of the configuration schema inside FS.
const ConfigSchemaName = "aqa.schema.json"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
