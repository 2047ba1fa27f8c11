// Package schemas embeds the JSON Schemas for panelscore's YAML files.
package schemas

import _ "embed"

// RubricsSchemaJSON is the schema for rubric files.
//
//go:embed rubrics.schema.json
var RubricsSchemaJSON string

// ProjectSchemaJSON is the schema for .panelscore.yaml.
//
//go:embed project.schema.json
var ProjectSchemaJSON string
