package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// detectUnknownFields compares a decoded manifest with the known struct fields.
// Warnings are sorted so output is stable across runs.
func detectUnknownFields(raw any) []string {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	var warnings []string
	known := getJSONFields(reflect.TypeOf(Config{}))
	for key := range root {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	if opts, ok := root["reporterOptions"].(map[string]any); ok {
		knownOpts := getJSONFields(reflect.TypeOf(ReporterOptions{}))
		for key := range opts {
			if !knownOpts[key] {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in reporterOptions (ignored)", key))
			}
		}
	}

	slices.Sort(warnings)
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}
