// Package validation provides a Laravel-style rule engine used to check
// container descriptors before they become recipes, and the environment
// configuration at bootstrap.
//
// # Overview
//
// Rules are expressed as pipe-separated strings on a map of field names. The
// data is the flattened descriptor: a key is present when the descriptor sets
// the field, and the value is its string form.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "class":  "mailer",
//	    "shared": "true",
//	}, validation.Rules{
//	    "class":  "required_without:closure|prohibits:closure",
//	    "shared": "nullable|boolean",
//	})
//
//	if v.Fails() {
//	    // v.Errors() returns *Errors with Bag map[string][]string
//	}
//
// # Available Rules
//
// Presence rules:
//   - required: field must be present and non-empty
//   - required_without:a,b: field must be present when any of a, b is absent
//   - prohibits:a,b: when present, none of a, b may be present
//   - nullable: absent fields skip the remaining rules
//   - sometimes: absent or empty fields skip the remaining rules
//
// Value rules:
//   - boolean: true, false, 1, 0, yes or no
//   - method: an exported Go method name
//   - in:a,b: value must be one of the listed values
//   - not_in:a,b: value must not be one of the listed values
//   - regex:pat: value must match the pattern (the pattern may not contain |)
//
// Validation bails on the first failing rule of each field. Fields are
// checked in lexical order so error messages are stable.
package validation
