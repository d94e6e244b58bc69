package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors keyed by field, like Laravel's MessageBag.
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// Messages returns every message in field order.
func (e *Errors) Messages() []string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		out = append(out, e.Bag[f]...)
	}
	return out
}

// Error joins all messages so a failed bag can be returned as an error.
func (e *Errors) Error() string {
	return strings.Join(e.Messages(), " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"class": "required_without:closure|prohibits:closure"}
type Rules map[string]string

// Validator validates a flat map of descriptor fields. A field is present when
// its key exists in the data map, even if the value is empty.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator. Laravel: Validator::make($data, $rules).
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.validate()
		v.ran = true
	}
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// Validate is a shorthand returning the error bag when validation fails.
func Validate(data map[string]string, rules Rules) error {
	v := Make(data, rules)
	if v.Fails() {
		return v.Errors()
	}
	return nil
}

// ── Core validation loop ─────────────────────────────────────────────────────

var methodName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

func (v *Validator) validate() {
	fields := make([]string, 0, len(v.rules))
	for f := range v.rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, present := v.data[field]

		for _, rule := range strings.Split(v.rules[field], "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(field, value, present, name, param) {
				break // bail on first failure
			}
		}
	}
}

// applyRule returns true if the remaining rules of the field should run.
func (v *Validator) applyRule(field, value string, present bool, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "required_without":
		if present {
			break
		}
		for _, other := range splitParams(param) {
			if _, ok := v.data[other]; !ok {
				v.errors.add(field, fmt.Sprintf("The %s field is required when %s is not present.", field, other))
				return false
			}
		}

	case "prohibits":
		if !present {
			break
		}
		for _, other := range splitParams(param) {
			if _, ok := v.data[other]; ok {
				v.errors.add(field, fmt.Sprintf("The %s field prohibits %s from being present.", field, other))
				return false
			}
		}

	case "nullable":
		// Absent fields skip the remaining rules.
		if !present {
			return false
		}

	case "sometimes":
		if !present || value == "" {
			return false
		}

	case "boolean":
		valid := map[string]bool{"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true}
		if !valid[strings.ToLower(value)] {
			v.errors.add(field, fmt.Sprintf("The %s field must be true or false.", field))
			return false
		}

	case "method":
		if !methodName.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s must name an exported method.", field))
			return false
		}

	case "in":
		for _, a := range splitParams(param) {
			if a == value {
				return true
			}
		}
		v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
		return false

	case "not_in":
		for _, d := range splitParams(param) {
			if d == value {
				v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
				return false
			}
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}
	}

	return true
}

func splitParams(param string) []string {
	parts := strings.Split(param, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
