package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-minidi/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.False(t, v.Fails(), "errors: %+v", v.Errors().Bag)
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		require.True(t, v.Fails(), "expected FAIL on field %q", field)
		assert.NotEmpty(t, v.Errors().Bag[field], "errors: %+v", v.Errors().Bag)
	})
}

// ── required ─────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"class": "required"}

	pass(t, "non-empty value", map[string]string{"class": "mailer"}, r)
	fail(t, "empty string", "class", map[string]string{"class": ""}, r)
	fail(t, "whitespace only", "class", map[string]string{"class": "   "}, r)
	fail(t, "missing key", "class", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"class": ""}, validation.Rules{"class": "required"})
	require.True(t, v.Fails())
	assert.Equal(t, []string{"The class field is required."}, v.Errors().Bag["class"])
}

// ── presence pairs ───────────────────────────────────────────────────────────

func TestValidation_RequiredWithout(t *testing.T) {
	r := validation.Rules{"class": "required_without:closure"}

	pass(t, "class present", map[string]string{"class": "mailer"}, r)
	pass(t, "closure present instead", map[string]string{"closure": "makeMailer"}, r)
	fail(t, "neither present", "class", map[string]string{"config": ""}, r)
}

func TestValidation_Prohibits(t *testing.T) {
	r := validation.Rules{"class": "prohibits:closure"}

	pass(t, "class alone", map[string]string{"class": "mailer"}, r)
	pass(t, "class absent", map[string]string{"closure": "makeMailer"}, r)
	fail(t, "both present", "class", map[string]string{"class": "mailer", "closure": "makeMailer"}, r)
}

func TestValidation_DescriptorRules(t *testing.T) {
	r := validation.Rules{
		"class":        "required_without:closure|prohibits:closure",
		"shared":       "nullable|boolean",
		"runAfterInit": "nullable|method",
	}

	pass(t, "minimal class", map[string]string{"class": "mailer"}, r)
	pass(t, "full closure", map[string]string{"closure": "makeMailer", "shared": "true", "runAfterInit": "Init"}, r)
	fail(t, "bad shared", "shared", map[string]string{"class": "mailer", "shared": "maybe"}, r)
	fail(t, "unexported init", "runAfterInit", map[string]string{"class": "mailer", "runAfterInit": "init"}, r)
}

// ── value rules ──────────────────────────────────────────────────────────────

func TestValidation_Boolean(t *testing.T) {
	r := validation.Rules{"isolate": "boolean"}

	for _, v := range []string{"true", "false", "1", "0", "yes", "no", "TRUE"} {
		pass(t, v, map[string]string{"isolate": v}, r)
	}
	fail(t, "word", "isolate", map[string]string{"isolate": "sure"}, r)
}

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"format": "in:json, console"}

	pass(t, "json", map[string]string{"format": "json"}, r)
	pass(t, "console", map[string]string{"format": "console"}, r)
	fail(t, "xml", "format", map[string]string{"format": "xml"}, r)
}

func TestValidation_NotIn(t *testing.T) {
	r := validation.Rules{"key": "not_in:container"}

	pass(t, "other", map[string]string{"key": "mailer"}, r)
	fail(t, "reserved", "key", map[string]string{"key": "container"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"class": `regex:^[a-z][a-zA-Z.]*$`}

	pass(t, "dotted", map[string]string{"class": "app.mailer"}, r)
	fail(t, "leading digit", "class", map[string]string{"class": "1mailer"}, r)
}

func TestValidation_Sometimes_SkipsEmpty(t *testing.T) {
	r := validation.Rules{"runAfterInit": "sometimes|method"}

	pass(t, "absent", map[string]string{}, r)
	pass(t, "empty", map[string]string{"runAfterInit": ""}, r)
	fail(t, "lowercase", "runAfterInit", map[string]string{"runAfterInit": "boot"}, r)
}

// ── error bag ────────────────────────────────────────────────────────────────

func TestErrors_MessagesAreOrderedByField(t *testing.T) {
	err := validation.Validate(
		map[string]string{"shared": "maybe", "isolate": "perhaps"},
		validation.Rules{"shared": "boolean", "isolate": "boolean"},
	)
	require.Error(t, err)

	var bag *validation.Errors
	require.ErrorAs(t, err, &bag)
	assert.Equal(t, []string{
		"The isolate field must be true or false.",
		"The shared field must be true or false.",
	}, bag.Messages())
	assert.Equal(t, "The isolate field must be true or false. The shared field must be true or false.", err.Error())
}

func TestValidate_NilOnSuccess(t *testing.T) {
	assert.NoError(t, validation.Validate(map[string]string{"class": "x"}, validation.Rules{"class": "required"}))
}
