package validator

import (
	"context"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

const flagTag = "flag"

// newStructValidator returns a validator/v10 instance with the import tags registered.
func newStructValidator() *govalidator.Validate {
	v := govalidator.New()
	_ = v.RegisterValidation(flagTag, func(fl govalidator.FieldLevel) bool {
		_, ok := schema.ParseBool(fl.Field().String())
		return ok
	})
	return v
}

// tagRule fails when the field value does not satisfy a validator/v10 tag.
// Empty values are only checked by the required rule.
func tagRule(v *govalidator.Validate, key, name string, field schema.Field, tag string,
	code domain.ErrorCode, message string, checkEmpty bool) Rule {
	return &ruleFunc{
		key:  key,
		name: name,
		fn: func(_ context.Context, _ *Pass, row domain.RawRow) *Violation {
			val := row.Get(field.Name)
			if val == "" && !checkEmpty {
				return nil
			}
			if err := v.Var(val, tag); err != nil {
				return &Violation{Code: code, Message: message}
			}
			return nil
		},
	}
}

// RequiredRules rejects rows with an empty required field.
func RequiredRules(v *govalidator.Validate, s *schema.Schema) []Rule {
	var rules []Rule
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		rules = append(rules, tagRule(v,
			"required."+f.Name, "Required: "+f.Label, f, "required",
			domain.CodeMissingRequired,
			fmt.Sprintf("%s is required and cannot be empty", f.Label), true))
	}
	return rules
}

// LengthRules rejects values longer than the field limit, counted in characters.
func LengthRules(v *govalidator.Validate, s *schema.Schema) []Rule {
	rules := make([]Rule, 0, len(s.Fields))
	for _, f := range s.Fields {
		limit := f.MaxLength
		if limit <= 0 {
			limit = schema.DefaultMaxLength
		}
		rules = append(rules, tagRule(v,
			"length."+f.Name, "Length: "+f.Label, f, fmt.Sprintf("max=%d", limit),
			domain.CodeTooLong,
			fmt.Sprintf("%s exceeds maximum length of %d characters", f.Label, limit), false))
	}
	return rules
}

// CharsetRules rejects values containing markup-sensitive characters.
func CharsetRules(v *govalidator.Validate, s *schema.Schema) []Rule {
	rules := make([]Rule, 0, len(s.Fields))
	for _, f := range s.Fields {
		rules = append(rules, tagRule(v,
			"charset."+f.Name, "Charset: "+f.Label, f, "excludesall="+schema.ForbiddenChars,
			domain.CodeInvalidCharacters,
			fmt.Sprintf("%s contains invalid characters", f.Label), false))
	}
	return rules
}

// FormatRules checks kind-specific formats: product codes and boolean flags.
func FormatRules(v *govalidator.Validate, s *schema.Schema) []Rule {
	var rules []Rule
	for _, f := range s.Fields {
		switch f.Kind {
		case schema.KindProductCode:
			rules = append(rules,
				tagRule(v, "format."+f.Name+".digits", "Format: "+f.Label+" digits", f, "number",
					domain.CodeInvalidCharacters, "Product code must contain only digits", false),
				tagRule(v, "format."+f.Name+".length", "Format: "+f.Label+" length", f, "min=6,max=11",
					domain.CodeTooLong, "Product code must be 6-11 digits", false),
			)
		case schema.KindBoolean:
			rules = append(rules,
				tagRule(v, "format."+f.Name, "Format: "+f.Label, f, flagTag,
					domain.CodeInvalidCharacters, fmt.Sprintf("%s must be true or false", f.Label), false))
		}
	}
	return rules
}
