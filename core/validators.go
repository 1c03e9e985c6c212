package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	uuidOrEmptyTag  = "uuid_"
	uuidOrEmptyText = "{0} must be a valid identifier"

	fileRefTag   = "fileref"
	fileRefText  = "{0} must be a storage key or an http(s) URL"
	fileRefRegex = regexp.MustCompile(`^(https?://\S+|[\w\-./]+)$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(uuidOrEmptyTag, uuidOrEmptyValidation)
	RegisterCustomTranslation(validate, translator, uuidOrEmptyTag, uuidOrEmptyText)

	_ = validate.RegisterValidation(fileRefTag, fileRefValidation)
	RegisterCustomTranslation(validate, translator, fileRefTag, fileRefText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// uuidOrEmptyValidation accepts an empty string or a UUID.
func uuidOrEmptyValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || uuidRegex.MatchString(s)
}

// fileRefValidation accepts an empty string, a storage key or an http(s) URL.
func fileRefValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || fileRefRegex.MatchString(s)
}
