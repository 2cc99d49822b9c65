package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

// ValidationError represents a validation error with field and message
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
	}
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// Fields returns the first message per field
func (vr *ValidationResult) Fields() map[string]string {
	out := make(map[string]string, len(vr.Errors))
	for _, e := range vr.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	// Validate is the shared validator for portal input structs. It is the
	// same engine gin uses for ShouldBind.
	Validate *validator.Validate
	// Translator renders validation messages in Spanish
	Translator ut.Translator

	documentNumberPattern = regexp.MustCompile(`^\d{7,9}$`)

	// now is replaced in tests
	now = time.Now
)

const (
	notBlankTag       = "notblank"
	documentNumberTag = "docnumber"
	pastDateTag       = "pastdate"
	mobileTag         = "mobile_ar"
)

var customMessages = map[string]string{
	notBlankTag:       "{0} no puede estar vacío",
	documentNumberTag: "{0} debe tener entre 7 y 9 dígitos, sin puntos",
	pastDateTag:       "{0} debe tener el formato AAAA-MM-DD y no puede ser futura",
	mobileTag:         "{0} no es un número de celular válido",
}

func init() {
	_es := es.New()
	uni := ut.New(_es, _es)
	Translator, _ = uni.GetTranslator("es")

	// Share gin's engine so bound requests get the same rules and messages.
	// Rules are declared with the `binding` tag either way.
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Validate = engine
	} else {
		Validate = validator.New()
		Validate.SetTagName("binding")
	}
	configureValidator(Validate)
}

func configureValidator(v *validator.Validate) {
	_ = es_translations.RegisterDefaultTranslations(v, Translator)

	// Prefer a human label, then the JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	_ = v.RegisterValidation(documentNumberTag, documentNumberValidation)
	_ = v.RegisterValidation(pastDateTag, pastDateValidation)
	_ = v.RegisterValidation(mobileTag, mobileValidation)

	for tag, message := range customMessages {
		tag, message := tag, message
		_ = v.RegisterTranslation(tag, Translator,
			func(t ut.Translator) error { return t.Add(tag, message, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}

// ValidateStruct validates s and returns the translated result
func ValidateStruct(s interface{}) *ValidationResult {
	return FromValidationError(Validate.Struct(s), s)
}

// FromValidationError converts validator errors into a ValidationResult keyed
// by the JSON field names of target, which may be nil. Other errors become a
// single "body" error.
func FromValidationError(err error, target interface{}) *ValidationResult {
	result := NewValidationResult()
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.AddError("body", "El cuerpo de la solicitud no es válido.")
		return result
	}

	var targetType reflect.Type
	if target != nil {
		targetType = reflect.Indirect(reflect.ValueOf(target)).Type()
	}
	for _, fe := range verrs {
		result.AddError(jsonFieldName(targetType, fe), fe.Translate(Translator))
	}
	return result
}

// jsonFieldName resolves the JSON name of the failing field. Without a
// target type it falls back to the lowerCamel struct field name.
func jsonFieldName(targetType reflect.Type, fe validator.FieldError) string {
	name := fe.StructField()
	if targetType != nil && targetType.Kind() == reflect.Struct {
		if fld, ok := targetType.FieldByName(name); ok {
			if tag := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]; tag != "" && tag != "-" {
				return tag
			}
		}
	}
	if name == "" {
		return fe.Field()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func documentNumberValidation(fl validator.FieldLevel) bool {
	return documentNumberPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// pastDateValidation accepts YYYY-MM-DD dates up to and including today
func pastDateValidation(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return false
	}
	today := now()
	endOfToday := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
	return !date.After(endOfToday)
}

func mobileValidation(fl validator.FieldLevel) bool {
	_, err := NormalizeMobile(fl.Field().String())
	return err == nil
}
