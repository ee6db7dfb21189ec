package http

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

var (
	registerOnce sync.Once
	translator   ut.Translator
)

// registerValidators configures gin's validator: english messages, JSON
// field names and the notblank tag.
func registerValidators() {
	registerOnce.Do(func() {
		_en := en.New()
		translator, _ = ut.New(_en, _en).GetTranslator("en")

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation(notBlankTag, notBlank)
		_ = v.RegisterTranslation(notBlankTag, translator,
			func(ut.Translator) error { return nil },
			func(ut.Translator, validator.FieldError) string { return "this field cannot be blank" },
		)
	})
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// bindingErrors maps field names to a message, or returns nil when err is
// not a validation failure.
func bindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			fields[fe.Field()] = fe.Translate(translator)
		} else {
			fields[fe.Field()] = fe.Error()
		}
	}
	return fields
}
