package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maktaba/core"
)

var (
	categoryTag         = "category"
	invalidCategoryText = "invalid category"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, invalidCategoryText)
}

// categoryValidation checks that the field is one of the enumerated Categories.
func categoryValidation(fl validator.FieldLevel) bool {
	return IsCategory(fl.Field().String())
}
