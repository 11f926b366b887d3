package review

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maktaba/core"
)

var (
	ratingTag  = "rating"
	ratingText = fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ratingTag, ratingValidation)
	core.RegisterCustomTranslation(validate, translator, ratingTag, ratingText)
}

// ratingValidation checks that the rating is within MinRating..MaxRating.
func ratingValidation(fl validator.FieldLevel) bool {
	r := fl.Field().Int()
	return r >= MinRating && r <= MaxRating
}
