package extract

import (
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"RankingsScanner/internal/domain"
)

var (
	validateOnce sync.Once
	rowValidator *validator.Validate
)

func rowValidate() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("hasletter", func(fl validator.FieldLevel) bool {
			return fl.Field().Kind() == reflect.String && HasLetter(fl.Field().String())
		})
		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
				return false
			}
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
		rowValidator = v
	})
	return rowValidator
}

// Validate checks a row against the sanity rules: positive rank, finite score,
// and at least one letter in name, city and state.
func Validate(row domain.RawRow) error {
	return rowValidate().Struct(row)
}

// Valid is Validate reduced to a boolean.
func Valid(row domain.RawRow) bool {
	return Validate(row) == nil
}
