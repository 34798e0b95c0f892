package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках используем имена полей из json
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct превращает первую ошибку валидатора в VALIDATION_ERROR
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(fe.Field(), reason(fe))
	}
	return NewBusinessError(CodeValidation, err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "max":
		return "длина больше " + fe.Param()
	case "min":
		return "значение меньше " + fe.Param()
	case "latitude", "longitude":
		return "координата вне диапазона"
	case "oneof":
		return "допустимые значения: " + fe.Param()
	case "url":
		return "ожидается URL"
	case "email":
		return "ожидается email"
	case "excludes":
		return "недопустимое значение"
	default:
		return fe.Tag()
	}
}
