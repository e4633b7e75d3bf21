// Package validation 表单校验：go-playground/validator 规则，错误转为 models.ValidationError
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"alertaja/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// 字段名使用 json 标签
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// 去掉首尾空白后仍非空
	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct 校验结构体，失败返回 *models.ValidationError
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &models.ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, models.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "max":
		return "too long"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "number", "numeric":
		return "digits only"
	case "latitude", "longitude":
		return "invalid coordinate"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "does not match"
	}
	return "invalid"
}
