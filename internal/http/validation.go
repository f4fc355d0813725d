package http

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by request structs.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("absurl", validateAbsoluteURL)
	})
}

// jsonFieldName reports fields by their JSON key in validation errors.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// validateAbsoluteURL accepts empty strings and absolute http(s) URLs.
func validateAbsoluteURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// bindingErrorMessage turns validator output into a client-facing message.
func bindingErrorMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "absurl":
		return fe.Field() + " must be an absolute http(s) URL"
	default:
		return "invalid value for " + fe.Field()
	}
}
