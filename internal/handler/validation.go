package handler

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// passwordRule enforces the registration password policy: at least 8
// characters with an upper-case letter, a lower-case letter, a digit and a
// special character.
var passwordRule validator.Func = func(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if utf8.RuneCountInString(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// RegisterValidators installs custom rules on gin's binding validator.
// Must be called once before the router handles requests.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password", passwordRule)
	}
}

// bindingErrors turns a binding failure into one message per failed field,
// so a response reports every problem instead of only the first.
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request body"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "password":
			msgs = append(msgs, field+" must be at least 8 characters and contain upper and lower case letters, a digit and a special character")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()))
		}
	}
	return msgs
}
