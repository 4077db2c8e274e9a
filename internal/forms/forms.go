// Package forms binds submitted HTML forms to structs and reports field errors for inline display
package forms

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/studentportal/webapp/internal/models"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("finitefloat", func(fl validator.FieldLevel) bool {
		_, err := parseFinite(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		f, err := parseFinite(fl.Field().String())
		return err == nil && f >= 0
	})
	// max counts characters; maxbytes counts the encoded length
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})

	return v
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// Errors maps a form field name to the message shown next to it
type Errors map[string]string

// PasswordTooLong is the field error for a password over MaxPasswordBytes
func PasswordTooLong() Errors {
	return Errors{"password": fmt.Sprintf("Field cannot be longer than %d bytes.", MaxPasswordBytes)}
}

// Get returns the message for a field, or an empty string
func (e Errors) Get(field string) string {
	return e[field]
}

// check validates a form struct and converts validator errors to field messages.
// It returns nil when the form is valid.
func check(form any) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"": "Invalid form submission."}
	}

	errs := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Passwords must match."
	case "finitefloat":
		return "Not a valid float value."
	case "nonnegative":
		return "Number must be at least 0."
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", fe.Param())
	default:
		return "Invalid value."
	}
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	Username        string `form:"username" validate:"required,min=3,max=50"`
	Email           string `form:"email" validate:"omitempty,email,max=120"`
	Password        string `form:"password" validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	AdminCode       string `form:"admin_code"`
}

// NewRegisterForm reads the sign-up form from a parsed request
func NewRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		AdminCode:       r.PostFormValue("admin_code"),
	}
}

// Validate returns the field errors of the form, or nil
func (f *RegisterForm) Validate() Errors {
	return check(f)
}

// Request converts the form to a registration request
func (f *RegisterForm) Request() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
		AdminCode: f.AdminCode,
	}
}

// LoginForm is the sign-in form
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// NewLoginForm reads the sign-in form from a parsed request
func NewLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// Validate returns the field errors of the form, or nil
func (f *LoginForm) Validate() Errors {
	return check(f)
}

// Request converts the form to a login request
func (f *LoginForm) Request() models.LoginRequest {
	return models.LoginRequest{
		Username: f.Username,
		Password: f.Password,
	}
}

// RectangleForm is the calculator form. The operation is chosen by the submit button pressed.
type RectangleForm struct {
	Length    string `form:"length" validate:"required,finitefloat,nonnegative"`
	Width     string `form:"width" validate:"required,finitefloat,nonnegative"`
	Operation models.RectangleOperation `form:"-"`
}

// NewRectangleForm reads the calculator form from a parsed request
func NewRectangleForm(r *http.Request) *RectangleForm {
	f := &RectangleForm{
		Length: strings.TrimSpace(r.PostFormValue("length")),
		Width:  strings.TrimSpace(r.PostFormValue("width")),
	}
	switch {
	case r.PostForm.Has(string(models.OperationArea)):
		f.Operation = models.OperationArea
	case r.PostForm.Has(string(models.OperationPerimeter)):
		f.Operation = models.OperationPerimeter
	}
	return f
}

// Validate returns the field errors of the form, or nil
func (f *RectangleForm) Validate() Errors {
	return check(f)
}

// Values returns the parsed dimensions. Call it only on a valid form.
func (f *RectangleForm) Values() (length, width float64) {
	length, _ = parseFinite(f.Length)
	width, _ = parseFinite(f.Width)
	return length, width
}

// WeatherForm is the city lookup form
type WeatherForm struct {
	City string `form:"city" validate:"required,min=2,max=100"`
}

// NewWeatherForm reads the city lookup form from a parsed request
func NewWeatherForm(r *http.Request) *WeatherForm {
	return &WeatherForm{
		City: strings.TrimSpace(r.PostFormValue("city")),
	}
}

// Validate returns the field errors of the form, or nil
func (f *WeatherForm) Validate() Errors {
	return check(f)
}
