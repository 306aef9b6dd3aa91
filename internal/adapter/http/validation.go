package http

import (
	"math"
	"reflect"
	"strings"
	"time"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/pkg/date"
	"assetfin-backend/pkg/id"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name where they have one
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// owner/asset/loan ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid(fl.Field().String())
	})
	// max 2 decimal places
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})
	_ = v.RegisterValidation("depmethod", func(fl validator.FieldLevel) bool {
		_, err := asset.ParseMethod(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("assettype", func(fl validator.FieldLevel) bool {
		return asset.Type(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := date.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("ym", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "dec2":
			out = append(out, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "depmethod":
			out = append(out, FieldError{Field: field, Message: "must be one of StraightLine, DecliningBalance, DoubleDecliningBalance, UnitsOfProduction"})
		case "assettype":
			out = append(out, FieldError{Field: field, Message: "must be Equipment or Vehicle"})
		case "ymd":
			out = append(out, FieldError{Field: field, Message: "must be a YYYY-MM-DD date"})
		case "ym":
			out = append(out, FieldError{Field: field, Message: "must be a YYYY-MM month"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " long"})
		case "len":
			out = append(out, FieldError{Field: field, Message: "must be exactly " + e.Param() + " long"})
		case "numeric":
			out = append(out, FieldError{Field: field, Message: "must be numeric"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
