package returns

import (
	"encoding/base64"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront-tracker/internal/model"
)

// MaxImageBytes is the decoded size limit of one attached image.
const MaxImageBytes = 5 << 20

var dataURLPattern = regexp.MustCompile(`^data:image/(jpeg|jpg|png|webp|gif);base64,`)

// newValidator builds the request validator. Field names in errors follow the JSON tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("image_data_url", validImageDataURL); err != nil {
		panic(err)
	}
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// validImageDataURL accepts base64 image data URLs up to MaxImageBytes decoded.
func validImageDataURL(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	loc := dataURLPattern.FindStringIndex(s)
	if loc == nil {
		return false
	}
	payload := s[loc[1]:]
	if payload == "" || base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	return len(decoded) <= MaxImageBytes
}

// toAPIError converts the first validation failure into a 400.
func toAPIError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return model.NewValidationError("request", err.Error())
	}
	fe := ve[0]
	return model.NewValidationError(fe.Field(), messageForTag(fe.Tag(), fe.Param()))
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "image_data_url":
		return "must be a JPEG, PNG, WebP or GIF data URL of at most 5 MiB"
	default:
		return "is invalid"
	}
}
