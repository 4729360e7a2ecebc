package hub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Region selects the hub environment a credential is valid for
type Region string

const (
	RegionStaging Region = "Staging"
	RegionGlobal  Region = "Global"
	RegionIndia   Region = "India"
)

// Base API URLs per region
var regionURLs = map[Region]string{
	RegionStaging: "https://api.staging-env.netilion.endress.com/v1/",
	RegionGlobal:  "https://api.netilion.endress.com/v1/",
	RegionIndia:   "https://in.api.netilion.endress.com/v1/",
}

// OAuth token endpoints per region
var oauthURLs = map[Region]string{
	RegionStaging: "https://api.staging-env.netilion.endress.com/oauth/token",
	RegionGlobal:  "https://api.netilion.endress.com/oauth/token",
	RegionIndia:   "https://in.api.netilion.endress.com/oauth/token",
}

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Credential holds everything needed to authenticate against the hub.
// With an APISecret set the client uses the OAuth2 password grant;
// without one it falls back to basic auth for the technical user.
type Credential struct {
	User      string `validate:"required"`
	Password  string `validate:"required"`
	APIKey    string `validate:"required"`
	APISecret string `validate:"omitempty"`
	Region    Region `validate:"required,oneof=Staging Global India"`
}

// Validate checks that all required credential fields are present and
// the region is one of the supported environments.
func (c Credential) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			case "oneof":
				msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
			}
		}
		return fmt.Errorf("invalid credential: %s", strings.Join(msgs, "; "))
	}
	return err
}
