package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"azdo-mcp/internal/auth"
)

// SessionConfig is the configuration an HTTP client supplies when it opens
// a session.
type SessionConfig struct {
	Organization   string   `json:"organization" validate:"required"`
	Authentication string   `json:"authentication" validate:"required,oneof=interactive azcli env pat"`
	Domains        []string `json:"domains,omitempty"`
	PAT            string   `json:"pat,omitempty" validate:"required_if=Authentication pat"`
	Tenant         string   `json:"tenant,omitempty" validate:"omitempty,uuid"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func sessionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// DecodeSessionConfig reads a session configuration from query parameters.
// A base64 encoded JSON document in the "config" parameter is applied first;
// individual parameters override it.
func DecodeSessionConfig(q url.Values) (SessionConfig, error) {
	var sc SessionConfig

	if raw := q.Get("config"); raw != "" {
		data, err := decodeBase64(raw)
		if err != nil {
			return SessionConfig{}, NewConfigurationError(SourceSession, "config", ErrorTypeParse,
				"config parameter is not valid base64")
		}
		if err := json.Unmarshal(data, &sc); err != nil {
			return SessionConfig{}, ConfigurationError{
				Source:    SourceSession,
				Field:     "config",
				ErrorType: ErrorTypeParse,
				Message:   "config parameter is not a valid JSON object",
				Details:   err.Error(),
			}
		}
	}

	if v := q.Get("organization"); v != "" {
		sc.Organization = v
	}
	if v := q.Get("authentication"); v != "" {
		sc.Authentication = v
	}
	if v := q.Get("pat"); v != "" {
		sc.PAT = v
	}
	if v := q.Get("tenant"); v != "" {
		sc.Tenant = v
	}
	if vs := q["domains"]; len(vs) > 0 {
		sc.Domains = vs
	}
	return sc, nil
}

func decodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, errors.New("invalid base64")
}

// Normalize trims the fields, applies the domain default and, in PAT-only
// mode, forces pat authentication.
func (sc *SessionConfig) Normalize(patOnly bool) {
	sc.Organization = strings.TrimSpace(sc.Organization)
	sc.Authentication = strings.ToLower(strings.TrimSpace(sc.Authentication))
	sc.Tenant = strings.TrimSpace(sc.Tenant)
	if patOnly {
		sc.Authentication = string(auth.PAT)
	}
	if len(sc.Domains) == 0 {
		sc.Domains = append([]string(nil), DefaultDomains...)
	}
}

// Validate checks the session configuration and reports every problem as a
// ConfigurationErrorCollection.
func (sc SessionConfig) Validate() error {
	err := sessionValidator().Struct(sc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var errs ConfigurationErrorCollection
	for _, fe := range verrs {
		errs.Add(sessionFieldError(fe))
	}
	return errs.ErrorOrNil()
}

func sessionFieldError(fe validator.FieldError) ConfigurationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return NewConfigurationError(SourceSession, field, ErrorTypeMissing, "is required")
	case "required_if":
		return NewConfigurationError(SourceSession, field, ErrorTypeMissing, "is required for pat authentication")
	case "oneof":
		return ConfigurationError{
			Source:      SourceSession,
			Field:       field,
			ErrorType:   ErrorTypeInvalid,
			Message:     fmt.Sprintf("unknown value %q", fe.Value()),
			Suggestions: []string{"Use one of: " + joinStrategies()},
		}
	case "uuid":
		return NewConfigurationError(SourceSession, field, ErrorTypeInvalid, "must be a tenant GUID")
	default:
		return NewConfigurationError(SourceSession, field, ErrorTypeInvalid, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

func isStrategy(s string) bool {
	_, err := auth.ParseStrategy(s)
	return err == nil
}

func joinStrategies() string {
	names := make([]string, 0, len(auth.Strategies()))
	for _, s := range auth.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
