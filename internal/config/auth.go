package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/normalization"
)

// AuthType enumerates supported authentication methods (stringly for YAML compatibility).
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

var authTypes = normalization.New("auth type", map[string]AuthType{
	"none":  AuthTypeNone,
	"ssh":   AuthTypeSSH,
	"token": AuthTypeToken,
	"basic": AuthTypeBasic,
}, AuthTypeNone)

// AuthConfig represents repository authentication.
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

// Validate checks that the fields required by the auth type are present.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	return validation.ValidateStruct(a,
		validation.Field(&a.Type, validation.By(func(v any) error {
			t, _ := v.(AuthType)
			if t != "" && !authTypes.Valid(string(t)) {
				return validation.NewError("config.auth.type", "must be one of none, ssh, token, basic")
			}
			return nil
		})),
		validation.Field(&a.Token, validation.When(a.Type == AuthTypeToken, validation.Required)),
		validation.Field(&a.Username, validation.When(a.Type == AuthTypeBasic, validation.Required)),
		validation.Field(&a.Password, validation.When(a.Type == AuthTypeBasic, validation.Required)),
		validation.Field(&a.KeyPath, validation.When(a.Type == AuthTypeSSH, validation.Required)),
	)
}
