package git

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// AuthMethod converts repository auth settings into a go-git AuthMethod.
// A nil config or type none yields nil (anonymous access).
func AuthMethod(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth.IsZero() {
		return nil, nil
	}
	switch auth.Type {
	case config.AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, auth.Password)
		if err != nil {
			return nil, errors.ConfigError("load SSH key").
				WithCause(err).WithContext("key_path", keyPath).Build()
		}
		return keys, nil
	case config.AuthTypeToken:
		if auth.Token == "" {
			return nil, errors.ConfigError("token authentication requires a token").Build()
		}
		// GitHub, GitLab and Forgejo accept any username with a token password.
		return &http.BasicAuth{Username: "token", Password: auth.Token}, nil
	case config.AuthTypeBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, errors.ConfigError("basic authentication requires username and password").Build()
		}
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil
	default:
		return nil, errors.ConfigError("unsupported authentication type").
			WithContext("type", string(auth.Type)).Build()
	}
}
