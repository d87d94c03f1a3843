package sync

import (
	"os"

	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/log"
)

// remotesDocument is the `remotes:` section of the home config layer
// (spec.md §4.H "Configuration per remote"), loaded independently of
// internal/config's Layer since remotes are home-scope only and never
// participate in the five-source ranked merge.
type remotesDocument struct {
	Remotes map[string]RemoteConfig `yaml:"remotes"`
}

// LoadRemotes parses the `remotes:` map out of the home config file at
// path. A missing file yields an empty map rather than an error.
func LoadRemotes(path string) (map[string]RemoteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]RemoteConfig{}, nil
		}
		return nil, lotarerrors.Wrap(lotarerrors.KindIO, "read home config", err)
	}

	var doc remotesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, lotarerrors.Wrap(lotarerrors.KindSerialization, "parse remotes section of home config", err)
	}

	for name, remote := range doc.Remotes {
		remote.Name = name
		doc.Remotes[name] = remote
	}
	return doc.Remotes, nil
}

// ResolveRemote looks up name in the home config's remotes map,
// resolving its AuthProfile secrets (literal or UPPER_SNAKE env var
// name per spec.md §4.H) in place, and logging a warning when the token
// looks like an environment variable name whose variable is unset.
func ResolveRemote(homeConfigPath, name string) (RemoteConfig, error) {
	remotes, err := LoadRemotes(homeConfigPath)
	if err != nil {
		return RemoteConfig{}, err
	}

	remote, ok := remotes[name]
	if !ok {
		return RemoteConfig{}, lotarerrors.New(lotarerrors.KindValidation, "unknown remote "+name).WithField("remote")
	}

	token, usedEnv := ResolveSecret(remote.AuthProfile.Token)
	if !usedEnv && looksLikeEnvVarName(remote.AuthProfile.Token) {
		log.Warn("auth_profile token names an unset environment variable; using it as a literal", "remote", name)
	}
	remote.AuthProfile.Token = token
	remote.AuthProfile.Email, _ = ResolveSecret(remote.AuthProfile.Email)
	remote.AuthProfile.BaseURL, _ = ResolveSecret(remote.AuthProfile.BaseURL)

	return remote, nil
}
