package config

import (
	"sort"
	"strings"
)

// Credentials is the flat set of named secrets. An empty value counts as
// absent.
type Credentials map[string]string

func (c Credentials) Present(name string) bool {
	return c[name] != ""
}

// Require returns a *MissingCredentialError naming every absent credential,
// or nil when all are present.
func (c Credentials) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !c.Present(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingCredentialError{Names: missing}
}

// MissingCredentialError is returned before an external call is attempted
// when the credential it needs is not configured.
type MissingCredentialError struct {
	Names []string
}

func (e *MissingCredentialError) Error() string {
	return "missing credential: " + strings.Join(e.Names, ", ")
}

// RequireCredential is the single-value form used by provider adapters.
func RequireCredential(name, value string) error {
	return Credentials{name: value}.Require(name)
}
