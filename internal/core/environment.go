package core

import "strings"

// Environment is the deployment environment read from ENVIRONMENT.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// short names accepted in ENVIRONMENT
var environmentAliases = map[string]Environment{
	"dev":   Development,
	"local": Development,
	"stage": Staging,
	"test":  Testing,
	"prod":  Production,
}

func (e Environment) String() string {
	return string(e)
}

// IsProduction selects JSON logging at info level.
func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment resolves an ENVIRONMENT value, ignoring case and
// surrounding whitespace. Unknown or empty values resolve to Development.
func ParseEnvironment(v string) Environment {
	v = strings.ToLower(strings.TrimSpace(v))
	switch env := Environment(v); env {
	case Development, Staging, Testing, Production:
		return env
	}
	if env, ok := environmentAliases[v]; ok {
		return env
	}
	return Development
}
