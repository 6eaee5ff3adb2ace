package env

import (
	"os"
	"strings"
)

type Var map[string]string

// Env resolves variables referenced in configured paths. Variables set on
// Env take precedence over the OS environment; their keys are
// case-insensitive because configuration keys are lower-cased on load.
type Env struct {
	Var Var // configured variables, keys upper-cased
	env Var // cached base from OS environment
}

func New() *Env {
	return &Env{
		Var: make(Var),
	}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	base := make(Var)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			base[kv[:i]] = kv[i+1:]
		}
	}
	e.env = base
}

// Set sets a configured variable K=V.
func (e *Env) Set(k, v string) {
	if k == "" {
		return
	}
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[strings.ToUpper(k)] = v
}

// Lookup returns the configured value of k, falling back to the OS environment.
func (e *Env) Lookup(k string) (string, bool) {
	if v, ok := e.Var[strings.ToUpper(k)]; ok {
		return v, true
	}
	if e.env == nil {
		e.FromOS()
	}
	if v, ok := e.env[k]; ok {
		return v, true
	}
	// Windows variable names are case-insensitive
	for name, v := range e.env {
		if strings.EqualFold(name, k) {
			return v, true
		}
	}
	return "", false
}

// Expand replaces ${VAR} and %VAR% references in s. Unknown references are
// left as written. Expansion is single pass; values are not expanded again.
func (e *Env) Expand(s string) string {
	if !strings.ContainsAny(s, "$%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "${"):
			if j := strings.IndexByte(s[i+2:], '}'); j > 0 {
				name := s[i+2 : i+2+j]
				if v, ok := e.Lookup(name); ok {
					b.WriteString(v)
					i += j + 3
					continue
				}
			}
		case s[i] == '%':
			if j := strings.IndexByte(s[i+1:], '%'); j > 0 {
				name := s[i+1 : i+1+j]
				if !strings.ContainsAny(name, " \\/") {
					if v, ok := e.Lookup(name); ok {
						b.WriteString(v)
						i += j + 2
						continue
					}
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
