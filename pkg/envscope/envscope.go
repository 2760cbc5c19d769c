// Package envscope temporarily overrides process environment variables for
// the duration of an external call.
//
// Conan invocations sometimes need a modified environment (the default setup
// blanks CC and CXX to work around Anaconda compiler selection). The override
// must not leak: every touched variable is restored to its exact prior value,
// or removed again if it was previously unset, no matter how the enclosed
// operation terminates.
//
//	scope := envscope.Apply(env)
//	defer scope.Restore()
package envscope

import "os"

// saved records the prior state of a single variable.
type saved struct {
	key     string
	value   string
	existed bool
}

// Scope holds the prior values of the variables an Apply call touched.
type Scope struct {
	prior []saved
}

// Apply sets each variable in env, remembering the prior value (including
// "unset") of every key it touches. A nil or empty map yields a no-op Scope.
func Apply(env map[string]string) *Scope {
	s := &Scope{}
	for key, value := range env {
		old, existed := os.LookupEnv(key)
		s.prior = append(s.prior, saved{key: key, value: old, existed: existed})
		os.Setenv(key, value)
	}
	return s
}

// Restore puts every touched variable back to its prior state. Safe to call
// multiple times; subsequent calls are no-ops. Callers should defer it
// immediately after Apply so restoration happens on error and panic paths too.
func (s *Scope) Restore() {
	for _, p := range s.prior {
		if p.existed {
			os.Setenv(p.key, p.value)
		} else {
			os.Unsetenv(p.key)
		}
	}
	s.prior = nil
}

// With runs fn with env applied and restores the prior environment before
// returning, regardless of fn's outcome.
func With(env map[string]string, fn func() error) error {
	scope := Apply(env)
	defer scope.Restore()
	return fn()
}
