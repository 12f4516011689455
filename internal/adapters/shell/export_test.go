package shell

// Exported for white-box testing.
var (
	ResolveEnvironment = resolveEnvironment
	LookPath           = lookPath
)

// WithEnviron replaces the system environment source.
func WithEnviron(environ func() []string) Option {
	return func(e *Executor) {
		e.environ = environ
	}
}
