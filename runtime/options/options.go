// Package options implements the generic functional options used to configure components.
package options

// Option is a function that modifies the settings of an object of type T.
type Option[T any] func(*T)

// Apply applies the given options to the target object and runs the optional setup functions afterwards.
func Apply[T any](target *T, opts []Option[T], setup ...func(*T)) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(target)
		}
	}

	for _, setupFunc := range setup {
		setupFunc(target)
	}

	return target
}
