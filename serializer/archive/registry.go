package archive

import (
	"reflect"
	"sort"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/runtime/options"
	"github.com/roboware/serialkit/runtime/syncutils"
)

// MaxClassNameLength is the longest class name that can be registered and read from an archive.
const MaxClassNameLength = 1024

// Factory creates a new, empty instance of a class.
type Factory func() Serializable

// ClassDescriptor holds the runtime information of a registered class.
type ClassDescriptor struct {
	// Name is the stable name written to archives.
	Name string
	// BaseName is the name of the base class, empty for root classes.
	BaseName string
	// Factory creates empty instances of the class.
	Factory Factory
	// Type is the Go type produced by the factory.
	Type reflect.Type
}

// New creates a new empty instance of the class.
func (d *ClassDescriptor) New() Serializable {
	return d.Factory()
}

// WithBaseName sets the name of the base class.
func WithBaseName(baseName string) options.Option[ClassDescriptor] {
	return func(d *ClassDescriptor) {
		d.BaseName = baseName
	}
}

// Registry maps class names to factories and Go types to class names.
// It is safe for concurrent use.
type Registry struct {
	logger *logger.Logger

	mutex  syncutils.RWMutex
	byName map[string]*ClassDescriptor
	byType map[reflect.Type]*ClassDescriptor
}

// WithRegistryLogger sets the logger used by the registry.
func WithRegistryLogger(log *logger.Logger) options.Option[Registry] {
	return func(r *Registry) {
		r.logger = log
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...options.Option[Registry]) *Registry {
	return options.Apply(&Registry{
		byName: make(map[string]*ClassDescriptor),
		byType: make(map[reflect.Type]*ClassDescriptor),
	}, opts, func(r *Registry) {
		if r.logger == nil {
			r.logger = logger.NewNopLogger()
		}
	})
}

// DefaultRegistry is a process wide registry for programs that do not need more than one.
var DefaultRegistry = NewRegistry()

// Register adds a class under the given name.
// Registering the same name for the same Go type again is a no-op.
func (r *Registry) Register(name string, factory Factory, opts ...options.Option[ClassDescriptor]) error {
	if name == "" || len(name) > MaxClassNameLength {
		return ierrors.Wrapf(ErrInvalidClassName, "name %q", name)
	}
	if factory == nil {
		return ierrors.Wrapf(ErrNotSerializable, "class %s has no factory", name)
	}

	sample := factory()
	if isNil(sample) {
		return ierrors.Wrapf(ErrNotSerializable, "factory of class %s returned nil", name)
	}

	descriptor := options.Apply(&ClassDescriptor{
		Name:    name,
		Factory: factory,
		Type:    reflect.TypeOf(sample),
	}, opts)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, exists := r.byName[name]; exists {
		if existing.Type != descriptor.Type {
			return ierrors.Wrapf(ErrDuplicateClass, "name %s is registered for %s, not %s", name, existing.Type, descriptor.Type)
		}
		if existing.BaseName != descriptor.BaseName {
			return ierrors.Wrapf(ErrDuplicateClass, "class %s is registered with base %q, not %q", name, existing.BaseName, descriptor.BaseName)
		}

		return nil
	}

	if existing, exists := r.byType[descriptor.Type]; exists {
		return ierrors.Wrapf(ErrDuplicateClass, "type %s is registered as %s, not %s", descriptor.Type, existing.Name, name)
	}

	r.byName[name] = descriptor
	r.byType[descriptor.Type] = descriptor

	r.logger.Debugw("registered class", "class", name, "base", descriptor.BaseName, "type", descriptor.Type.String())

	return nil
}

// MustRegister registers a class and panics on failure.
func (r *Registry) MustRegister(name string, factory Factory, opts ...options.Option[ClassDescriptor]) {
	if err := r.Register(name, factory, opts...); err != nil {
		panic(err)
	}
}

// Resolve returns the descriptor of the class with the given name.
func (r *Registry) Resolve(name string) (*ClassDescriptor, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	descriptor, exists := r.byName[name]
	if !exists {
		return nil, ierrors.Wrapf(ErrUnknownClass, "class %q", name)
	}

	return descriptor, nil
}

// DescriptorOf returns the descriptor of the class registered for the given Go type.
func (r *Registry) DescriptorOf(t reflect.Type) (*ClassDescriptor, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	descriptor, exists := r.byType[t]
	if !exists {
		return nil, ierrors.Wrapf(ErrUnknownClass, "type %v", t)
	}

	return descriptor, nil
}

// NameOf returns the class name of the given object.
func (r *Registry) NameOf(obj Serializable) (string, error) {
	if obj == nil {
		return "", ierrors.Wrap(ErrUnknownClass, "nil object")
	}

	descriptor, err := r.DescriptorOf(reflect.TypeOf(obj))
	if err != nil {
		return "", err
	}

	return descriptor.Name, nil
}

// DerivesFrom reports whether the class name equals base or has base in its chain of base classes.
// Base classes do not need to be registered themselves.
func (r *Registry) DerivesFrom(name string, base string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for current, hops := name, 0; hops <= len(r.byName); hops++ {
		if current == base {
			return true
		}

		descriptor, exists := r.byName[current]
		if !exists || descriptor.BaseName == "" {
			return false
		}
		current = descriptor.BaseName
	}

	return false
}

// Classes returns the sorted names of all registered classes.
func (r *Registry) Classes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ClassID returns the type token of T that identifies its class in a Registry.
func ClassID[T Serializable]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NameFor returns the class name registered for T.
func NameFor[T Serializable](r *Registry) (string, error) {
	descriptor, err := r.DescriptorOf(ClassID[T]())
	if err != nil {
		return "", err
	}

	return descriptor.Name, nil
}

func isNil(obj Serializable) bool {
	if obj == nil {
		return true
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return value.IsNil()
	default:
		return false
	}
}
