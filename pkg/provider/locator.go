package provider

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Lifetime controls how many instances of a registered service a
// ServiceLocator hands out.
type Lifetime uint8

const (
	// Singleton: one instance for the ServiceLocator's entire lifetime,
	// built lazily on first Resolve.
	Singleton Lifetime = iota
	// Scoped: one instance per open Scope; a new Scope gets a fresh
	// instance, Close()ing the Scope discards it.
	Scoped
	// Transient: a fresh instance on every Resolve call.
	Transient
)

// Factory builds a service instance. It receives the ServiceLocator itself
// so factories can resolve their own dependencies.
type Factory func(*ServiceLocator) (any, error)

type registration struct {
	lifetime Lifetime
	factory  Factory

	mu       sync.Mutex
	instance any
	built    bool
}

// ServiceLocator is a reflect.Type-keyed registry extensions and modules
// use to publish services to each other. It is not safe for concurrent
// Register calls (registration happens during the single-threaded resolve
// phase); Resolve is safe for concurrent use once registration settles.
type ServiceLocator struct {
	mu    sync.RWMutex
	items map[reflect.Type]*registration

	owner ownerCheck
}

// NewServiceLocator constructs an empty locator.
func NewServiceLocator() *ServiceLocator {
	return &ServiceLocator{items: make(map[reflect.Type]*registration)}
}

// RegisterType binds the service identified by type T to a factory with the
// given lifetime.
func RegisterType[T any](l *ServiceLocator, lifetime Lifetime, factory func(*ServiceLocator) (T, error)) error {
	key := reflect.TypeOf((*T)(nil)).Elem()
	return l.register(key, lifetime, func(sl *ServiceLocator) (any, error) {
		return factory(sl)
	})
}

func (l *ServiceLocator) register(key reflect.Type, lifetime Lifetime, factory Factory) error {
	if err := l.owner.assertOwner(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.items[key]; exists {
		return fmt.Errorf("provider: service %s: %w", key, plugify.ErrAlreadyRegistered)
	}
	l.items[key] = &registration{lifetime: lifetime, factory: factory}
	return nil
}

// Resolve resolves the service identified by type T. For a Scoped
// registration, scope must be non-nil and identifies which scope's cached
// instance to use or populate.
func Resolve[T any](l *ServiceLocator, scope *Scope) (T, error) {
	var zero T
	key := reflect.TypeOf((*T)(nil)).Elem()

	l.mu.RLock()
	reg, ok := l.items[key]
	l.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("provider: service %s: %w", key, plugify.ErrServiceNotFound)
	}

	value, err := l.resolveRegistration(key, reg, scope)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("provider: service %s: stored value has wrong type", key)
	}
	return typed, nil
}

func (l *ServiceLocator) resolveRegistration(key reflect.Type, reg *registration, scope *Scope) (any, error) {
	switch reg.lifetime {
	case Transient:
		return reg.factory(l)

	case Scoped:
		if scope == nil {
			return nil, fmt.Errorf("provider: service %s requires an open scope", key)
		}
		return scope.resolve(key, func() (any, error) { return reg.factory(l) })

	default: // Singleton
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if reg.built {
			return reg.instance, nil
		}
		value, err := reg.factory(l)
		if err != nil {
			return nil, err
		}
		reg.instance = value
		reg.built = true
		return value, nil
	}
}

// Scope is the scope-guard value Scoped-lifetime resolution is keyed on.
// Its Close discards every instance it cached; resolving a Scoped service
// through a closed Scope returns an error, and a new Scope builds a fresh
// instance.
type Scope struct {
	mu        sync.Mutex
	instances map[reflect.Type]any
	closed    bool
}

// NewScope opens a scope.
func (l *ServiceLocator) NewScope() *Scope {
	return &Scope{instances: make(map[reflect.Type]any)}
}

func (s *Scope) resolve(key reflect.Type, build func() (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("provider: scope closed while resolving %s", key)
	}
	if v, ok := s.instances[key]; ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	s.instances[key] = v
	return v, nil
}

// Close discards every instance cached by this scope.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.instances = nil
	return nil
}
