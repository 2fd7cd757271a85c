package plugify

import "errors"

// Sentinel error kinds (§7). Component packages wrap one of these with
// fmt.Errorf("...: %w", ErrX) so callers can still errors.Is against a
// stable, documented vocabulary regardless of which package raised it.
var (
	ErrFileNotFound        = errors.New("plugify: file not found")
	ErrLoadFailed          = errors.New("plugify: assembly load failed")
	ErrSymbolNotFound      = errors.New("plugify: symbol not found")
	ErrUnsupported         = errors.New("plugify: unsupported on this platform")
	ErrInvalidManifest     = errors.New("plugify: invalid manifest")
	ErrMissingDependency   = errors.New("plugify: missing dependency")
	ErrVersionConflict     = errors.New("plugify: version conflict")
	ErrConflictDetected    = errors.New("plugify: declared conflict detected")
	ErrCircularDependency  = errors.New("plugify: circular dependency")
	ErrValidationFailed    = errors.New("plugify: validation failed")
	ErrDisabledByPolicy    = errors.New("plugify: disabled by policy")
	ErrInitializationFailed = errors.New("plugify: initialization failed")
	ErrJitCodegenFailed    = errors.New("plugify: JIT code generation failed")
	ErrWrongThread         = errors.New("plugify: provider accessed from wrong thread")
	ErrAlreadyRegistered   = errors.New("plugify: service already registered")
	ErrServiceNotFound     = errors.New("plugify: service not found")
)
