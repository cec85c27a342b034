package bom

import "fmt"

// ErrorKind classifies a BomError. Callers should branch on Kind via
// errors.As, not string-match Error().
type ErrorKind int

const (
	ErrCircularDependencyKind ErrorKind = iota
	ErrComponentNotFoundKind
	ErrBomNotFoundKind
	ErrInvalidQuantityKind
	ErrInvalidEffectivityRangeKind
	ErrPhantomWithCostKind
	ErrAlternativeGroupNotFoundKind
	ErrVersionConflictKind
	ErrCacheErrorKind
	ErrSerializationKind
	ErrRepositoryKind
	ErrCalculationKind
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCircularDependencyKind:
		return "circular_dependency"
	case ErrComponentNotFoundKind:
		return "component_not_found"
	case ErrBomNotFoundKind:
		return "bom_not_found"
	case ErrInvalidQuantityKind:
		return "invalid_quantity"
	case ErrInvalidEffectivityRangeKind:
		return "invalid_effectivity_range"
	case ErrPhantomWithCostKind:
		return "phantom_with_cost"
	case ErrAlternativeGroupNotFoundKind:
		return "alternative_group_not_found"
	case ErrVersionConflictKind:
		return "version_conflict"
	case ErrCacheErrorKind:
		return "cache_error"
	case ErrSerializationKind:
		return "serialization_error"
	case ErrRepositoryKind:
		return "repository_error"
	case ErrCalculationKind:
		return "calculation_error"
	default:
		return "unknown"
	}
}

// BomError is the single error type returned from every exported
// operation in this package. Its Kind selects among the taxonomy in
// spec §7; Cause carries an underlying error when one exists.
type BomError struct {
	Kind     ErrorKind
	Message  string
	Cause    error
}

func (e *BomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BomError) Unwrap() error {
	return e.Cause
}

func newErr(kind ErrorKind, format string, args ...interface{}) *BomError {
	return &BomError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrCircularDependency(msg string) *BomError {
	return newErr(ErrCircularDependencyKind, "%s", msg)
}

func ErrComponentNotFound(cid ComponentId) *BomError {
	return newErr(ErrComponentNotFoundKind, "component not found: %s", cid)
}

func ErrBomNotFound(cid ComponentId) *BomError {
	return newErr(ErrBomNotFoundKind, "no matching bom header for: %s", cid)
}

func ErrInvalidQuantity(s string) *BomError {
	return newErr(ErrInvalidQuantityKind, "invalid quantity: %s", s)
}

func ErrInvalidEffectivityRange(from, to string) *BomError {
	return newErr(ErrInvalidEffectivityRangeKind, "effective_from %s is after effective_to %s", from, to)
}

func ErrPhantomWithCost(cid ComponentId) *BomError {
	return newErr(ErrPhantomWithCostKind, "phantom component has non-null own cost: %s", cid)
}

func ErrAlternativeGroupNotFound(id string) *BomError {
	return newErr(ErrAlternativeGroupNotFoundKind, "alternative group not found: %s", id)
}

func ErrVersionConflict(expected, found int) *BomError {
	return newErr(ErrVersionConflictKind, "expected version %d, found %d", expected, found)
}

func ErrCache(msg string, cause error) *BomError {
	return &BomError{Kind: ErrCacheErrorKind, Message: msg, Cause: cause}
}

func ErrSerialization(cause error) *BomError {
	return &BomError{Kind: ErrSerializationKind, Message: "serialization failed", Cause: cause}
}

func ErrRepository(cause error) *BomError {
	return &BomError{Kind: ErrRepositoryKind, Message: "repository operation failed", Cause: cause}
}

func ErrCalculation(msg string) *BomError {
	return newErr(ErrCalculationKind, "%s", msg)
}
