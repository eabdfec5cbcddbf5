package opfactory

import (
	"fmt"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// Failure classes. Match them with errors.Is; every error returned by Compile wraps one
// of these or an error from a collaborator (catalog, backend).
var (
	// ErrMissingRole means a behavior needs a tensor role the operator has not bound.
	ErrMissingRole = errors.New("required tensor role not bound")
	// ErrInvalidAttr means an attribute is missing, has the wrong type or an unsupported value.
	ErrInvalidAttr = errors.New("invalid attribute")
	// ErrUnknownBehavior means a configuration requested a behavior that does not exist.
	ErrUnknownBehavior = errors.New("unknown behavior")
	// ErrUnmappedTensor is returned in strict mode for raw names outside the role dictionary.
	ErrUnmappedTensor = errors.New("raw tensor name has no role")
	// ErrMissingVariable is returned in strict mode for names absent from the catalog.
	ErrMissingVariable = errors.New("variable not found in catalog")
	// ErrRankExceeded is returned for tensors with more than four axes.
	ErrRankExceeded = tensor.ErrRankExceeded
	// ErrUncommitted is returned by Compile when the previous operator's shapes were not committed.
	ErrUncommitted = catalog.ErrUncommitted
)

// CompileError reports the operator, and the behavior when known, that failed to compile.
type CompileError struct {
	Op       string // Operator kind as declared.
	Layer    int    // Position of the operator in the graph.
	Behavior string // Behavior being applied, empty outside behavior execution.
	Err      error
}

// Error implements error.
func (e *CompileError) Error() string {
	if e.Behavior != "" {
		return fmt.Sprintf("op %s (layer %d), behavior %s: %v", e.Op, e.Layer, e.Behavior, e.Err)
	}
	return fmt.Sprintf("op %s (layer %d): %v", e.Op, e.Layer, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
