package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrExecutorNotFound = errors.New("executor not found")

// ValidationFailedError aggregates every finding of a failed readiness check
// into the single error the engine refuses execution with. No execution
// record exists when this is returned.
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("workflow validation failed: %s", strings.Join(e.Errors, "; "))
}

// CycleError is returned by the scheduler when the workflow graph is not
// acyclic. Remaining lists the nodes that could not be ordered.
type CycleError struct {
	WorkflowID string
	Remaining  []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("workflow %s contains a cycle involving nodes %v", e.WorkflowID, e.Remaining)
}

// NotImplementedError is the fail-loud contract for node types the engine
// cannot run: either no executor is registered for the type, or the type is
// an explicit stub. The node identity is carried so callers can locate and
// remove the offending node.
type NotImplementedError struct {
	NodeID   string
	NodeName string
	NodeType NodeType
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("node type %q is not supported yet: remove node %q (%s) from the workflow to execute it", e.NodeType, e.NodeName, e.NodeID)
}

// NodeExecutionError wraps any failure raised by a node executor's business
// logic. It aborts the run; remaining scheduled nodes do not execute.
type NodeExecutionError struct {
	NodeID   string
	NodeName string
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q (%s) failed: %v", e.NodeName, e.NodeID, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// InvalidConditionError is the decision executor's failure mode: the condition
// expression did not parse, referenced a name outside the closed variable set,
// or called a function outside the allowlist.
type InvalidConditionError struct {
	Expression string
	Reason     string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid condition %q: %s", e.Expression, e.Reason)
}
