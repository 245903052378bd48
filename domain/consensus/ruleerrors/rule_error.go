package ruleerrors

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock")

	// ErrBlockVersionTooOld indicates the block version is too old and is
	// no longer accepted since the majority of the network has upgraded
	// to a newer version.
	ErrBlockVersionTooOld = newRuleError("ErrBlockVersionTooOld")

	// ErrMissingParent indicates a header points to a parent that is not
	// in the store.
	ErrMissingParent = newRuleError("ErrMissingParent")

	// ErrUnexpectedDifficulty indicates specified bits do not align with
	// the expected value either because it doesn't match the calculated
	// value based on difficulty related rules.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty")

	// ErrNegativeTarget indicates the compact bits of a header have the
	// sign bit set and therefore do not encode a target.
	ErrNegativeTarget = newRuleError("ErrNegativeTarget")

	// ErrTargetOutOfRange indicates the target encoded by a header is zero or
	// above the network's proof of work limit.
	ErrTargetOutOfRange = newRuleError("ErrTargetOutOfRange")

	// ErrInvalidPoW indicates that the block hash is above the target
	// the header commits to.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrUntrustedCheckpoint indicates a checkpoint header that cannot
	// anchor a chain, such as one without chain work.
	ErrUntrustedCheckpoint = newRuleError("ErrUntrustedCheckpoint")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a header failed due to one of the many validation rules.
// The caller can use errors.As or errors.Is to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Message returns the name of the violated rule, without details.
func (e RuleError) Message() string {
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Is matches any RuleError with the same message, so a RuleError carrying
// details still matches its sentinel in errors.Is.
func (e RuleError) Is(target error) bool {
	other, ok := target.(RuleError)
	return ok && other.message == e.message
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// DifficultyMismatch describes a header whose compact bits differ from the
// bits mandated by the difficulty rules in force.
type DifficultyMismatch struct {
	ExpectedBits uint32
	ReceivedBits uint32
	Reason       string
}

// ExpectedBitsHex returns the expected bits as 8 hex digits.
func (e DifficultyMismatch) ExpectedBitsHex() string {
	return fmt.Sprintf("%08x", e.ExpectedBits)
}

// ReceivedBitsHex returns the received bits as 8 hex digits.
func (e DifficultyMismatch) ReceivedBitsHex() string {
	return fmt.Sprintf("%08x", e.ReceivedBits)
}

func (e DifficultyMismatch) Error() string {
	return fmt.Sprintf("%s: expected bits %s, received %s",
		e.Reason, e.ExpectedBitsHex(), e.ReceivedBitsHex())
}

// NewErrUnexpectedDifficulty creates a new DifficultyMismatch error wrapped
// in a RuleError
func NewErrUnexpectedDifficulty(expectedBits, receivedBits uint32, reason string) error {
	return errors.WithStack(RuleError{
		message: "ErrUnexpectedDifficulty",
		inner:   DifficultyMismatch{ExpectedBits: expectedBits, ReceivedBits: receivedBits, Reason: reason},
	})
}

// MissingParent indicates a header points to an unknown parent.
type MissingParent struct {
	MissingParentHash chainhash.Hash
}

func (e MissingParent) Error() string {
	return fmt.Sprintf("missing parent %s", e.MissingParentHash)
}

// NewErrMissingParent creates a new MissingParent error wrapped in a
// RuleError
func NewErrMissingParent(missingParentHash *chainhash.Hash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParent",
		inner:   MissingParent{*missingParentHash},
	})
}

// IsRuleError reports whether err is, or wraps, a RuleError.
func IsRuleError(err error) bool {
	var ruleErr RuleError
	return errors.As(err, &ruleErr)
}
