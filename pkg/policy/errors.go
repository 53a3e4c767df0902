package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPolicyIdentifier is returned for a policy token that names no policy
	ErrInvalidPolicyIdentifier = errors.New("invalid policy identifier")

	// ErrMalformedNumericParameter is returned when a buffer size is not a real number
	ErrMalformedNumericParameter = errors.New("malformed numeric parameter")
)

// TokenError reports an unrecognised policy token
type TokenError struct {
	Token string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s %q: the policy should be one of FCFS, SIGNAL or STOP", ErrInvalidPolicyIdentifier, e.Token)
}

func (e *TokenError) Unwrap() error { return ErrInvalidPolicyIdentifier }

// ParameterError reports a numeric argument that failed to parse
type ParameterError struct {
	Position int
	Name     string
	Value    string
	Err      error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: argument %d (%s) %q: %v", ErrMalformedNumericParameter, e.Position, e.Name, e.Value, e.Err)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrMalformedNumericParameter
}

func (e *ParameterError) Unwrap() error { return e.Err }
