package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsynchronizable means two traces could not be realigned within the window.
	ErrUnsynchronizable = errors.New("traces are not synchronizable")
	// ErrMalformedRecord means a raw record cannot become a point.
	ErrMalformedRecord = errors.New("malformed trace record")
	// ErrOutOfRange is returned for index queries beyond the recorded length.
	ErrOutOfRange = errors.New("index out of range")
	// ErrEndOfSequence is returned by Next on an exhausted sequence.
	ErrEndOfSequence = errors.New("end of sequence")
)

// UnsynchronizableError carries the full indices where realignment failed.
type UnsynchronizableError struct {
	Reference int
	Candidate int
	Window    int
}

func (e *UnsynchronizableError) Error() string {
	return fmt.Sprintf("%s: no match within window %d from reference #%d / candidate #%d",
		ErrUnsynchronizable, e.Window, e.Reference, e.Candidate)
}

func (e *UnsynchronizableError) Unwrap() error {
	return ErrUnsynchronizable
}

// MalformedRecordError locates the record that could not be converted.
type MalformedRecordError struct {
	Thread string
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: thread %q record %d: %s", ErrMalformedRecord, e.Thread, e.Index, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

func outOfRange(i, length int) error {
	return fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, i, length)
}
