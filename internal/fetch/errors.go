package fetch

import "fmt"

// ChecksumError reports downloaded bytes that do not match a declared
// digest. Both hashes appear in the message; they are the primary debugging
// signal for a moved or tampered upstream artifact.
type ChecksumError struct {
	Name      string
	Algorithm string
	Want      string
	Got       string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("archive %q: %s mismatch: declared %s, downloaded bytes hash to %s",
		e.Name, e.Algorithm, e.Want, e.Got)
}

// PatchApplyError reports a declared patch that failed to apply cleanly.
// The extracted tree is removed before this error propagates.
type PatchApplyError struct {
	Name  string
	Patch string
	Err   error
}

func (e *PatchApplyError) Error() string {
	return fmt.Sprintf("archive %q: patch %s failed to apply: %v", e.Name, e.Patch, e.Err)
}

func (e *PatchApplyError) Unwrap() error {
	return e.Err
}
