package module

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/linuxmatters/ladspa-source/internal/audioinfo"
	"github.com/linuxmatters/ladspa-source/internal/graph"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Errors surfaced by module creation and loading.
var (
	ErrMalformedArgument = props.ErrMalformedArgument
	ErrInvalidAudioInfo  = audioinfo.ErrInvalidAudioInfo
	ErrMissingPlugin     = graph.ErrMissingPlugin
	ErrMissingLabel      = graph.ErrMissingLabel

	ErrHostLoadFailed = errors.New("host failed to load module")
	ErrOutOfMemory    = errors.New("out of memory")
	ErrInvalidState   = errors.New("invalid module state")
	ErrUnknownModule  = errors.New("unknown module")
)

// HostLoadError reports a delegated module the host refused to load. The
// host's error code is preserved.
type HostLoadError struct {
	Module string
	Code   syscall.Errno
	Err    error
}

// NewHostLoadError wraps err, extracting an errno from it when present.
func NewHostLoadError(module string, err error) *HostLoadError {
	code := syscall.EIO
	var errno syscall.Errno
	if errors.As(err, &errno) {
		code = errno
	}
	return &HostLoadError{Module: module, Code: code, Err: err}
}

func (e *HostLoadError) Error() string {
	return fmt.Sprintf("load %s: %v (code %d)", e.Module, e.Err, int(e.Code))
}

func (e *HostLoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrHostLoadFailed, and ErrOutOfMemory when the host ran out of
// memory.
func (e *HostLoadError) Is(target error) bool {
	switch target {
	case ErrHostLoadFailed:
		return true
	case ErrOutOfMemory:
		return e.Code == syscall.ENOMEM
	}
	return false
}
