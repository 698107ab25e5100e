// Package cuvid binds the CUDA driver API and the NVDEC video decoder
// (libcuda and libnvcuvid) without cgo, and implements hwsession.Driver on
// top of them.
//
// Libraries are located with HEIFTILE_CUDA_LIB and HEIFTILE_NVCUVID_LIB
// first, then the dynamic linker search path.
package cuvid

import (
	"errors"
	"fmt"

	"github.com/user/heiftile/pkg/hwsession"
)

var (
	// ErrLibraryNotFound is returned when libcuda or libnvcuvid cannot be loaded.
	ErrLibraryNotFound = errors.New("cuvid: CUDA driver or NVDEC library not found")

	// ErrPlatformNotSupported is returned on platforms without a binding.
	ErrPlatformNotSupported = errors.New("cuvid: platform not supported")
)

// Result is a CUresult status code.
type Result int32

const resultSuccess Result = 0

var resultNames = map[Result]string{
	1:   "CUDA_ERROR_INVALID_VALUE",
	2:   "CUDA_ERROR_OUT_OF_MEMORY",
	3:   "CUDA_ERROR_NOT_INITIALIZED",
	4:   "CUDA_ERROR_DEINITIALIZED",
	100: "CUDA_ERROR_NO_DEVICE",
	101: "CUDA_ERROR_INVALID_DEVICE",
	200: "CUDA_ERROR_INVALID_IMAGE",
	201: "CUDA_ERROR_INVALID_CONTEXT",
	205: "CUDA_ERROR_MAP_FAILED",
	206: "CUDA_ERROR_UNMAP_FAILED",
	300: "CUDA_ERROR_INVALID_SOURCE",
	400: "CUDA_ERROR_INVALID_HANDLE",
	700: "CUDA_ERROR_ILLEGAL_ADDRESS",
	801: "CUDA_ERROR_NOT_SUPPORTED",
	999: "CUDA_ERROR_UNKNOWN",
}

// Error implements the error interface.
func (r Result) Error() string {
	if name, ok := resultNames[r]; ok {
		return fmt.Sprintf("cuvid: %s (%d)", name, int32(r))
	}
	return fmt.Sprintf("cuvid: CUresult %d", int32(r))
}

// check converts a status code into an error annotated with the call name.
func check(call string, r Result) error {
	if r == resultSuccess {
		return nil
	}
	return fmt.Errorf("%s: %w", call, r)
}

// Driver opens NVDEC devices.
type Driver struct{}

// New creates a new Driver.
func New() *Driver {
	return &Driver{}
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return "cuvid"
}

// Open initializes CUDA and creates a context, lock and stream on the
// device with the given ordinal.
func (d *Driver) Open(ordinal int) (hwsession.Device, error) {
	return openDevice(ordinal)
}

// IsAvailable reports whether both libraries can be loaded.
func IsAvailable() bool {
	return load() == nil
}

var _ hwsession.Driver = (*Driver)(nil)
