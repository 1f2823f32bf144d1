//go:build bt2 && linux && cgo

package gpu

/*
#cgo LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef void* (*bsgs_gpu_fn)(uint32_t, uint32_t, uint32_t, uint32_t, int, char*, uint32_t, char*, char*);
typedef void (*free_memory_fn)(void*);

static void* bt2_open(const char* path) { return dlopen(path, RTLD_NOW | RTLD_LOCAL); }
static void* bt2_sym(void* handle, const char* name) { return dlsym(handle, name); }
static int bt2_close(void* handle) { return dlclose(handle); }
static char* bt2_error(void) { return dlerror(); }

static void* bt2_scan(void* fn, uint32_t threads, uint32_t blocks, uint32_t points, uint32_t bits,
		int device, char* table, uint32_t count, char* keyspace, char* bp) {
	return ((bsgs_gpu_fn)fn)(threads, blocks, points, bits, device, table, count, keyspace, bp);
}

static void bt2_free(void* fn, void* ptr) { ((free_memory_fn)fn)(ptr); }
*/
import "C"

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/Amr-9/BSGSHunter/internal/logs"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
)

// Scanner calls bsgsGPU in a dlopen'ed bt2.so.
type Scanner struct {
	mu     sync.Mutex
	path   string
	handle unsafe.Pointer
	scan   unsafe.Pointer
	free   unsafe.Pointer
}

// Available reports whether the adapter is compiled in.
func Available() bool { return true }

// Open loads the library at path, or ./bt2.so when path is empty.
func Open(path string) (*Scanner, error) {
	abs, err := LocateLibrary(path, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	cpath := C.CString(abs)
	defer C.free(unsafe.Pointer(cpath))
	handle := C.bt2_open(cpath)
	if handle == nil {
		return nil, fmt.Errorf("load %s: %s", abs, C.GoString(C.bt2_error()))
	}

	s := &Scanner{path: abs, handle: handle}
	if s.scan, err = lookup(handle, symbolScan); err != nil {
		C.bt2_close(handle)
		return nil, err
	}
	if s.free, err = lookup(handle, symbolFree); err != nil {
		C.bt2_close(handle)
		return nil, err
	}
	logs.Debug("loaded %s", abs)
	return s, nil
}

func lookup(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	sym := C.bt2_sym(handle, cname)
	if sym == nil {
		return nil, fmt.Errorf("symbol %s: %s", name, C.GoString(C.bt2_error()))
	}
	return sym, nil
}

// Name returns the implementation name.
func (s *Scanner) Name() string {
	return "GPU (bt2)"
}

// Scan implements bsgs.Scanner. The library call cannot be interrupted, so
// ctx is only consulted before it starts.
func (s *Scanner) Scan(ctx context.Context, req *bsgs.ScanRequest) (bsgs.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil, fmt.Errorf("%s is closed", s.path)
	}

	keyspace := C.CString(req.RangeSpec)
	defer C.free(unsafe.Pointer(keyspace))
	bp := C.CString(req.BabySize)
	defer C.free(unsafe.Pointer(bp))

	var table *C.char
	if len(req.Table) > 0 {
		table = (*C.char)(unsafe.Pointer(&req.Table[0]))
	}

	ptr := C.bt2_scan(s.scan,
		C.uint32_t(req.Threads),
		C.uint32_t(req.Blocks),
		C.uint32_t(req.PointsPerThread),
		C.uint32_t(req.RangeBits),
		C.int(req.Device),
		table,
		C.uint32_t(req.TableCount),
		keyspace,
		bp,
	)
	runtime.KeepAlive(req.Table)
	return &cResult{ptr: ptr, free: s.free}, nil
}

// Close unloads the library.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	if C.bt2_close(s.handle) != 0 {
		return fmt.Errorf("unload %s: %s", s.path, C.GoString(C.bt2_error()))
	}
	s.handle = nil
	return nil
}

// cResult owns the string returned by bsgsGPU until Release.
type cResult struct {
	ptr      unsafe.Pointer
	free     unsafe.Pointer
	released atomic.Bool
}

func (r *cResult) Text() string {
	if r.ptr == nil || r.released.Load() {
		return ""
	}
	return C.GoString((*C.char)(r.ptr))
}

func (r *cResult) Release() {
	if r.released.Swap(true) || r.ptr == nil {
		return
	}
	C.bt2_free(r.free, r.ptr)
}
