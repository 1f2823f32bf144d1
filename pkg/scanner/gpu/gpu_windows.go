//go:build bt2 && windows

package gpu

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/Amr-9/BSGSHunter/internal/logs"
	"github.com/Amr-9/BSGSHunter/pkg/bsgs"
)

// Scanner calls bsgsGPU in bt2.dll.
type Scanner struct {
	mu   sync.Mutex
	path string
	dll  *syscall.LazyDLL
	scan *syscall.LazyProc
	free *syscall.LazyProc
}

// Available reports whether the adapter is compiled in.
func Available() bool { return true }

// Open loads the library at path, or .\bt2.dll when path is empty.
func Open(path string) (*Scanner, error) {
	abs, err := LocateLibrary(path, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	dll := syscall.NewLazyDLL(abs)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", abs, err)
	}
	s := &Scanner{
		path: abs,
		dll:  dll,
		scan: dll.NewProc(symbolScan),
		free: dll.NewProc(symbolFree),
	}
	if err := s.scan.Find(); err != nil {
		return nil, fmt.Errorf("symbol %s: %w", symbolScan, err)
	}
	if err := s.free.Find(); err != nil {
		return nil, fmt.Errorf("symbol %s: %w", symbolFree, err)
	}
	logs.Debug("loaded %s", abs)
	return s, nil
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

	keyspace, err := syscall.BytePtrFromString(req.RangeSpec)
	if err != nil {
		return nil, err
	}
	bp, err := syscall.BytePtrFromString(req.BabySize)
	if err != nil {
		return nil, err
	}
	var table uintptr
	if len(req.Table) > 0 {
		table = uintptr(unsafe.Pointer(&req.Table[0]))
	}

	ret, _, _ := s.scan.Call(
		uintptr(req.Threads),
		uintptr(req.Blocks),
		uintptr(req.PointsPerThread),
		uintptr(req.RangeBits),
		uintptr(req.Device),
		table,
		uintptr(req.TableCount),
		uintptr(unsafe.Pointer(keyspace)),
		uintptr(unsafe.Pointer(bp)),
	)
	runtime.KeepAlive(req.Table)
	runtime.KeepAlive(keyspace)
	runtime.KeepAlive(bp)
	return &dllResult{ptr: ret, free: s.free}, nil
}

// Close is a no-op; the DLL stays mapped for the life of the process.
func (s *Scanner) Close() error {
	return nil
}

// dllResult owns the string returned by bsgsGPU until Release.
type dllResult struct {
	ptr      uintptr
	free     *syscall.LazyProc
	released atomic.Bool
}

func (r *dllResult) Text() string {
	if r.ptr == 0 || r.released.Load() {
		return ""
	}
	var buf []byte
	for p := unsafe.Pointer(r.ptr); *(*byte)(p) != 0; p = unsafe.Add(p, 1) {
		buf = append(buf, *(*byte)(p))
	}
	return string(buf)
}

func (r *dllResult) Release() {
	if r.released.Swap(true) || r.ptr == 0 {
		return
	}
	r.free.Call(r.ptr)
}
