//go:build linux

package cuvid

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/user/heiftile/pkg/hwsession"
)

var (
	loadOnce sync.Once
	loadErr  error
)

// libcuda
var (
	cuInit              func(flags uint32) Result
	cuDeviceGet         func(device *int32, ordinal int32) Result
	cuCtxCreate         func(ctx *uintptr, flags uint32, device int32) Result
	cuCtxDestroy        func(ctx uintptr) Result
	cuCtxPushCurrent    func(ctx uintptr) Result
	cuCtxPopCurrent     func(ctx *uintptr) Result
	cuStreamCreate      func(stream *uintptr, flags uint32) Result
	cuStreamDestroy     func(stream uintptr) Result
	cuStreamSynchronize func(stream uintptr) Result
	cuMemcpy2DAsync     func(copy *memcpy2D, stream uintptr) Result
)

// libnvcuvid
var (
	cuvidCtxLockCreate      func(lock *uintptr, ctx uintptr) Result
	cuvidCtxLockDestroy     func(lock uintptr) Result
	cuvidGetDecoderCaps     func(caps *decodeCaps) Result
	cuvidCreateDecoder      func(decoder *uintptr, info *decodeCreateInfo) Result
	cuvidDestroyDecoder     func(decoder uintptr) Result
	cuvidDecodePicture      func(decoder uintptr, params uintptr) Result
	cuvidGetDecodeStatus    func(decoder uintptr, picIdx int32, status *getDecodeStatus) Result
	cuvidMapVideoFrame      func(decoder uintptr, picIdx int32, devPtr *uint64, pitch *uint32, proc *procParams) Result
	cuvidUnmapVideoFrame    func(decoder uintptr, devPtr uint64) Result
	cuvidCreateVideoParser  func(parser *uintptr, params *parserParams) Result
	cuvidParseVideoData     func(parser uintptr, packet *sourceDataPacket) Result
	cuvidDestroyVideoParser func(parser uintptr) Result
)

func load() error {
	loadOnce.Do(func() {
		loadErr = loadLibraries()
	})
	return loadErr
}

func loadLibraries() error {
	cuda, err := openFirst(libPaths("HEIFTILE_CUDA_LIB", "libcuda.so.1", "libcuda.so"))
	if err != nil {
		return err
	}
	nvcuvid, err := openFirst(libPaths("HEIFTILE_NVCUVID_LIB", "libnvcuvid.so.1", "libnvcuvid.so"))
	if err != nil {
		return err
	}

	symbols := []struct {
		handle uintptr
		fptr   interface{}
		name   string
	}{
		{cuda, &cuInit, "cuInit"},
		{cuda, &cuDeviceGet, "cuDeviceGet"},
		{cuda, &cuCtxCreate, "cuCtxCreate_v2"},
		{cuda, &cuCtxDestroy, "cuCtxDestroy_v2"},
		{cuda, &cuCtxPushCurrent, "cuCtxPushCurrent_v2"},
		{cuda, &cuCtxPopCurrent, "cuCtxPopCurrent_v2"},
		{cuda, &cuStreamCreate, "cuStreamCreate"},
		{cuda, &cuStreamDestroy, "cuStreamDestroy_v2"},
		{cuda, &cuStreamSynchronize, "cuStreamSynchronize"},
		{cuda, &cuMemcpy2DAsync, "cuMemcpy2DAsync_v2"},

		{nvcuvid, &cuvidCtxLockCreate, "cuvidCtxLockCreate"},
		{nvcuvid, &cuvidCtxLockDestroy, "cuvidCtxLockDestroy"},
		{nvcuvid, &cuvidGetDecoderCaps, "cuvidGetDecoderCaps"},
		{nvcuvid, &cuvidCreateDecoder, "cuvidCreateDecoder"},
		{nvcuvid, &cuvidDestroyDecoder, "cuvidDestroyDecoder"},
		{nvcuvid, &cuvidDecodePicture, "cuvidDecodePicture"},
		{nvcuvid, &cuvidGetDecodeStatus, "cuvidGetDecodeStatus"},
		{nvcuvid, &cuvidMapVideoFrame, "cuvidMapVideoFrame64"},
		{nvcuvid, &cuvidUnmapVideoFrame, "cuvidUnmapVideoFrame64"},
		{nvcuvid, &cuvidCreateVideoParser, "cuvidCreateVideoParser"},
		{nvcuvid, &cuvidParseVideoData, "cuvidParseVideoData"},
		{nvcuvid, &cuvidDestroyVideoParser, "cuvidDestroyVideoParser"},
	}
	for _, s := range symbols {
		// RegisterLibFunc panics on a missing symbol; look it up first.
		sym, err := purego.Dlsym(s.handle, s.name)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, s.name, err)
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return nil
}

func libPaths(env string, names ...string) []string {
	var paths []string
	if p := os.Getenv(env); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, names...)
	for _, dir := range []string{"/usr/lib/x86_64-linux-gnu", "/usr/lib64", "/usr/lib/aarch64-linux-gnu", "/usr/lib/wsl/lib"} {
		paths = append(paths, dir+"/"+names[0])
	}
	return paths
}

func openFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, p := range paths {
		h, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return h, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("%w: %v", ErrLibraryNotFound, lastErr)
}

// device is a CUDA context with its video lock and work stream.
type device struct {
	ordinal int
	ctx     uintptr
	lock    uintptr
	stream  uintptr

	// Host frames stay pinned from CopyRows until Synchronize.
	pinner runtime.Pinner
}

func openDevice(ordinal int) (hwsession.Device, error) {
	if err := load(); err != nil {
		return nil, err
	}
	if err := check("cuInit", cuInit(0)); err != nil {
		return nil, err
	}

	var dev int32
	if err := check("cuDeviceGet", cuDeviceGet(&dev, int32(ordinal))); err != nil {
		return nil, err
	}

	d := &device{ordinal: ordinal}

	// The new context is current on this thread until popped.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := check("cuCtxCreate", cuCtxCreate(&d.ctx, 0, dev)); err != nil {
		return nil, err
	}
	if err := check("cuStreamCreate", cuStreamCreate(&d.stream, 0)); err != nil {
		cuCtxPopCurrent(nil)
		cuCtxDestroy(d.ctx)
		return nil, err
	}
	cuCtxPopCurrent(nil)

	if err := check("cuvidCtxLockCreate", cuvidCtxLockCreate(&d.lock, d.ctx)); err != nil {
		d.withContext(func() Result { return cuStreamDestroy(d.stream) })
		cuCtxDestroy(d.ctx)
		return nil, err
	}
	return d, nil
}

// withContext runs fn with the device context current on a locked thread.
func (d *device) withContext(fn func() Result) Result {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if r := cuCtxPushCurrent(d.ctx); r != resultSuccess {
		return r
	}
	defer cuCtxPopCurrent(nil)
	return fn()
}

func (d *device) Caps(q hwsession.CapsQuery) (hwsession.Caps, error) {
	c := decodeCaps{
		CodecType:      uint32(q.Codec),
		ChromaFormat:   uint32(q.ChromaFormat),
		BitDepthMinus8: uint32(q.BitDepth - 8),
	}
	if err := check("cuvidGetDecoderCaps", d.withContext(func() Result { return cuvidGetDecoderCaps(&c) })); err != nil {
		return hwsession.Caps{}, err
	}
	return hwsession.Caps{
		Supported:     c.IsSupported != 0,
		NumDecoders:   int(c.NumNVDECs),
		OutputFormats: hwsession.FormatMask(c.OutputFormatMask),
		MaxWidth:      int(c.MaxWidth),
		MaxHeight:     int(c.MaxHeight),
		MaxMBCount:    int(c.MaxMBCount),
		MinWidth:      int(c.MinWidth),
		MinHeight:     int(c.MinHeight),
	}, nil
}

func (d *device) NewParser(codec hwsession.Codec, cb hwsession.Callbacks) (hwsession.Parser, error) {
	seq, dec, op := callbacks()

	p := &parser{cb: cb}
	p.id = registerParser(p)

	// Display order equals decode order for still images; the session
	// outputs pictures itself, so no display callback is installed.
	params := parserParams{
		CodecType:              uint32(codec),
		MaxNumDecodeSurfaces:   1,
		ClockRate:              1000,
		MaxDisplayDelay:        0,
		UserData:               p.id,
		SequenceCallback:       seq,
		DecodePictureCallback:  dec,
		OperatingPointCallback: op,
	}
	if err := check("cuvidCreateVideoParser", cuvidCreateVideoParser(&p.handle, &params)); err != nil {
		unregisterParser(p.id)
		return nil, err
	}
	p.dev = d
	return p, nil
}

func (d *device) NewDecoder(cfg hwsession.DecoderConfig) (hwsession.Decoder, error) {
	info := decodeCreateInfo{
		Width:             uint64(cfg.Width),
		Height:            uint64(cfg.Height),
		NumDecodeSurfaces: uint64(cfg.NumDecodeSurfaces),
		CodecType:         uint32(cfg.Codec),
		ChromaFormat:      uint32(cfg.ChromaFormat),
		CreationFlags:     createPreferCUVID,
		BitDepthMinus8:    uint64(cfg.BitDepthMinus8),
		MaxWidth:          uint64(cfg.MaxWidth),
		MaxHeight:         uint64(cfg.MaxHeight),
		DisplayArea: rect16{
			Left:   int16(cfg.DisplayArea.Left),
			Top:    int16(cfg.DisplayArea.Top),
			Right:  int16(cfg.DisplayArea.Right),
			Bottom: int16(cfg.DisplayArea.Bottom),
		},
		OutputFormat:      uint32(cfg.OutputFormat),
		DeinterlaceMode:   uint32(cfg.DeinterlaceMode),
		TargetWidth:       uint64(cfg.TargetWidth),
		TargetHeight:      uint64(cfg.TargetHeight),
		NumOutputSurfaces: uint64(cfg.NumOutputSurfaces),
		VidLock:           d.lock,
	}

	dec := &decoder{dev: d}
	if err := check("cuvidCreateDecoder", d.withContext(func() Result { return cuvidCreateDecoder(&dec.handle, &info) })); err != nil {
		return nil, err
	}
	return dec, nil
}

func (d *device) Synchronize() error {
	defer d.pinner.Unpin()
	return check("cuStreamSynchronize", d.withContext(func() Result { return cuStreamSynchronize(d.stream) }))
}

func (d *device) Close() error {
	d.pinner.Unpin()

	var err error
	if d.stream != 0 {
		err = check("cuStreamDestroy", d.withContext(func() Result { return cuStreamDestroy(d.stream) }))
		d.stream = 0
	}
	if d.lock != 0 {
		if lerr := check("cuvidCtxLockDestroy", cuvidCtxLockDestroy(d.lock)); err == nil {
			err = lerr
		}
		d.lock = 0
	}
	if d.ctx != 0 {
		if cerr := check("cuCtxDestroy", cuCtxDestroy(d.ctx)); err == nil {
			err = cerr
		}
		d.ctx = 0
	}
	return err
}

// parser is a cuvid video parser reporting to hwsession callbacks.
type parser struct {
	id     uintptr
	handle uintptr
	dev    *device
	cb     hwsession.Callbacks

	// err is the first callback failure of the current Parse call.
	err error
}

func (p *parser) Parse(data []byte, endOfStream bool) error {
	p.err = nil

	var pin runtime.Pinner
	defer pin.Unpin()

	packet := sourceDataPacket{PayloadSize: uint64(len(data))}
	if len(data) > 0 {
		pin.Pin(&data[0])
		packet.Payload = &data[0]
	}
	if endOfStream {
		packet.Flags |= packetEndOfStream
	}

	r := p.dev.withContext(func() Result { return cuvidParseVideoData(p.handle, &packet) })
	if p.err != nil {
		return p.err
	}
	return check("cuvidParseVideoData", r)
}

func (p *parser) Close() error {
	if p.handle == 0 {
		return nil
	}
	err := check("cuvidDestroyVideoParser", cuvidDestroyVideoParser(p.handle))
	unregisterParser(p.id)
	p.handle = 0
	return err
}

// decoder owns the decode surfaces of one sequence.
type decoder struct {
	handle uintptr
	dev    *device
}

func (dec *decoder) DecodePicture(p *hwsession.PictureParams) error {
	return check("cuvidDecodePicture", dec.dev.withContext(func() Result {
		return cuvidDecodePicture(dec.handle, p.Raw)
	}))
}

func (dec *decoder) DecodeStatus(pictureIndex int) (hwsession.DecodeStatus, error) {
	var s getDecodeStatus
	if err := check("cuvidGetDecodeStatus", cuvidGetDecodeStatus(dec.handle, int32(pictureIndex), &s)); err != nil {
		return hwsession.StatusInvalid, err
	}
	return hwsession.DecodeStatus(s.Status), nil
}

func (dec *decoder) MapFrame(pictureIndex int, proc hwsession.ProcParams) (hwsession.Surface, error) {
	pp := procParams{
		ProgressiveFrame: boolInt(proc.ProgressiveFrame),
		SecondField:      int32(proc.SecondField),
		TopFieldFirst:    boolInt(proc.TopFieldFirst),
		UnpairedField:    boolInt(proc.UnpairedField),
		OutputStream:     dec.dev.stream,
	}

	var devPtr uint64
	var pitch uint32
	if err := check("cuvidMapVideoFrame", dec.dev.withContext(func() Result {
		return cuvidMapVideoFrame(dec.handle, int32(pictureIndex), &devPtr, &pitch, &pp)
	})); err != nil {
		return nil, err
	}
	return &surface{dec: dec, devPtr: devPtr, pitch: int(pitch)}, nil
}

func (dec *decoder) Close() error {
	if dec.handle == 0 {
		return nil
	}
	err := check("cuvidDestroyDecoder", dec.dev.withContext(func() Result { return cuvidDestroyDecoder(dec.handle) }))
	dec.handle = 0
	return err
}

// surface is a mapped picture in device memory.
type surface struct {
	dec    *decoder
	devPtr uint64
	pitch  int
}

func (s *surface) Pitch() int {
	return s.pitch
}

func (s *surface) CopyRows(dst []byte, dstPitch, srcOffset, widthBytes, height int) error {
	if height == 0 {
		return nil
	}
	if (height-1)*dstPitch+widthBytes > len(dst) {
		return fmt.Errorf("cuvid: destination of %d bytes too small for %d rows", len(dst), height)
	}

	d := s.dec.dev
	d.pinner.Pin(&dst[0])

	m := memcpy2D{
		SrcMemoryType: memoryTypeDevice,
		SrcDevice:     s.devPtr + uint64(srcOffset),
		SrcPitch:      uintptr(s.pitch),
		DstMemoryType: memoryTypeHost,
		DstHost:       &dst[0],
		DstDevice:     uint64(uintptr(unsafe.Pointer(&dst[0]))),
		DstPitch:      uintptr(dstPitch),
		WidthInBytes:  uintptr(widthBytes),
		Height:        uintptr(height),
	}
	return check("cuMemcpy2DAsync", d.withContext(func() Result { return cuMemcpy2DAsync(&m, d.stream) }))
}

func (s *surface) Unmap() error {
	return check("cuvidUnmapVideoFrame", cuvidUnmapVideoFrame(s.dec.handle, s.devPtr))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

var (
	_ hwsession.Device  = (*device)(nil)
	_ hwsession.Parser  = (*parser)(nil)
	_ hwsession.Decoder = (*decoder)(nil)
	_ hwsession.Surface = (*surface)(nil)
)
