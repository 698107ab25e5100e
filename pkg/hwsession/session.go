// Package hwsession drives a hardware video decoder for a single tile:
// sequence negotiation against the device capabilities, picture submission,
// and readback of decoded pictures into a pool of host frames.
//
// The parser calls back into the Session synchronously from Decode, so a
// Session must be driven from one goroutine at a time.
package hwsession

import (
	"errors"
	"fmt"
	"math"

	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/planes"
	"github.com/user/heiftile/pkg/ports"
)

// allLayersBit marks "output all layers" in an operating point selection.
const allLayersBit = 1 << 10

// numOutputSurfaces is the number of mapped output surfaces requested.
const numOutputSurfaces = 2

// State is the lifecycle position of a Session.
type State int

const (
	StateCreated State = iota
	StateAwaitingSequence
	StateNegotiated
	StateDecoding
	StateFaulted
	StateDestroyed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingSequence:
		return "awaiting sequence"
	case StateNegotiated:
		return "negotiated"
	case StateDecoding:
		return "decoding"
	case StateFaulted:
		return "faulted"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	Codec Codec
	// Strict turns picture decode errors into failures.
	Strict bool
	// OperatingPoint and OutputAllLayers select the layers of scalable AV1.
	OperatingPoint  int
	OutputAllLayers bool
}

// Params is the negotiated output geometry.
type Params struct {
	Codec          Codec
	ChromaFormat   ChromaFormat
	OutputFormat   SurfaceFormat
	StreamBitDepth int
	// BitDepth is the significant bits of each output sample.
	BitDepth       int
	SurfaceWidth   int
	SurfaceHeight  int
	DisplayWidth   int
	LumaHeight     int
	ChromaHeight   int
	ChromaPlanes   int
	BytesPerSample int

	NumDecodeSurfaces int
	Deinterlace       DeinterlaceMode
	DisplayArea       Rect
}

// Width returns the stored row width in samples, rounded up to even for
// interleaved chroma formats.
func (p Params) Width() int {
	if p.OutputFormat.Interleaved() {
		return (p.DisplayWidth + 1) &^ 1
	}
	return p.DisplayWidth
}

// FrameSize returns the size of one host frame.
func (p Params) FrameSize() int {
	return p.Width() * (p.LumaHeight + p.ChromaHeight*p.ChromaPlanes) * p.BytesPerSample
}

// Layout describes host frames for plane extraction.
func (p Params) Layout() planes.Layout {
	chroma := heifimage.Chroma420
	switch {
	case p.ChromaFormat == ChromaMonochrome:
		chroma = heifimage.ChromaMonochrome
	case p.OutputFormat.Is444():
		chroma = heifimage.Chroma444
	}
	return planes.Layout{
		Width:          p.Width(),
		DisplayWidth:   p.DisplayWidth,
		LumaHeight:     p.LumaHeight,
		ChromaHeight:   p.ChromaHeight,
		ChromaPlanes:   p.ChromaPlanes,
		BytesPerSample: p.BytesPerSample,
		BitDepth:       p.BitDepth,
		Interleaved:    p.OutputFormat.Interleaved(),
		MSBAligned:     p.OutputFormat.Is16Bit(),
		Chroma:         chroma,
	}
}

// Summary returns a human-readable description of the decoding parameters.
func (p Params) Summary() string {
	return fmt.Sprintf("surfaces=%d crop=[%d, %d, %d, %d] resize=%dx%d deinterlace=%s output=%s frame=%d bytes",
		p.NumDecodeSurfaces,
		p.DisplayArea.Left, p.DisplayArea.Top, p.DisplayArea.Right, p.DisplayArea.Bottom,
		p.SurfaceWidth, p.SurfaceHeight, p.Deinterlace, p.OutputFormat, p.FrameSize())
}

// Session decodes access units on one device.
type Session struct {
	dev     Device
	parser  Parser
	decoder Decoder
	opts    Options
	logger  ports.Logger

	state  State
	fault  error
	format VideoFormat
	params Params
	pool   *FramePool

	decoded  int
	returned int
}

// Open opens the device at ordinal and creates a session on it.
func Open(drv Driver, ordinal int, opts Options, logger ports.Logger) (*Session, error) {
	dev, err := drv.Open(ordinal)
	if err != nil {
		return nil, decodeerr.Wrap(decodeerr.PluginLoadingError, err, "open %s device %d", drv.Name(), ordinal)
	}
	return New(dev, opts, logger)
}

// New creates a session that owns dev and attaches a parser to it.
// dev is closed if the parser cannot be created.
func New(dev Device, opts Options, logger ports.Logger) (*Session, error) {
	s := &Session{
		dev:    dev,
		opts:   opts,
		logger: logger.WithComponent("hwsession"),
		state:  StateCreated,
		pool:   NewFramePool(0),
	}

	parser, err := dev.NewParser(opts.Codec, s)
	if err != nil {
		dev.Close()
		return nil, decodeerr.Wrap(decodeerr.PluginLoadingError, err, "create %s parser", opts.Codec)
	}
	s.parser = parser
	s.state = StateAwaitingSequence
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Params returns the negotiated geometry. ok is false before negotiation.
func (s *Session) Params() (p Params, ok bool) {
	return s.params, s.decoder != nil
}

// PoolSize returns the number of host frames allocated.
func (s *Session) PoolSize() int {
	return s.pool.Len()
}

// SetStrict toggles whether picture decode errors fail the decode.
func (s *Session) SetStrict(strict bool) {
	s.opts.Strict = strict
}

// SetOperatingPoint sets the AV1 operating point used for scalable streams.
func (s *Session) SetOperatingPoint(point int, allLayers bool) {
	s.opts.OperatingPoint = point
	s.opts.OutputAllLayers = allLayers
}

// Decode submits one access unit with end of stream set and returns the
// number of frames produced. Frames from a previous call that were not
// read with Frame are dropped.
func (s *Session) Decode(data []byte) (int, error) {
	switch s.state {
	case StateDestroyed:
		return 0, decodeerr.New(decodeerr.DecoderNotInitialized, "session closed")
	case StateFaulted:
		return 0, s.fault
	}

	s.decoded = 0
	s.returned = 0

	if err := s.parser.Parse(data, true); err != nil {
		if decodeerr.KindOf(err) == decodeerr.KindUnknown {
			err = decodeerr.Wrap(decodeerr.DecodeFailed, err, "parse %d bytes", len(data))
		}
		return 0, err
	}
	return s.decoded, nil
}

// Frame returns the next decoded frame in submission order.
// The slice is owned by the pool and is overwritten by the next Decode.
func (s *Session) Frame() ([]byte, bool) {
	if s.returned >= s.decoded {
		return nil, false
	}
	f := s.pool.At(s.returned)
	s.returned++
	return f, true
}

// Close releases the parser, decoder, host frames and device, in that
// order. It is safe to call more than once and before negotiation.
func (s *Session) Close() error {
	if s == nil || s.state == StateDestroyed {
		return nil
	}

	var errs []error
	if s.parser != nil {
		errs = append(errs, s.parser.Close())
		s.parser = nil
	}
	if s.decoder != nil {
		errs = append(errs, s.decoder.Close())
		s.decoder = nil
	}
	s.pool.Release()
	if s.dev != nil {
		errs = append(errs, s.dev.Close())
		s.dev = nil
	}
	s.state = StateDestroyed
	return errors.Join(errs...)
}

// HandleSequence negotiates output geometry for a new sequence and creates
// the decoder. A repeated sequence with the same geometry keeps the decoder.
func (s *Session) HandleSequence(f *VideoFormat) (int, error) {
	if s.state == StateFaulted {
		return 0, s.fault
	}
	s.logger.Debug("Video input: %s", f.Summary())

	if s.decoder != nil {
		if sameSequence(&s.format, f) {
			return s.params.NumDecodeSurfaces, nil
		}
		s.logger.Debug("Sequence changed, renegotiating")
		if err := s.decoder.Close(); err != nil {
			s.logger.Warn("Failed to close decoder: %s", err)
		}
		s.decoder = nil
		s.decoded = 0
		s.returned = 0
	}

	params, cfg, err := s.negotiate(f)
	if err != nil {
		return 0, s.fail(err)
	}

	dec, err := s.dev.NewDecoder(cfg)
	if err != nil {
		return 0, s.fail(decodeerr.Wrap(decodeerr.DecodeFailed, err, "create decoder"))
	}

	s.decoder = dec
	s.format = *f
	s.params = params
	s.pool.Resize(params.FrameSize())
	s.state = StateNegotiated

	s.logger.Debug("Decoding params: %s", params.Summary())
	return params.NumDecodeSurfaces, nil
}

// negotiate checks f against the device caps and derives the output geometry.
func (s *Session) negotiate(f *VideoFormat) (Params, DecoderConfig, error) {
	caps, err := s.dev.Caps(CapsQuery{
		Codec:        f.Codec,
		ChromaFormat: f.ChromaFormat,
		BitDepth:     f.BitDepth(),
	})
	if err != nil {
		return Params{}, DecoderConfig{}, decodeerr.Wrap(decodeerr.UnsupportedCodecOrFormat, err, "query decoder caps")
	}
	if !caps.Supported {
		return Params{}, DecoderConfig{}, decodeerr.New(decodeerr.UnsupportedCodecOrFormat,
			"%s %s %d-bit not supported on this device", f.Codec, f.ChromaFormat, f.BitDepth())
	}
	if f.CodedWidth > caps.MaxWidth || f.CodedHeight > caps.MaxHeight {
		return Params{}, DecoderConfig{}, decodeerr.New(decodeerr.ResolutionExceeded,
			"%dx%d exceeds maximum %dx%d", f.CodedWidth, f.CodedHeight, caps.MaxWidth, caps.MaxHeight)
	}
	if mbs := (f.CodedWidth >> 4) * (f.CodedHeight >> 4); mbs > caps.MaxMBCount {
		return Params{}, DecoderConfig{}, decodeerr.New(decodeerr.ResolutionExceeded,
			"%d macroblocks exceeds maximum %d", mbs, caps.MaxMBCount)
	}

	out, err := SelectSurfaceFormat(f.ChromaFormat, f.BitDepth(), caps.OutputFormats)
	if err != nil {
		return Params{}, DecoderConfig{}, err
	}

	display := f.DisplayArea
	if display.Width() <= 0 || display.Height() <= 0 {
		display = Rect{Right: f.CodedWidth, Bottom: f.CodedHeight}
	}

	bitDepth := 8
	if out.Is16Bit() {
		bitDepth = f.BitDepth()
	}
	// Rows are copied at the surface sample size. An 8-bit stream on a
	// 16-bit surface is narrowed during plane extraction.
	bps := 1
	if out.Is16Bit() {
		bps = 2
	}

	deinterlace := DeinterlaceAdaptive
	if f.Progressive {
		deinterlace = DeinterlaceWeave
	}

	p := Params{
		Codec:             f.Codec,
		ChromaFormat:      f.ChromaFormat,
		OutputFormat:      out,
		StreamBitDepth:    f.BitDepth(),
		BitDepth:          bitDepth,
		SurfaceWidth:      f.CodedWidth,
		SurfaceHeight:     f.CodedHeight,
		DisplayWidth:      display.Width(),
		LumaHeight:        display.Height(),
		ChromaHeight:      int(math.Ceil(float64(display.Height()) * out.ChromaHeightFactor())),
		ChromaPlanes:      out.ChromaPlaneCount(),
		BytesPerSample:    bps,
		NumDecodeSurfaces: max(f.MinNumDecodeSurfaces, 1),
		Deinterlace:       deinterlace,
		DisplayArea:       display,
	}

	maxWidth := max(f.MaxWidth, f.CodedWidth)
	maxHeight := max(f.MaxHeight, f.CodedHeight)
	if f.Codec != CodecAV1 {
		maxWidth, maxHeight = f.CodedWidth, f.CodedHeight
	}

	cfg := DecoderConfig{
		Codec:             f.Codec,
		ChromaFormat:      f.ChromaFormat,
		OutputFormat:      out,
		BitDepthMinus8:    f.BitDepthLumaMinus8,
		DeinterlaceMode:   deinterlace,
		NumDecodeSurfaces: p.NumDecodeSurfaces,
		NumOutputSurfaces: numOutputSurfaces,
		Width:             f.CodedWidth,
		Height:            f.CodedHeight,
		MaxWidth:          maxWidth,
		MaxHeight:         maxHeight,
		TargetWidth:       f.CodedWidth,
		TargetHeight:      f.CodedHeight,
	}
	return p, cfg, nil
}

// HandlePictureDecode submits a picture and reads back complete frames.
func (s *Session) HandlePictureDecode(p *PictureParams) error {
	if s.decoder == nil {
		return decodeerr.New(decodeerr.DecoderNotInitialized, "picture %d submitted before a sequence header", p.PictureIndex)
	}
	if err := s.decoder.DecodePicture(p); err != nil {
		return decodeerr.Wrap(decodeerr.DecodeFailed, err, "decode picture %d", p.PictureIndex)
	}
	s.state = StateDecoding

	// Display order equals decode order; a field pair is output on its second field.
	if !p.FieldPic || p.SecondField {
		return s.display(DisplayInfo{
			PictureIndex:     p.PictureIndex,
			ProgressiveFrame: !p.FieldPic,
			TopFieldFirst:    !p.BottomField,
		})
	}
	return nil
}

// display maps a decoded picture and copies it into the next pool frame.
func (s *Session) display(d DisplayInfo) (err error) {
	proc := ProcParams{
		ProgressiveFrame: d.ProgressiveFrame,
		SecondField:      d.RepeatFirstField + 1,
		TopFieldFirst:    d.TopFieldFirst,
		UnpairedField:    d.RepeatFirstField < 0,
	}

	surf, err := s.decoder.MapFrame(d.PictureIndex, proc)
	if err != nil {
		return decodeerr.Wrap(decodeerr.DecodeFailed, err, "map picture %d", d.PictureIndex)
	}
	defer func() {
		if uerr := surf.Unmap(); uerr != nil && err == nil {
			err = decodeerr.Wrap(decodeerr.DecodeFailed, uerr, "unmap picture %d", d.PictureIndex)
		}
	}()

	if status, serr := s.decoder.DecodeStatus(d.PictureIndex); serr == nil && status.Failed() {
		if s.opts.Strict {
			return decodeerr.New(decodeerr.DecodeFailed, "picture %d decoded with status %s", d.PictureIndex, status)
		}
		s.logger.Warn("Decode error occurred for picture %d (%s)", d.PictureIndex, status)
	}

	s.decoded++
	frame := s.pool.Acquire(s.decoded)

	p := s.params
	rowBytes := p.Width() * p.BytesPerSample
	lumaBlock := rowBytes * p.LumaHeight
	chromaBlock := rowBytes * p.ChromaHeight
	// Hardware aligns the luma height of the surface to 2.
	chromaOffset := surf.Pitch() * ((p.SurfaceHeight + 1) &^ 1)

	if err := surf.CopyRows(frame, rowBytes, 0, rowBytes, p.LumaHeight); err != nil {
		return decodeerr.Wrap(decodeerr.DecodeFailed, err, "copy luma")
	}
	if err := surf.CopyRows(frame[lumaBlock:], rowBytes, chromaOffset, rowBytes, p.ChromaHeight); err != nil {
		return decodeerr.Wrap(decodeerr.DecodeFailed, err, "copy chroma")
	}
	if p.ChromaPlanes == 2 {
		if err := surf.CopyRows(frame[lumaBlock+chromaBlock:], rowBytes, chromaOffset*2, rowBytes, p.ChromaHeight); err != nil {
			return decodeerr.Wrap(decodeerr.DecodeFailed, err, "copy second chroma")
		}
	}

	if err := s.dev.Synchronize(); err != nil {
		return decodeerr.Wrap(decodeerr.DecodeFailed, err, "synchronize stream")
	}
	return nil
}

// HandleOperatingPoint selects the configured AV1 operating point when the
// stream has more than one, clamping it to 0 when out of range.
func (s *Session) HandleOperatingPoint(info *OperatingPointInfo) int {
	if info.Codec != CodecAV1 || info.Count <= 1 {
		return -1
	}
	if s.opts.OperatingPoint < 0 || s.opts.OperatingPoint >= info.Count {
		s.opts.OperatingPoint = 0
	}

	var idc uint16
	if s.opts.OperatingPoint < len(info.IDC) {
		idc = info.IDC[s.opts.OperatingPoint]
	}
	s.logger.Debug("AV1 operating points: %d, selected %d (IDC %#x, all layers %t)",
		info.Count, s.opts.OperatingPoint, idc, s.opts.OutputAllLayers)

	point := s.opts.OperatingPoint
	if s.opts.OutputAllLayers {
		point |= allLayersBit
	}
	return point
}

// fail moves the session to the faulted state. Only Close is valid afterwards.
func (s *Session) fail(err error) error {
	s.state = StateFaulted
	s.fault = err
	return err
}

func sameSequence(a, b *VideoFormat) bool {
	return a.Codec == b.Codec &&
		a.CodedWidth == b.CodedWidth &&
		a.CodedHeight == b.CodedHeight &&
		a.DisplayArea == b.DisplayArea &&
		a.ChromaFormat == b.ChromaFormat &&
		a.BitDepthLumaMinus8 == b.BitDepthLumaMinus8
}
