package hwsession

import "fmt"

// Driver opens hardware decode devices.
// The cuvid adapter implements it on top of libcuda/libnvcuvid; tests use
// the fake in pkg/mocks.
type Driver interface {
	// Name identifies the driver in logs.
	Name() string

	// Open creates a device context, its lock and a work stream on the
	// device with the given ordinal.
	Open(ordinal int) (Device, error)
}

// Device is an opened context with its lock and stream.
type Device interface {
	// Caps queries decode limits for a codec/chroma/bit depth combination.
	Caps(q CapsQuery) (Caps, error)

	// NewParser creates a bitstream parser that reports to cb.
	NewParser(codec Codec, cb Callbacks) (Parser, error)

	// NewDecoder creates decode surfaces with the negotiated parameters.
	NewDecoder(cfg DecoderConfig) (Decoder, error)

	// Synchronize blocks until all work queued on the stream has completed.
	Synchronize() error

	// Close releases the stream, lock and context.
	Close() error
}

// Callbacks receive parser events. They run on the goroutine that called
// Parser.Parse, in bitstream order.
type Callbacks interface {
	// HandleSequence is called when a sequence header is parsed. It returns
	// the number of decode surfaces the parser should use.
	HandleSequence(f *VideoFormat) (int, error)

	// HandlePictureDecode is called once per coded picture.
	HandlePictureDecode(p *PictureParams) error

	// HandleOperatingPoint selects the operating point of a scalable stream,
	// or returns -1 when selection does not apply.
	HandleOperatingPoint(info *OperatingPointInfo) int
}

// Parser splits an elementary stream into sequences and pictures.
type Parser interface {
	// Parse feeds data to the parser. With endOfStream set, every pending
	// picture is flushed before Parse returns. The first callback error
	// stops parsing and is returned.
	Parse(data []byte, endOfStream bool) error

	Close() error
}

// Decoder owns the decode surfaces of one negotiated sequence.
type Decoder interface {
	// DecodePicture submits a picture.
	DecodePicture(p *PictureParams) error

	// DecodeStatus reports how the picture at index was decoded.
	DecodeStatus(pictureIndex int) (DecodeStatus, error)

	// MapFrame maps the decoded picture at index for reading.
	MapFrame(pictureIndex int, proc ProcParams) (Surface, error)

	Close() error
}

// Surface is a mapped decoded picture in device memory.
type Surface interface {
	// Pitch returns the byte distance between rows.
	Pitch() int

	// CopyRows queues a copy of height rows of widthBytes bytes, starting
	// srcOffset bytes into the surface, into dst with rows dstPitch apart.
	// The copy is complete once the device has been synchronized.
	CopyRows(dst []byte, dstPitch, srcOffset, widthBytes, height int) error

	// Unmap releases the mapping.
	Unmap() error
}

// CapsQuery selects the capability descriptor to fetch.
type CapsQuery struct {
	Codec        Codec
	ChromaFormat ChromaFormat
	BitDepth     int
}

// Caps is the hardware capability descriptor for one CapsQuery.
type Caps struct {
	Supported     bool
	NumDecoders   int
	OutputFormats FormatMask
	MaxWidth      int
	MaxHeight     int
	MaxMBCount    int
	MinWidth      int
	MinHeight     int
}

// Rect is a display area in luma samples. Right and Bottom are exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.Bottom - r.Top }

// VideoFormat is the sequence description reported by the parser.
type VideoFormat struct {
	Codec                Codec
	FrameRateNum         int
	FrameRateDen         int
	Progressive          bool
	BitDepthLumaMinus8   int
	BitDepthChromaMinus8 int
	MinNumDecodeSurfaces int
	CodedWidth           int
	CodedHeight          int
	DisplayArea          Rect
	ChromaFormat         ChromaFormat
	Bitrate              int
	// MaxWidth and MaxHeight come from the AV1 sequence header; zero otherwise.
	MaxWidth  int
	MaxHeight int
}

// BitDepth returns the luma bit depth.
func (f *VideoFormat) BitDepth() int {
	return f.BitDepthLumaMinus8 + 8
}

// Summary returns a human-readable description of the stream.
func (f *VideoFormat) Summary() string {
	sequence := "Interlaced"
	if f.Progressive {
		sequence = "Progressive"
	}
	rate := 0.0
	if f.FrameRateDen != 0 {
		rate = float64(f.FrameRateNum) / float64(f.FrameRateDen)
	}
	return fmt.Sprintf("codec=%s rate=%d/%d (%.2f fps) sequence=%s coded=[%d, %d] display=[%d, %d, %d, %d] chroma=%s depth=%d",
		f.Codec, f.FrameRateNum, f.FrameRateDen, rate, sequence,
		f.CodedWidth, f.CodedHeight,
		f.DisplayArea.Left, f.DisplayArea.Top, f.DisplayArea.Right, f.DisplayArea.Bottom,
		f.ChromaFormat, f.BitDepth())
}

// PictureParams describes one coded picture.
type PictureParams struct {
	PictureIndex int
	FieldPic     bool
	BottomField  bool
	SecondField  bool
	// Raw is the driver's own parameter block, passed back to DecodePicture.
	Raw uintptr
}

// DisplayInfo describes a picture ready for output.
type DisplayInfo struct {
	PictureIndex     int
	ProgressiveFrame bool
	TopFieldFirst    bool
	RepeatFirstField int
}

// ProcParams controls how a picture is mapped.
type ProcParams struct {
	ProgressiveFrame bool
	SecondField      int
	TopFieldFirst    bool
	UnpairedField    bool
}

// OperatingPointInfo lists the operating points of a scalable stream.
type OperatingPointInfo struct {
	Codec Codec
	Count int
	IDC   []uint16
}

// DecoderConfig holds the parameters decode surfaces are created with.
type DecoderConfig struct {
	Codec             Codec
	ChromaFormat      ChromaFormat
	OutputFormat      SurfaceFormat
	BitDepthMinus8    int
	DeinterlaceMode   DeinterlaceMode
	NumDecodeSurfaces int
	NumOutputSurfaces int
	Width             int
	Height            int
	MaxWidth          int
	MaxHeight         int
	TargetWidth       int
	TargetHeight      int
	DisplayArea       Rect
}
