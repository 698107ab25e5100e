//go:build linux

package cuvid

// Mirrors of the cuviddec.h, nvcuvid.h and cuda.h structures for LP64
// Linux, where C long is 64 bits.

const (
	createPreferCUVID = 0x04

	packetEndOfStream = 0x01

	memoryTypeHost   = 1
	memoryTypeDevice = 2
)

// decodeCaps mirrors CUVIDDECODECAPS.
type decodeCaps struct {
	CodecType            uint32
	ChromaFormat         uint32
	BitDepthMinus8       uint32
	_                    [3]uint32
	IsSupported          uint8
	NumNVDECs            uint8
	OutputFormatMask     uint16
	MaxWidth             uint32
	MaxHeight            uint32
	MaxMBCount           uint32
	MinWidth             uint16
	MinHeight            uint16
	IsHistogramSupported uint8
	CounterBitDepth      uint8
	MaxHistogramBins     uint16
	_                    [10]uint32
}

// rect16 mirrors the short rectangles of CUVIDDECODECREATEINFO.
type rect16 struct {
	Left, Top, Right, Bottom int16
}

// decodeCreateInfo mirrors CUVIDDECODECREATEINFO.
type decodeCreateInfo struct {
	Width             uint64
	Height            uint64
	NumDecodeSurfaces uint64
	CodecType         uint32
	ChromaFormat      uint32
	CreationFlags     uint64
	BitDepthMinus8    uint64
	IntraDecodeOnly   uint64
	MaxWidth          uint64
	MaxHeight         uint64
	_                 uint64
	DisplayArea       rect16
	OutputFormat      uint32
	DeinterlaceMode   uint32
	TargetWidth       uint64
	TargetHeight      uint64
	NumOutputSurfaces uint64
	VidLock           uintptr
	TargetRect        rect16
	EnableHistogram   uint64
	_                 [4]uint64
}

// videoFormat mirrors CUVIDEOFORMAT.
type videoFormat struct {
	Codec                uint32
	FrameRateNum         uint32
	FrameRateDen         uint32
	ProgressiveSequence  uint8
	BitDepthLumaMinus8   uint8
	BitDepthChromaMinus8 uint8
	MinNumDecodeSurfaces uint8
	CodedWidth           uint32
	CodedHeight          uint32
	DisplayLeft          int32
	DisplayTop           int32
	DisplayRight         int32
	DisplayBottom        int32
	ChromaFormat         uint32
	Bitrate              uint32
	AspectX              int32
	AspectY              int32
	SignalFlags          uint8
	ColorPrimaries       uint8
	TransferCharacter    uint8
	MatrixCoefficients   uint8
	SeqHdrDataLength     uint32
}

// videoFormatEx mirrors CUVIDEOFORMATEX with the AV1 sequence header
// member of its union.
type videoFormatEx struct {
	Format       videoFormat
	AV1MaxWidth  uint32
	AV1MaxHeight uint32
	_            [1016]byte
}

// parserParams mirrors CUVIDPARSERPARAMS.
type parserParams struct {
	CodecType              uint32
	MaxNumDecodeSurfaces   uint32
	ClockRate              uint32
	ErrorThreshold         uint32
	MaxDisplayDelay        uint32
	Flags                  uint32
	_                      [4]uint32
	UserData               uintptr
	SequenceCallback       uintptr
	DecodePictureCallback  uintptr
	DisplayPictureCallback uintptr
	OperatingPointCallback uintptr
	SEIMessageCallback     uintptr
	_                      [5]uintptr
	ExtVideoInfo           uintptr
}

// picParamsHeader mirrors the leading fields of CUVIDPICPARAMS.
type picParamsHeader struct {
	PicWidthInMbs    int32
	FrameHeightInMbs int32
	CurrPicIdx       int32
	FieldPicFlag     int32
	BottomFieldFlag  int32
	SecondField      int32
}

// operatingPointInfo mirrors the AV1 member of CUVIDOPERATINGPOINTINFO.
type operatingPointInfo struct {
	Codec uint32
	Count uint8
	_     [3]uint8
	IDC   [32]uint16
}

// sourceDataPacket mirrors CUVIDSOURCEDATAPACKET.
type sourceDataPacket struct {
	Flags       uint64
	PayloadSize uint64
	Payload     *byte
	Timestamp   int64
}

// procParams mirrors CUVIDPROCPARAMS.
type procParams struct {
	ProgressiveFrame int32
	SecondField      int32
	TopFieldFirst    int32
	UnpairedField    int32
	_                uint32
	_                uint32
	RawInputDptr     uint64
	RawInputPitch    uint32
	RawInputFormat   uint32
	RawOutputDptr    uint64
	RawOutputPitch   uint32
	_                uint32
	OutputStream     uintptr
	_                [46]uint32
	HistogramDptr    uintptr
	_                [1]uintptr
}

// getDecodeStatus mirrors CUVIDGETDECODESTATUS.
type getDecodeStatus struct {
	Status int32
	_      [31]uint32
	_      [8]uintptr
}

// memcpy2D mirrors CUDA_MEMCPY2D.
type memcpy2D struct {
	SrcXInBytes   uintptr
	SrcY          uintptr
	SrcMemoryType uint32
	SrcHost       uintptr
	SrcDevice     uint64
	SrcArray      uintptr
	SrcPitch      uintptr
	DstXInBytes   uintptr
	DstY          uintptr
	DstMemoryType uint32
	DstHost       *byte
	DstDevice     uint64
	DstArray      uintptr
	DstPitch      uintptr
	WidthInBytes  uintptr
	Height        uintptr
}
