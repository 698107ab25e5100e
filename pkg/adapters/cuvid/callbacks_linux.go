//go:build linux

package cuvid

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/user/heiftile/pkg/hwsession"
)

// The parser's user data is an id into this registry rather than a Go
// pointer, which C code may not retain.
var (
	registryMu sync.Mutex
	registry   = map[uintptr]*parser{}
	nextID     uintptr

	callbackOnce sync.Once
	sequenceCB   uintptr
	decodeCB     uintptr
	opPointCB    uintptr
)

func registerParser(p *parser) uintptr {
	registryMu.Lock()
	defer registryMu.Unlock()
	nextID++
	registry[nextID] = p
	return nextID
}

func unregisterParser(id uintptr) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, id)
}

func lookupParser(id uintptr) *parser {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[id]
}

// callbacks returns the C entry points shared by every parser. purego
// callbacks are never freed, so they are created once per process.
func callbacks() (seq, dec, op uintptr) {
	callbackOnce.Do(func() {
		sequenceCB = purego.NewCallback(onSequence)
		decodeCB = purego.NewCallback(onDecodePicture)
		opPointCB = purego.NewCallback(onOperatingPoint)
	})
	return sequenceCB, decodeCB, opPointCB
}

// onSequence returns 0 to stop parsing, otherwise the decode surface count.
func onSequence(userData uintptr, format *videoFormat) int {
	p := lookupParser(userData)
	if p == nil || p.err != nil {
		return 0
	}
	n, err := p.cb.HandleSequence(toVideoFormat(format))
	if err != nil {
		p.err = err
		return 0
	}
	return n
}

// onDecodePicture returns 0 to stop parsing.
func onDecodePicture(userData uintptr, pic *picParamsHeader) int {
	p := lookupParser(userData)
	if p == nil || p.err != nil {
		return 0
	}
	err := p.cb.HandlePictureDecode(&hwsession.PictureParams{
		PictureIndex: int(pic.CurrPicIdx),
		FieldPic:     pic.FieldPicFlag != 0,
		BottomField:  pic.BottomFieldFlag != 0,
		SecondField:  pic.SecondField != 0,
		Raw:          uintptr(unsafe.Pointer(pic)),
	})
	if err != nil {
		p.err = err
		return 0
	}
	return 1
}

func onOperatingPoint(userData uintptr, info *operatingPointInfo) int {
	p := lookupParser(userData)
	if p == nil {
		return -1
	}
	count := int(info.Count)
	idc := make([]uint16, min(count, len(info.IDC)))
	copy(idc, info.IDC[:])
	return p.cb.HandleOperatingPoint(&hwsession.OperatingPointInfo{
		Codec: hwsession.Codec(info.Codec),
		Count: count,
		IDC:   idc,
	})
}

func toVideoFormat(f *videoFormat) *hwsession.VideoFormat {
	out := &hwsession.VideoFormat{
		Codec:                hwsession.Codec(f.Codec),
		FrameRateNum:         int(f.FrameRateNum),
		FrameRateDen:         int(f.FrameRateDen),
		Progressive:          f.ProgressiveSequence != 0,
		BitDepthLumaMinus8:   int(f.BitDepthLumaMinus8),
		BitDepthChromaMinus8: int(f.BitDepthChromaMinus8),
		MinNumDecodeSurfaces: int(f.MinNumDecodeSurfaces),
		CodedWidth:           int(f.CodedWidth),
		CodedHeight:          int(f.CodedHeight),
		DisplayArea: hwsession.Rect{
			Left:   int(f.DisplayLeft),
			Top:    int(f.DisplayTop),
			Right:  int(f.DisplayRight),
			Bottom: int(f.DisplayBottom),
		},
		ChromaFormat: hwsession.ChromaFormat(f.ChromaFormat),
		Bitrate:      int(f.Bitrate),
	}
	// AV1 sequences arrive as CUVIDEOFORMATEX with the sequence header limits.
	if out.Codec == hwsession.CodecAV1 && f.SeqHdrDataLength > 0 {
		ex := (*videoFormatEx)(unsafe.Pointer(f))
		out.MaxWidth = int(ex.AV1MaxWidth)
		out.MaxHeight = int(ex.AV1MaxHeight)
	}
	return out
}
