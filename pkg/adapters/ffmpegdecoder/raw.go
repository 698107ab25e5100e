package ffmpegdecoder

import (
	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/nalu"
)

var chromaByIDC = [...]heifimage.Chroma{
	heifimage.ChromaMonochrome,
	heifimage.Chroma420,
	heifimage.Chroma422,
	heifimage.Chroma444,
}

// toImage splits a planar rawvideo picture into image planes. Samples
// above 8 bits are little-endian, as heifimage stores them.
func toImage(raw []byte, info nalu.StreamInfo) (*heifimage.Image, error) {
	if info.ChromaFormat < 0 || info.ChromaFormat >= len(chromaByIDC) {
		return nil, decodeerr.New(decodeerr.UnsupportedCodecOrFormat, "chroma_format_idc %d", info.ChromaFormat)
	}
	chroma := chromaByIDC[info.ChromaFormat]
	img := heifimage.New(info.Width, info.Height, chroma)

	type planeSpec struct {
		ch   heifimage.Channel
		w, h int
	}
	specs := []planeSpec{{heifimage.ChannelY, info.Width, info.Height}}
	if chroma != heifimage.ChromaMonochrome {
		cw, chh := heifimage.ChromaSize(chroma, info.Width, info.Height)
		specs = append(specs,
			planeSpec{heifimage.ChannelCb, cw, chh},
			planeSpec{heifimage.ChannelCr, cw, chh},
		)
	}

	off := 0
	for _, sp := range specs {
		p, err := img.AddPlane(sp.ch, sp.w, sp.h, info.BitDepth)
		if err != nil {
			return nil, decodeerr.Wrap(decodeerr.InternalConsistency, err, "allocate %s plane", sp.ch)
		}
		rowBytes := p.RowBytes()
		need := rowBytes * sp.h
		if len(raw)-off < need {
			return nil, decodeerr.New(decodeerr.DecodeFailed,
				"ffmpeg produced %d bytes, %s plane needs %d at offset %d", len(raw), sp.ch, need, off)
		}
		for y := 0; y < sp.h; y++ {
			copy(p.Row(y), raw[off+y*rowBytes:off+(y+1)*rowBytes])
		}
		off += need
	}
	return img, nil
}
