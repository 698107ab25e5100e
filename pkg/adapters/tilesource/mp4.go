package tilesource

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/hevc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/heiftile/pkg/ports"
)

// fromMP4 extracts the first sync sample of the first video track with its
// parameter sets prepended. Samples are assumed to use 4-byte lengths.
func fromMP4(data []byte) (*ports.Tile, error) {
	mp4File, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	var moov *mp4.MoovBox
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	} else {
		moov = mp4File.Moov
	}
	if moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}

	trak := videoTrack(moov)
	if trak == nil {
		return nil, fmt.Errorf("no video track found")
	}

	tile := &ports.Tile{}
	var params []byte
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		vse, ok := child.(*mp4.VisualSampleEntryBox)
		if !ok {
			continue
		}
		tile.Format = ports.ParseCompressionFormat(vse.Type())
		tile.Width = int(vse.Width)
		tile.Height = int(vse.Height)
		switch {
		case vse.HvcC != nil:
			for _, t := range []hevc.NaluType{hevc.NALU_VPS, hevc.NALU_SPS, hevc.NALU_PPS} {
				params = prefixed(params, vse.HvcC.GetNalusForType(t)...)
			}
		case vse.AvcC != nil:
			params = prefixed(params, vse.AvcC.SPSnalus...)
			params = prefixed(params, vse.AvcC.PPSnalus...)
		}
		break
	}
	if tile.Format == ports.FormatUnknown {
		return nil, fmt.Errorf("unsupported sample entry")
	}

	var sample []byte
	if mp4File.IsFragmented() {
		sample, err = firstFragmentedSample(mp4File, trak.Tkhd.TrackID)
	} else {
		sample, err = firstProgressiveSample(trak.Mdia.Minf.Stbl, data)
	}
	if err != nil {
		return nil, err
	}

	tile.Data = append(params, sample...)
	return tile, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		return trak
	}
	return nil
}

func firstFragmentedSample(mp4File *mp4.File, trackID uint32) ([]byte, error) {
	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	// Falls back to the first sample when no sample is flagged as sync.
	var first []byte
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return nil, fmt.Errorf("get samples: %w", err)
				}
				if data, ok := syncSample(samples); ok {
					return data, nil
				}
				if first == nil && len(samples) > 0 {
					first = samples[0].Data
				}
			}
		}
	}
	if first != nil {
		return first, nil
	}
	return nil, fmt.Errorf("no samples found for track %d", trackID)
}

// syncSample returns the data of the first sample flagged as sync.
func syncSample(samples []mp4.FullSample) ([]byte, bool) {
	for _, sample := range samples {
		if mp4.IsSyncSampleFlags(sample.Flags) {
			return sample.Data, true
		}
	}
	return nil, false
}

func firstProgressiveSample(stbl *mp4.StblBox, data []byte) ([]byte, error) {
	if stbl.Stsz == nil || stbl.Stsc == nil {
		return nil, fmt.Errorf("missing stsc or stsz box")
	}
	if stbl.Stsz.SampleNumber == 0 {
		return nil, fmt.Errorf("track has no samples")
	}

	sampleNr := uint32(1)
	if stbl.Stss != nil && len(stbl.Stss.SampleNumber) > 0 {
		sampleNr = stbl.Stss.SampleNumber[0]
	}

	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
	if err != nil {
		return nil, fmt.Errorf("get chunk nr: %w", err)
	}

	var offset uint64
	switch {
	case stbl.Stco != nil:
		offset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return nil, fmt.Errorf("get chunk offset: %w", err)
		}
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return nil, fmt.Errorf("chunk nr out of range")
		}
		offset = stbl.Co64.ChunkOffset[chunkNr-1]
	default:
		return nil, fmt.Errorf("no stco or co64 box")
	}

	for s := uint32(firstSampleInChunk); s < sampleNr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}
	size := uint64(stbl.Stsz.GetSampleSize(int(sampleNr)))
	if offset+size > uint64(len(data)) {
		return nil, fmt.Errorf("sample %d at %d+%d outside file of %d bytes", sampleNr, offset, size, len(data))
	}
	return data[offset : offset+size], nil
}
