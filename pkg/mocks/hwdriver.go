package mocks

import (
	"fmt"

	"github.com/user/heiftile/pkg/hwsession"
)

// HWDriver is a fake hwsession.Driver that hands out a single HWDevice.
type HWDriver struct {
	NameValue string
	OpenErr   error
	Device    *HWDevice

	Opened []int
}

// NewHWDriver creates a driver whose device reports format and caps.
func NewHWDriver(format hwsession.VideoFormat, caps hwsession.Caps) *HWDriver {
	return &HWDriver{
		NameValue: "fake",
		Device:    NewHWDevice(format, caps),
	}
}

func (d *HWDriver) Name() string {
	return d.NameValue
}

func (d *HWDriver) Open(ordinal int) (hwsession.Device, error) {
	d.Opened = append(d.Opened, ordinal)
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	d.Device.Closed = false
	return d.Device, nil
}

// HWDevice is a fake hwsession.Device. Its parser reports Sequences and then
// Pictures on every Parse call; mapped surfaces hold a deterministic pattern.
type HWDevice struct {
	CapsValue hwsession.Caps
	Sequences []hwsession.VideoFormat
	Pictures  []hwsession.PictureParams
	// OperatingPoints, when set, is reported before the sequence.
	OperatingPoints *hwsession.OperatingPointInfo
	Status          hwsession.DecodeStatus

	CapsErr       error
	NewParserErr  error
	NewDecoderErr error
	DecodeErr     error
	MapErr        error
	SyncErr       error

	// Recorded interactions.
	Calls          []string
	CapsQueries    []hwsession.CapsQuery
	DecoderConfigs []hwsession.DecoderConfig
	Parsed         [][]byte
	OperatingPoint int
	MappedProc     []hwsession.ProcParams
	Closed         bool
}

// NewHWDevice creates a device with one sequence and one frame picture.
func NewHWDevice(format hwsession.VideoFormat, caps hwsession.Caps) *HWDevice {
	return &HWDevice{
		CapsValue: caps,
		Sequences: []hwsession.VideoFormat{format},
		Pictures:  []hwsession.PictureParams{{PictureIndex: 0}},
		Status:    hwsession.StatusSuccess,
	}
}

// SurfacePitch returns the pitch of surfaces mapped from a decoder created with cfg.
func SurfacePitch(cfg hwsession.DecoderConfig) int {
	bps := 1
	if cfg.OutputFormat == hwsession.SurfaceP016 || cfg.OutputFormat == hwsession.SurfaceYUV444_16Bit {
		bps = 2
	}
	return (cfg.Width*bps + 255) &^ 255
}

// SurfaceByte returns the fake surface content at offset for a picture.
func SurfaceByte(pictureIndex, offset int) byte {
	return byte(offset*7 + offset/251 + pictureIndex*13)
}

func (d *HWDevice) record(call string) {
	d.Calls = append(d.Calls, call)
}

// Count returns how often call was recorded.
func (d *HWDevice) Count(call string) int {
	n := 0
	for _, c := range d.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (d *HWDevice) Caps(q hwsession.CapsQuery) (hwsession.Caps, error) {
	d.record("caps")
	d.CapsQueries = append(d.CapsQueries, q)
	if d.CapsErr != nil {
		return hwsession.Caps{}, d.CapsErr
	}
	return d.CapsValue, nil
}

func (d *HWDevice) NewParser(codec hwsession.Codec, cb hwsession.Callbacks) (hwsession.Parser, error) {
	d.record("newParser")
	if d.NewParserErr != nil {
		return nil, d.NewParserErr
	}
	return &hwParser{dev: d, cb: cb}, nil
}

func (d *HWDevice) NewDecoder(cfg hwsession.DecoderConfig) (hwsession.Decoder, error) {
	d.record("newDecoder")
	d.DecoderConfigs = append(d.DecoderConfigs, cfg)
	if d.NewDecoderErr != nil {
		return nil, d.NewDecoderErr
	}
	return &hwDecoder{dev: d, cfg: cfg}, nil
}

func (d *HWDevice) Synchronize() error {
	d.record("sync")
	return d.SyncErr
}

func (d *HWDevice) Close() error {
	d.record("closeDevice")
	d.Closed = true
	return nil
}

type hwParser struct {
	dev *HWDevice
	cb  hwsession.Callbacks
}

func (p *hwParser) Parse(data []byte, endOfStream bool) error {
	p.dev.record("parse")
	p.dev.Parsed = append(p.dev.Parsed, append([]byte(nil), data...))

	if p.dev.OperatingPoints != nil {
		p.dev.OperatingPoint = p.cb.HandleOperatingPoint(p.dev.OperatingPoints)
	}
	for i := range p.dev.Sequences {
		f := p.dev.Sequences[i]
		if _, err := p.cb.HandleSequence(&f); err != nil {
			return err
		}
	}
	for i := range p.dev.Pictures {
		pic := p.dev.Pictures[i]
		if err := p.cb.HandlePictureDecode(&pic); err != nil {
			return err
		}
	}
	return nil
}

func (p *hwParser) Close() error {
	p.dev.record("closeParser")
	return nil
}

type hwDecoder struct {
	dev *HWDevice
	cfg hwsession.DecoderConfig
}

func (d *hwDecoder) DecodePicture(p *hwsession.PictureParams) error {
	d.dev.record("decodePicture")
	return d.dev.DecodeErr
}

func (d *hwDecoder) DecodeStatus(pictureIndex int) (hwsession.DecodeStatus, error) {
	d.dev.record("status")
	return d.dev.Status, nil
}

func (d *hwDecoder) MapFrame(pictureIndex int, proc hwsession.ProcParams) (hwsession.Surface, error) {
	d.dev.record("map")
	d.dev.MappedProc = append(d.dev.MappedProc, proc)
	if d.dev.MapErr != nil {
		return nil, d.dev.MapErr
	}

	pitch := SurfacePitch(d.cfg)
	rows := (d.cfg.TargetHeight + 1) &^ 1
	mem := make([]byte, pitch*rows*3)
	for i := range mem {
		mem[i] = SurfaceByte(pictureIndex, i)
	}
	return &hwSurface{dev: d.dev, pitch: pitch, mem: mem}, nil
}

func (d *hwDecoder) Close() error {
	d.dev.record("closeDecoder")
	return nil
}

type hwSurface struct {
	dev   *HWDevice
	pitch int
	mem   []byte
}

func (s *hwSurface) Pitch() int {
	return s.pitch
}

func (s *hwSurface) CopyRows(dst []byte, dstPitch, srcOffset, widthBytes, height int) error {
	s.dev.record("copy")
	if height == 0 {
		return nil
	}
	last := srcOffset + (height-1)*s.pitch + widthBytes
	if srcOffset < 0 || last > len(s.mem) {
		return fmt.Errorf("source rows [%d, %d) outside surface of %d bytes", srcOffset, last, len(s.mem))
	}
	if (height-1)*dstPitch+widthBytes > len(dst) {
		return fmt.Errorf("destination of %d bytes too small", len(dst))
	}
	for r := 0; r < height; r++ {
		copy(dst[r*dstPitch:r*dstPitch+widthBytes], s.mem[srcOffset+r*s.pitch:])
	}
	return nil
}

func (s *hwSurface) Unmap() error {
	s.dev.record("unmap")
	return nil
}

var (
	_ hwsession.Driver  = (*HWDriver)(nil)
	_ hwsession.Device  = (*HWDevice)(nil)
	_ hwsession.Parser  = (*hwParser)(nil)
	_ hwsession.Decoder = (*hwDecoder)(nil)
	_ hwsession.Surface = (*hwSurface)(nil)
)
