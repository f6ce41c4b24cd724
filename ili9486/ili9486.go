// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9486

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/GermanBionicSystems/tftdevices/ili9486/rgb666"
	"github.com/GermanBionicSystems/tftdevices/tftspi"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// ErrNotInitialized is returned by operations that need the panel to be
// running, before Init succeeded.
var ErrNotInitialized = errors.New("ili9486: display not initialized")

// SizeError is returned when an address window endpoint falls outside the
// logical frame.
type SizeError struct {
	Given int
	Max   int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("ili9486: given size %d, max size %d", e.Given, e.Max)
}

// PixelFormat selects the interface pixel format. It is fixed for the
// lifetime of a Dev.
type PixelFormat uint8

// Supported pixel formats.
const (
	// RGB666 sends 3 bytes per pixel, each channel in the high 6 bits.
	RGB666 PixelFormat = iota
	// RGB565 sends 2 bytes per pixel, RRRRRGGG GGGBBBBB.
	RGB565
)

func (f PixelFormat) String() string {
	switch f {
	case RGB666:
		return "RGB666"
	case RGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

func (f PixelFormat) colmod() byte {
	if f == RGB565 {
		// DPI and DBI 16 bits/pixel.
		return 0x55
	}
	// DPI and DBI 18 bits/pixel.
	return 0x66
}

func (f PixelFormat) bytesPerPixel() int {
	if f == RGB565 {
		return 2
	}
	return 3
}

// appendPixel appends the wire encoding of c.
func (f PixelFormat) appendPixel(b []byte, c rgb666.Color) []byte {
	if f == RGB565 {
		v := c.RGB565()
		return append(b, byte(v>>8), byte(v))
	}
	p := c.Bytes()
	return append(b, p[:]...)
}

// Opts defines the options for the device.
type Opts struct {
	// Width and Height are the native resolution, at Rotate0.
	Width  int
	Height int
	// Format is the pixel format pushed during Init.
	Format PixelFormat
}

// DefaultOpts is the recommended default options, for a 320x480 panel.
var DefaultOpts = Opts{
	Width:  320,
	Height: 480,
	Format: RGB666,
}

// Dev is a handle to an ILI9486 class display controller.
type Dev struct {
	t *tftspi.Transport

	mu             sync.Mutex
	format         PixelFormat
	startW, startH int
	w, h           int
	rot            Rotation
	pcb            PCB
	initialized    bool
}

// New returns a Dev on an existing transport. The transport may be shared
// with other drivers, e.g. a touch controller.
//
// The panel is not touched until Init is called.
func New(t *tftspi.Transport, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 0 || opts.Width > 0xFFFF || opts.Height <= 0 || opts.Height > 0xFFFF {
		return nil, fmt.Errorf("ili9486: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Format != RGB666 && opts.Format != RGB565 {
		return nil, fmt.Errorf("ili9486: invalid pixel format %d", opts.Format)
	}
	d := &Dev{
		t:      t,
		format: opts.Format,
		startW: opts.Width,
		startH: opts.Height,
		w:      opts.Width,
		h:      opts.Height,
		rot:    Rotate0,
		pcb:    PCBNone,
	}
	return d, nil
}

// NewSPI returns a Dev talking over SPI with dc as the Data/Command line and
// rst as the Reset line, using tftspi.DefaultOpts.
func NewSPI(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := tftspi.New(p, dc, rst, &tftspi.DefaultOpts)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("ili9486.Dev{%s, %s, %s}", d.t, image.Pt(d.w, d.h), d.rot)
}

// Init resets the panel and pushes the boot sequence.
//
// It takes about 420ms. It may be called again at any time; the full sequence
// is replayed and the rotation is back to Rotate0 with PCBNone.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	seq := initSequence(d.format)
	err := d.t.Do(func(tx *tftspi.Tx) error {
		if err := tx.ResetPin(); err != nil {
			return err
		}
		return runSequence(tx, seq)
	})
	if err != nil {
		return err
	}
	d.initialized = true
	d.pcb = PCBNone
	d.rot = Rotate0
	d.w, d.h = d.startW, d.startH
	return nil
}

// Halt implements conn.Resource.
//
// It turns the display off. Init must be called to use it again.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil
	}
	d.initialized = false
	_, err := d.t.WriteCommand(byte(DisplayOff))
	return err
}

// SetPCB sets the board variant. It takes effect on the next SetRotation.
func (d *Dev) SetPCB(p PCB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pcb = p
}

// PCB returns the board variant.
func (d *Dev) PCB() PCB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pcb
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() Rotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rot
}

// SetRotation writes the Memory Access Control register for r and updates
// the logical frame size. 90° and 270° exchange width and height.
func (d *Dev) SetRotation(r Rotation) error {
	if r > Rotate270 {
		return fmt.Errorf("ili9486: invalid rotation %d", r)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if _, err := d.t.WriteReg(byte(MemoryAccessControl), madctl(r, d.pcb)); err != nil {
		return err
	}
	d.rot = r
	if r.swapsAxes() {
		d.w, d.h = d.startH, d.startW
	} else {
		d.w, d.h = d.startW, d.startH
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb666.Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return image.Rect(0, 0, d.w, d.h)
}

// SetAddrWindow sets the controller's write window to the w×h rectangle at
// (x, y). It returns a *SizeError if any corner is outside the frame.
func (d *Dev) SetAddrWindow(x, y, w, h int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.t.Do(func(tx *tftspi.Tx) error {
		return d.setAddrWindow(tx, x, y, w, h)
	})
}

// FillScreen fills the whole frame with c.
func (d *Dev) FillScreen(c rgb666.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.fill(image.Rect(0, 0, d.w, d.h), c)
}

// FillRectangle fills the w×h rectangle at (x, y) with c.
//
// The rectangle is clipped to the frame; nothing is sent if it lies
// completely outside.
func (d *Dev) FillRectangle(x, y, w, h int, c rgb666.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	r := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+w, y+h)}
	return d.fill(r.Intersect(image.Rect(0, 0, d.w, d.h)), c)
}

// Draw implements display.Drawer.
//
// It streams src row by row; the whole image is never buffered.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	// Clip the destination to the frame, and the source to its bounds, the
	// same way image/draw does.
	orig := r.Min
	r = r.Intersect(image.Rect(0, 0, d.w, d.h))
	r = r.Intersect(src.Bounds().Add(orig.Sub(sp)))
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(orig))

	bpp := d.format.bytesPerPixel()
	row := r.Dx() * bpp
	buf := make([]byte, 0, chunkSize(row, d.t.MaxTxSize()))
	return d.t.Do(func(tx *tftspi.Tx) error {
		if err := d.setAddrWindow(tx, r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
		if _, err := tx.WriteCommand(byte(MemoryWrite)); err != nil {
			return err
		}
		for y := 0; y < r.Dy(); y++ {
			if len(buf)+row > cap(buf) {
				if _, err := tx.WriteData(buf); err != nil {
					return err
				}
				buf = buf[:0]
			}
			for x := 0; x < r.Dx(); x++ {
				c := rgb666.Model.Convert(src.At(sp.X+x, sp.Y+y)).(rgb666.Color)
				buf = d.format.appendPixel(buf, c)
			}
		}
		_, err := tx.WriteData(buf)
		return err
	})
}

// fill streams r.Dx()*r.Dy() copies of c into r. A chunk made of whole rows
// is built once and sent repeatedly, so memory use does not depend on the
// rectangle height.
func (d *Dev) fill(r image.Rectangle, c rgb666.Color) error {
	if r.Empty() {
		return nil
	}
	w, h := r.Dx(), r.Dy()
	px := d.format.appendPixel(nil, c)
	row := w * len(px)
	rows := chunkSize(row, d.t.MaxTxSize()) / row
	if rows > h {
		rows = h
	}
	chunk := bytes.Repeat(px, w*rows)
	return d.t.Do(func(tx *tftspi.Tx) error {
		if err := d.setAddrWindow(tx, r.Min.X, r.Min.Y, w, h); err != nil {
			return err
		}
		if _, err := tx.WriteCommand(byte(MemoryWrite)); err != nil {
			return err
		}
		for left := h; left > 0; left -= rows {
			n := rows
			if left < n {
				n = left
			}
			if _, err := tx.WriteData(chunk[:n*row]); err != nil {
				return err
			}
		}
		return nil
	})
}

// setAddrWindow validates the window and sends CASET and RASET.
func (d *Dev) setAddrWindow(tx *tftspi.Tx, x, y, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("ili9486: empty window %dx%d", w, h)
	}
	xs, xe := x, x+w-1
	ys, ye := y, y+h-1
	for _, v := range []struct{ given, max int }{{xs, d.w}, {xe, d.w}, {ys, d.h}, {ye, d.h}} {
		if v.given < 0 || v.given >= v.max {
			return &SizeError{Given: v.given, Max: v.max}
		}
	}
	if _, err := tx.WriteCommand(byte(ColumnAddressSet)); err != nil {
		return err
	}
	if _, err := tx.WriteWord(uint16(xs)); err != nil {
		return err
	}
	if _, err := tx.WriteWord(uint16(xe)); err != nil {
		return err
	}
	if _, err := tx.WriteCommand(byte(RowAddressSet)); err != nil {
		return err
	}
	if _, err := tx.WriteWord(uint16(ys)); err != nil {
		return err
	}
	_, err := tx.WriteWord(uint16(ye))
	return err
}

// chunkSize returns the largest multiple of row that fits in limit, or row
// if a single row is larger.
func chunkSize(row, limit int) int {
	if row >= limit {
		return row
	}
	return limit / row * row
}

var _ display.Drawer = &Dev{}
