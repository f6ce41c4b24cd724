// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tftsim implements a software TFT panel that sits at the other end
// of an SPI bus and renders its frame buffer to the terminal using ANSI color
// codes.
//
// Useful while you are waiting for your 3.5" screen to come by mail, or to
// check a driver's output without looking at a logic analyzer trace.
//
// The panel decodes the MIPI DCS subset used by ILI9486 class controllers:
// reset, sleep, display on/off, memory access control, pixel format, the
// address window and memory write. Other opcodes are logged and ignored.
package tftsim

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opcodes understood by the panel.
const (
	cmdSoftReset   = 0x01
	cmdSleepIn     = 0x10
	cmdSleepOut    = 0x11
	cmdDisplayOff  = 0x28
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdRowAddr     = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMemAccess   = 0x36
	cmdPixelFormat = 0x3A
)

// Memory access control bits.
const (
	madctlMY = 0x80
	madctlMX = 0x40
	madctlMV = 0x20
)

// Opts represents the options available for the panel.
type Opts struct {
	// Width and Height are the native resolution.
	Width, Height int
	// Palette used by Render. Defaults to ansi256.Default.
	Palette *ansi256.Palette
	// W receives Render's output. Defaults to the colorable stdout.
	W io.Writer
	// Step is the number of pixels per terminal cell on each axis. When 0,
	// it is chosen so the frame fits the terminal width, or 8 if W is set or
	// stdout is not a terminal.
	Step int
	// Format is the default image format used by ServeHTTP.
	Format Format

	_ struct{}
}

// Panel is an emulated ILI9486 class controller.
//
// It implements spi.Port and spi.Conn. Use DC and RST for the two GPIO lines.
// It also implements http.Handler to watch the panel from a browser.
type Panel struct {
	w       io.Writer
	palette ansi256.Palette
	step    int
	format  Format
	dc      *pin
	rst     *pin

	mu         sync.Mutex
	frame      *image.NRGBA
	speed      physic.Frequency
	dcLevel    gpio.Level
	inReset    bool
	cmd        byte
	hasCmd     bool
	params     []byte
	madctl     byte
	colmod     byte
	awake      bool
	on         bool
	xs, xe     int
	ys, ye     int
	cx, cy     int
	px         []byte
	log        []byte
	violations int
	dirty      bool
	clients    map[*client]struct{}

	buf bytes.Buffer
}

// New returns a Panel with a black frame, in the state following a hardware
// reset.
func New(opts *Opts) *Panel {
	pal := opts.Palette
	if pal == nil {
		pal = ansi256.Default
	}
	w := opts.W
	step := opts.Step
	if w == nil {
		w = colorable.NewColorableStdout()
		if step <= 0 {
			step = fitStep(opts.Width)
		}
	}
	if step <= 0 {
		step = defaultStep
	}
	p := &Panel{
		w:       w,
		palette: *pal,
		step:    step,
		format:  opts.Format,
		clients: map[*client]struct{}{},
		frame:   image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		dcLevel: gpio.Low,
	}
	for i := 3; i < len(p.frame.Pix); i += 4 {
		p.frame.Pix[i] = 0xFF
	}
	p.dc = &pin{Pin: &gpiotest.Pin{N: "TFTSIM_DC", Num: -1}, out: p.setDC}
	p.rst = &pin{Pin: &gpiotest.Pin{N: "TFTSIM_RST", Num: -1, L: gpio.High}, out: p.setRST}
	p.resetLocked()
	return p
}

func (p *Panel) String() string {
	return "TFTSim"
}

// DC returns the Data/Command line.
func (p *Panel) DC() gpio.PinOut {
	return p.dc
}

// RST returns the active-low Reset line.
func (p *Panel) RST() gpio.PinOut {
	return p.rst
}

// Connect implements spi.Port.
//
// Only mode 0 with 8 bits words is supported.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if mode != spi.Mode0 {
		return nil, fmt.Errorf("tftsim: unsupported mode %s", mode)
	}
	if bits != 8 {
		return nil, fmt.Errorf("tftsim: unsupported %d bits words", bits)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = f
	return p, nil
}

// Duplex implements spi.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements spi.Conn.
//
// The panel is write-only; r must be empty.
func (p *Panel) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("tftsim: reading is not supported")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inReset {
		p.violations++
		return nil
	}
	for _, b := range w {
		if p.dcLevel == gpio.Low {
			p.command(b)
		} else {
			p.data(b)
		}
	}
	if p.dirty {
		p.dirty = false
		p.changedLocked()
	}
	return nil
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := p.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

// Halt implements conn.Resource.
//
// It ends the HTTP streams and resets the terminal colors.
func (p *Panel) Halt() error {
	p.mu.Lock()
	p.terminateClientsLocked()
	p.mu.Unlock()
	_, err := p.w.Write([]byte("\033[0m\n"))
	return err
}

// Bounds returns the native frame.
func (p *Panel) Bounds() image.Rectangle {
	return p.frame.Bounds()
}

// Image returns a copy of the frame buffer, in native orientation.
func (p *Panel) Image() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewNRGBA(p.frame.Rect)
	copy(img.Pix, p.frame.Pix)
	return img
}

// At returns the color of the native pixel (x, y).
func (p *Panel) At(x, y int) color.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame.NRGBAAt(x, y)
}

// Commands returns every opcode received since New.
func (p *Panel) Commands() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.log...)
}

// Violations returns the number of framing errors seen: data bytes without a
// preceding opcode and transfers while RST was held low.
func (p *Panel) Violations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.violations
}

// On reports whether the panel is out of sleep with the display enabled.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awake && p.on
}

// MemoryAccessControl returns the last MADCTL value.
func (p *Panel) MemoryAccessControl() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.madctl
}

// PixelFormat returns the last COLMOD value.
func (p *Panel) PixelFormat() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colmod
}

// Speed returns the clock requested in Connect.
func (p *Panel) Speed() physic.Frequency {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Render writes the frame to the terminal, one cell every Step pixels. A
// panel that is off or asleep renders black.
func (p *Panel) Render() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	// This code is designed to minimize the amount of memory allocated per call.
	p.buf.Reset()
	_, _ = p.buf.WriteString("\033[0m")
	r := p.frame.Rect
	for y := r.Min.Y; y < r.Max.Y; y += p.step {
		for x := r.Min.X; x < r.Max.X; x += p.step {
			c := color.NRGBA{A: 255}
			if p.awake && p.on {
				c = p.frame.NRGBAAt(x, y)
			}
			_, _ = io.WriteString(&p.buf, p.palette.Block(c))
		}
		_, _ = p.buf.WriteString("\033[0m\n")
	}
	_, err := p.buf.WriteTo(p.w)
	return err
}

func (p *Panel) setDC(l gpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dcLevel = l
}

func (p *Panel) setRST(l gpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l == gpio.Low {
		p.inReset = true
		p.resetLocked()
		p.dirty = false
		p.changedLocked()
		return
	}
	p.inReset = false
}

// resetLocked restores the power-on register values. The frame memory is
// kept, as on the real controller.
func (p *Panel) resetLocked() {
	p.hasCmd = false
	p.params = p.params[:0]
	p.madctl = 0
	p.colmod = 0x66
	p.awake = false
	p.on = false
	p.dirty = true
	w, h := p.frame.Rect.Dx(), p.frame.Rect.Dy()
	p.xs, p.xe = 0, w-1
	p.ys, p.ye = 0, h-1
	p.px = p.px[:0]
}

func (p *Panel) command(b byte) {
	p.log = append(p.log, b)
	p.cmd = b
	p.hasCmd = true
	p.params = p.params[:0]
	switch b {
	case cmdSoftReset:
		p.resetLocked()
	case cmdSleepIn:
		p.awake = false
		p.dirty = true
	case cmdSleepOut:
		p.awake = true
		p.dirty = true
	case cmdDisplayOff:
		p.on = false
		p.dirty = true
	case cmdDisplayOn:
		p.on = true
		p.dirty = true
	case cmdMemoryWrite:
		p.cx, p.cy = p.xs, p.ys
		p.px = p.px[:0]
	}
}

func (p *Panel) data(b byte) {
	if !p.hasCmd {
		p.violations++
		return
	}
	if p.cmd == cmdMemoryWrite {
		p.pixel(b)
		return
	}
	p.params = append(p.params, b)
	switch p.cmd {
	case cmdMemAccess:
		if len(p.params) == 1 {
			p.madctl = b
		}
	case cmdPixelFormat:
		if len(p.params) == 1 {
			p.colmod = b
		}
	case cmdColumnAddr:
		if len(p.params) == 4 {
			p.xs, p.xe = word(p.params[0:2]), word(p.params[2:4])
		}
	case cmdRowAddr:
		if len(p.params) == 4 {
			p.ys, p.ye = word(p.params[0:2]), word(p.params[2:4])
		}
	}
}

// pixel accumulates one byte of pixel data and stores the pixel once
// complete. The cursor wraps at the end of each window row and stops at the
// end of the window.
func (p *Panel) pixel(b byte) {
	p.px = append(p.px, b)
	if len(p.px) < p.bytesPerPixel() {
		return
	}
	c := p.decode(p.px)
	p.px = p.px[:0]
	if p.cy > p.ye {
		return
	}
	if x, y, ok := p.native(p.cx, p.cy); ok {
		p.frame.SetNRGBA(x, y, c)
		p.dirty = true
	}
	p.cx++
	if p.cx > p.xe {
		p.cx = p.xs
		p.cy++
	}
}

func (p *Panel) bytesPerPixel() int {
	if p.colmod&0x07 == 0x05 {
		return 2
	}
	return 3
}

func (p *Panel) decode(px []byte) color.NRGBA {
	if len(px) == 2 {
		v := uint16(px[0])<<8 | uint16(px[1])
		return color.NRGBA{
			R: expand(uint8(v>>11), 5),
			G: expand(uint8(v>>5)&0x3F, 6),
			B: expand(uint8(v)&0x1F, 5),
			A: 255,
		}
	}
	return color.NRGBA{R: expand(px[0]>>2, 6), G: expand(px[1]>>2, 6), B: expand(px[2]>>2, 6), A: 255}
}

// native maps a controller address to the native frame through MADCTL.
func (p *Panel) native(col, row int) (int, int, bool) {
	w, h := p.frame.Rect.Dx(), p.frame.Rect.Dy()
	if p.madctl&madctlMV != 0 {
		w, h = h, w
	}
	if col < 0 || col >= w || row < 0 || row >= h {
		return 0, 0, false
	}
	if p.madctl&madctlMX != 0 {
		col = w - 1 - col
	}
	if p.madctl&madctlMY != 0 {
		row = h - 1 - row
	}
	if p.madctl&madctlMV != 0 {
		col, row = row, col
	}
	return col, row, true
}

const defaultStep = 8

// fitStep returns the smallest step that fits width pixels in the terminal
// attached to stdout.
func fitStep(width int) int {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return defaultStep
	}
	cols, _, err := term.GetSize(int(fd))
	if err != nil || cols <= 0 {
		return defaultStep
	}
	return (width + cols - 1) / cols
}

func word(b []byte) int {
	return int(b[0])<<8 | int(b[1])
}

// expand scales a value of the given bit depth to 8 bits.
func expand(v uint8, bits uint) uint8 {
	return v<<(8-bits) | v>>(2*bits-8)
}

// pin is a GPIO output that notifies the panel.
type pin struct {
	*gpiotest.Pin
	out func(l gpio.Level)
}

func (p *pin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.out(l)
	return nil
}

var _ spi.Port = &Panel{}
var _ spi.Conn = &Panel{}
var _ conn.Resource = &Panel{}
var _ gpio.PinOut = &pin{}
