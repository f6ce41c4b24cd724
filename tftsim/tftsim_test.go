// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tftsim

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type driver struct {
	t *testing.T
	p *Panel
	c spi.Conn
}

func newDriver(t *testing.T, w, h int) *driver {
	p := New(&Opts{Width: w, Height: h, W: &bytes.Buffer{}})
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	return &driver{t: t, p: p, c: c}
}

func (d *driver) reg(cmd byte, data ...byte) {
	if err := d.p.DC().Out(gpio.Low); err != nil {
		d.t.Fatal(err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		d.t.Fatal(err)
	}
	if len(data) == 0 {
		return
	}
	if err := d.p.DC().Out(gpio.High); err != nil {
		d.t.Fatal(err)
	}
	if err := d.c.Tx(data, nil); err != nil {
		d.t.Fatal(err)
	}
}

func (d *driver) window(xs, xe, ys, ye int) {
	d.reg(cmdColumnAddr, byte(xs>>8), byte(xs), byte(xe>>8), byte(xe))
	d.reg(cmdRowAddr, byte(ys>>8), byte(ys), byte(ye>>8), byte(ye))
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func TestConnect(t *testing.T) {
	p := New(&Opts{Width: 4, Height: 4, W: &bytes.Buffer{}})
	if _, err := p.Connect(physic.MegaHertz, spi.Mode3, 8); err == nil {
		t.Error("Connect(Mode3) succeeded")
	}
	if _, err := p.Connect(physic.MegaHertz, spi.Mode0, 9); err == nil {
		t.Error("Connect(9 bits) succeeded")
	}
	if _, err := p.Connect(physic.MegaHertz, spi.Mode0, 8); err != nil {
		t.Fatal(err)
	}
	if p.Speed() != physic.MegaHertz {
		t.Errorf("Speed() = %s", p.Speed())
	}
	if err := p.Tx([]byte{0}, []byte{0}); err == nil {
		t.Error("Tx() with a read buffer succeeded")
	}
	if s := p.String(); s != "TFTSim" {
		t.Errorf("String() = %q", s)
	}
}

func TestMemoryWrite(t *testing.T) {
	d := newDriver(t, 4, 3)
	d.window(1, 2, 0, 1)
	d.reg(cmdMemoryWrite, 0xFC, 0, 0, 0xFC, 0, 0, 0, 0xFC, 0, 0, 0xFC, 0, 0xFF, 0xFF, 0xFF)

	want := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want.SetNRGBA(x, y, black)
		}
	}
	want.SetNRGBA(1, 0, red)
	want.SetNRGBA(2, 0, red)
	want.SetNRGBA(1, 1, green)
	want.SetNRGBA(2, 1, green)
	// The fifth pixel overflows the window and is dropped.
	if diff := cmp.Diff(d.p.Image(), want); diff != "" {
		t.Errorf("frame difference (-got +want):\n%s", diff)
	}
	if v := d.p.Violations(); v != 0 {
		t.Errorf("Violations() = %d", v)
	}
}

func TestMemoryWriteSplit(t *testing.T) {
	d := newDriver(t, 2, 1)
	d.window(0, 1, 0, 0)
	d.reg(cmdMemoryWrite, 0xFC)
	if err := d.c.Tx([]byte{0, 0, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := d.c.Tx([]byte{0xFC, 0}, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]color.NRGBA{d.p.At(0, 0), d.p.At(1, 0)}, []color.NRGBA{red, green}); diff != "" {
		t.Errorf("frame difference (-got +want):\n%s", diff)
	}
}

func TestRGB565(t *testing.T) {
	d := newDriver(t, 2, 1)
	d.reg(cmdPixelFormat, 0x55)
	d.reg(cmdMemoryWrite, 0xF8, 0x00, 0x07, 0xE0)
	if diff := cmp.Diff([]color.NRGBA{d.p.At(0, 0), d.p.At(1, 0)}, []color.NRGBA{red, green}); diff != "" {
		t.Errorf("frame difference (-got +want):\n%s", diff)
	}
	if f := d.p.PixelFormat(); f != 0x55 {
		t.Errorf("PixelFormat() = %#x", f)
	}
}

func TestMemoryAccessControl(t *testing.T) {
	// Writing the logical pixel (0, 0) of a 3x2 panel lands on a different
	// native corner for each combination.
	for _, tc := range []struct {
		madctl byte
		x, y   int
	}{
		{0x00, 0, 0},
		{madctlMX, 2, 0},
		{madctlMY, 0, 1},
		{madctlMX | madctlMY, 2, 1},
		{madctlMV, 0, 0},
		{madctlMV | madctlMX, 0, 1},
		{madctlMV | madctlMY, 2, 0},
	} {
		d := newDriver(t, 3, 2)
		d.reg(cmdMemAccess, tc.madctl)
		d.window(0, 0, 0, 0)
		d.reg(cmdMemoryWrite, 0xFC, 0, 0)
		if got := d.p.At(tc.x, tc.y); got != red {
			t.Errorf("MADCTL %#02x: pixel (%d, %d) = %v", tc.madctl, tc.x, tc.y, got)
		}
		if got := d.p.MemoryAccessControl(); got != tc.madctl {
			t.Errorf("MemoryAccessControl() = %#x", got)
		}
	}
}

func TestExchangedAxes(t *testing.T) {
	// With MV the column address spans the native height.
	d := newDriver(t, 2, 3)
	d.reg(cmdMemAccess, madctlMV)
	d.window(0, 2, 0, 0)
	d.reg(cmdMemoryWrite, 0xFC, 0, 0, 0xFC, 0, 0, 0xFC, 0, 0)
	for y := 0; y < 3; y++ {
		if got := d.p.At(0, y); got != red {
			t.Errorf("pixel (0, %d) = %v", y, got)
		}
		if got := d.p.At(1, y); got != black {
			t.Errorf("pixel (1, %d) = %v", y, got)
		}
	}
}

func TestPowerState(t *testing.T) {
	d := newDriver(t, 1, 1)
	if d.p.On() {
		t.Fatal("panel is on after New")
	}
	d.reg(cmdSleepOut)
	d.reg(cmdDisplayOn)
	if !d.p.On() {
		t.Fatal("panel is off after SleepOut and DisplayOn")
	}
	d.reg(cmdDisplayOff)
	if d.p.On() {
		t.Fatal("panel is on after DisplayOff")
	}
	d.reg(cmdDisplayOn)
	d.reg(cmdSoftReset)
	if d.p.On() {
		t.Fatal("panel is on after SoftReset")
	}
	want := []byte{cmdSleepOut, cmdDisplayOn, cmdDisplayOff, cmdDisplayOn, cmdSoftReset}
	if diff := cmp.Diff(d.p.Commands(), want); diff != "" {
		t.Errorf("Commands() difference (-got +want):\n%s", diff)
	}
}

func TestHardwareReset(t *testing.T) {
	d := newDriver(t, 1, 1)
	d.reg(cmdMemAccess, madctlMV)
	d.reg(cmdSleepOut)
	if err := d.p.RST().Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := d.c.Tx([]byte{cmdDisplayOn}, nil); err != nil {
		t.Fatal(err)
	}
	if err := d.p.RST().Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if d.p.MemoryAccessControl() != 0 || d.p.On() {
		t.Error("registers survived the reset")
	}
	if v := d.p.Violations(); v != 1 {
		t.Errorf("Violations() = %d, want 1", v)
	}
}

func TestDataWithoutCommand(t *testing.T) {
	d := newDriver(t, 1, 1)
	if err := d.p.DC().Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := d.c.TxPackets([]spi.Packet{{W: []byte{1, 2}}}); err != nil {
		t.Fatal(err)
	}
	if v := d.p.Violations(); v != 2 {
		t.Errorf("Violations() = %d, want 2", v)
	}
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(&Opts{Width: 4, Height: 4, W: buf, Step: 2})
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []struct {
		dc gpio.Level
		b  []byte
	}{
		{gpio.Low, []byte{cmdSleepOut}},
		{gpio.Low, []byte{cmdDisplayOn}},
		{gpio.Low, []byte{cmdMemoryWrite}},
		{gpio.High, bytes.Repeat([]byte{0xFC, 0, 0}, 16)},
	} {
		if err := p.DC().Out(s.dc); err != nil {
			t.Fatal(err)
		}
		if err := c.Tx(s.b, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
	if !strings.Contains(out, p.palette.Block(red)) {
		t.Errorf("output %q does not contain a red block", out)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
}
