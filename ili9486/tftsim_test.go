// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9486_test

import (
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/GermanBionicSystems/tftdevices/ili9486"
	"github.com/GermanBionicSystems/tftdevices/ili9486/rgb666"
	"github.com/GermanBionicSystems/tftdevices/tftsim"
	"github.com/google/go-cmp/cmp"
)

func TestSimulatedPanel(t *testing.T) {
	p := tftsim.New(&tftsim.Opts{Width: 320, Height: 480, W: io.Discard})
	dev, err := ili9486.NewSPI(p, p.DC(), p.RST(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if !p.On() {
		t.Fatal("panel is off after Init")
	}
	if f := p.PixelFormat(); f != 0x66 {
		t.Errorf("PixelFormat() = %#x, want 0x66", f)
	}

	if err := dev.FillScreen(rgb666.Blue); err != nil {
		t.Fatal(err)
	}
	if err := dev.FillRectangle(0, 280, 120, 40, rgb666.Yellow); err != nil {
		t.Fatal(err)
	}
	blue := color.NRGBA{B: 255, A: 255}
	yellow := color.NRGBA{R: 255, G: 251, A: 255}
	for _, tc := range []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, blue},
		{319, 479, blue},
		{0, 280, yellow},
		{119, 319, yellow},
		{120, 280, blue},
		{0, 279, blue},
		{0, 320, blue},
	} {
		if diff := cmp.Diff(p.At(tc.x, tc.y), tc.want); diff != "" {
			t.Errorf("pixel (%d, %d) difference (-got +want):\n%s", tc.x, tc.y, diff)
		}
	}

	// 90° exchanges rows and columns: logical (x, y) is native (y, x).
	if err := dev.SetRotation(ili9486.Rotate90); err != nil {
		t.Fatal(err)
	}
	if got := p.MemoryAccessControl(); got != 0x28 {
		t.Errorf("MemoryAccessControl() = %#x, want 0x28", got)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.White)
	}
	if err := dev.Draw(image.Rect(10, 5, 13, 6), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 10; y < 13; y++ {
		if diff := cmp.Diff(p.At(5, y), white); diff != "" {
			t.Errorf("pixel (5, %d) difference (-got +want):\n%s", y, diff)
		}
	}

	if v := p.Violations(); v != 0 {
		t.Errorf("Violations() = %d", v)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if p.On() {
		t.Error("panel is on after Halt")
	}
}
