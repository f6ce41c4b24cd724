// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb666 implements an 18-bit color model, 6 bits per channel, as
// used by TFT controllers configured with COLMOD=0x66.
package rgb666

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrColorRange is returned by From24Bit when the value does not fit in
// 0xRRGGBB.
var ErrColorRange = errors.New("rgb666: color input too large")

// Color is an 18-bit RGB color. The zero value is black.
//
// Each channel is in the range [0, 63].
type Color struct {
	r, g, b uint8
}

// Named colors.
//
// Cyan, Magenta and Yellow are the values historically shipped with this
// panel's palette; they are not channel-saturated.
var (
	Black   = Color{0x00, 0x00, 0x00}
	White   = Color{0x3F, 0x3F, 0x3F}
	Red     = Color{0x3F, 0x00, 0x00}
	Green   = Color{0x00, 0x3F, 0x00}
	Blue    = Color{0x00, 0x00, 0x3F}
	Cyan    = Color{0x00, 0x3F, 0x1F}
	Magenta = Color{0x1F, 0x00, 0x1F}
	Yellow  = Color{0x3F, 0x3E, 0x00}
	Tan     = Color{0x1D, 0x10, 0x11}
	Grey    = Color{0x13, 0x26, 0x11}
	Brown   = Color{0x10, 0x10, 0x01}
)

// RGB6 returns a Color from raw 6-bit channels. Bits above the sixth are
// discarded.
func RGB6(r, g, b uint8) Color {
	return Color{r & 0x3F, g & 0x3F, b & 0x3F}
}

// FromRGB8 converts 8-bit channels to a Color, rounding to the nearest 6-bit
// value.
func FromRGB8(r, g, b uint8) Color {
	return Color{eightToSix(r), eightToSix(g), eightToSix(b)}
}

// From24Bit converts a packed 0xRRGGBB value, e.g. 0xFFFFFF for white.
func From24Bit(c uint32) (Color, error) {
	if c > 0xFFFFFF {
		return Color{}, ErrColorRange
	}
	return FromRGB8(uint8(c>>16), uint8(c>>8), uint8(c)), nil
}

// R returns the red channel.
func (c Color) R() uint8 { return c.r }

// G returns the green channel.
func (c Color) G() uint8 { return c.g }

// B returns the blue channel.
func (c Color) B() uint8 { return c.b }

// Bytes returns the 3 bytes sent on the wire in 18 bits mode. Each channel
// occupies the high 6 bits of its byte.
func (c Color) Bytes() [3]byte {
	return [3]byte{c.r << 2, c.g << 2, c.b << 2}
}

// RGB565 returns the color packed as RRRRRGGG GGGBBBBB, for controllers
// running in 16 bits mode.
func (c Color) RGB565() uint16 {
	return uint16(c.r>>1)<<11 | uint16(c.g)<<5 | uint16(c.b>>1)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return sixToSixteen(c.r), sixToSixteen(c.g), sixToSixteen(c.b), 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.r, c.g, c.b)
}

// Model converts any color.Color to Color.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return Color{sixteenToSix(r), sixteenToSix(g), sixteenToSix(b)}
}

func eightToSix(v uint8) uint8 {
	return uint8((uint32(v)*63 + 127) / 255)
}

func sixteenToSix(v uint32) uint8 {
	return uint8((v*63 + 0x7FFF) / 0xFFFF)
}

func sixToSixteen(v uint8) uint32 {
	x := uint32(v)
	return x<<10 | x<<4 | x>>2
}

var _ color.Color = Color{}
var _ fmt.Stringer = Color{}
