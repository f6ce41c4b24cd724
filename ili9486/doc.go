// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ili9486 controls a 320x480 color TFT LCD via an ILI9486 controller
// on a 4-wire SPI bus, as found on the common 3.5" Raspberry Pi hats.
//
// The controller is driven write-only. Pixels are pushed in 18 bits color by
// default, 3 bytes per pixel, each channel in the high 6 bits of its byte.
// Opts.Format can select 16 bits color instead.
//
// Nothing is kept in memory: FillScreen and FillRectangle stream a single
// repeated chunk and Draw converts the source image row by row.
//
// Rotation is done by the controller through the Memory Access Control
// register. The byte depends on the board variant, set with SetPCB, since
// only some boards are wired BGR.
//
// # Datasheets
//
// https://www.displayfuture.com/Display/datasheet/controller/ILI9486L.pdf
//
// http://www.lcdwiki.com/3.5inch_RPi_Display
package ili9486
