// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tftspi implements the 4-wire SPI transport used by TFT display
// controllers: an SPI connection plus a Data/Command (DC) line and an
// active-low Reset (RST) line.
//
// The DC line is low while an opcode is clocked out and high for its
// parameters and for pixel data. The transport caches the DC level so that a
// run of data writes only toggles the GPIO once.
//
// A Transport may be shared between several drivers sitting on the same SPI
// peripheral, typically a display and its touch controller. Every operation
// holds the transport lock for its whole duration, including any trailing
// delay, and Do groups several operations into one atomic transaction so no
// other user can slip a byte between an opcode and its parameters.
//
// # Wiring
//
// The default Raspberry Pi wiring used by NewRPi:
//
//	SPI0 MOSI  GPIO10  P1_19
//	SPI0 MISO  GPIO9   P1_21  (touch controller only)
//	SPI0 SCLK  GPIO11  P1_23
//	SPI0 CE0   GPIO8   P1_24  LCD chip select, active low
//	SPI0 CE1   GPIO7   P1_26  touch chip select, active low
//	DC         GPIO24  P1_18
//	RST        GPIO25  P1_22
package tftspi
