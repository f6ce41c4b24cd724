// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tftdevices is a container for SPI TFT display drivers built on
// periph.io.
//
// tftspi is the shared SPI transport with its Data/Command and Reset lines,
// ili9486 drives the controller itself and tftsim emulates a panel for
// development without hardware.
package tftdevices
