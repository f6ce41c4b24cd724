// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9486

import "fmt"

// Command is a controller opcode, sent with DC low.
type Command byte

// Commands used by this driver. Page numbers refer to the ILI9486 datasheet
// v1.0.
const (
	SoftReset               Command = 0x01 // p. 88
	SleepIn                 Command = 0x10
	SleepOut                Command = 0x11 // p. 101
	NormalDisplayModeOn     Command = 0x13
	DisplayInversionOff     Command = 0x20
	DisplayOff              Command = 0x28
	DisplayOn               Command = 0x29 // p. 110
	ColumnAddressSet        Command = 0x2A // p. 111
	RowAddressSet           Command = 0x2B // p. 113
	MemoryWrite             Command = 0x2C // p. 115
	MemoryAccessControl     Command = 0x36 // p. 127
	IdleModeOff             Command = 0x38
	InterfacePixelFormat    Command = 0x3A // p. 134
	InterfaceModeControl    Command = 0xB0
	FrameRateControlNormal  Command = 0xB1 // full colors
	FrameRateControlIdle    Command = 0xB2 // 8 colors
	FrameRateControlPartial Command = 0xB3 // full colors
	DisplayInversionControl Command = 0xB4
	DisplayFunctionControl  Command = 0xB6
	PowerControl1           Command = 0xC0
	PowerControl2           Command = 0xC1
	PowerControl3           Command = 0xC2 // normal mode
	PowerControl4           Command = 0xC3 // idle mode
	PowerControl5           Command = 0xC4 // partial mode
	VcomControl1            Command = 0xC5
	PositiveGammaControl    Command = 0xE0
	NegativeGammaControl    Command = 0xE1
	DigitalGammaControl1    Command = 0xE2
)

var commandNames = map[Command]string{
	SoftReset:               "SoftReset",
	SleepIn:                 "SleepIn",
	SleepOut:                "SleepOut",
	NormalDisplayModeOn:     "NormalDisplayModeOn",
	DisplayInversionOff:     "DisplayInversionOff",
	DisplayOff:              "DisplayOff",
	DisplayOn:               "DisplayOn",
	ColumnAddressSet:        "ColumnAddressSet",
	RowAddressSet:           "RowAddressSet",
	MemoryWrite:             "MemoryWrite",
	MemoryAccessControl:     "MemoryAccessControl",
	IdleModeOff:             "IdleModeOff",
	InterfacePixelFormat:    "InterfacePixelFormat",
	InterfaceModeControl:    "InterfaceModeControl",
	FrameRateControlNormal:  "FrameRateControlNormal",
	FrameRateControlIdle:    "FrameRateControlIdle",
	FrameRateControlPartial: "FrameRateControlPartial",
	DisplayInversionControl: "DisplayInversionControl",
	DisplayFunctionControl:  "DisplayFunctionControl",
	PowerControl1:           "PowerControl1",
	PowerControl2:           "PowerControl2",
	PowerControl3:           "PowerControl3",
	PowerControl4:           "PowerControl4",
	PowerControl5:           "PowerControl5",
	VcomControl1:            "VcomControl1",
	PositiveGammaControl:    "PositiveGammaControl",
	NegativeGammaControl:    "NegativeGammaControl",
	DigitalGammaControl1:    "DigitalGammaControl1",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Command(0x%02X)", byte(c))
}

// Memory Access Control (MADCTL) bits.
const (
	madctlMY  byte = 0x80 // row address order
	madctlMX  byte = 0x40 // column address order
	madctlMV  byte = 0x20 // row/column exchange
	madctlML  byte = 0x10 // vertical refresh order
	madctlBGR byte = 0x08
	madctlMH  byte = 0x04 // horizontal refresh order
	madctlRGB byte = 0x00
)

// Gamma tables from the vendor's boot profile for this module.
var (
	positiveGamma = []byte{
		0x0F, 0x1F, 0x1C, 0x0C, 0x0F, 0x08, 0x48, 0x98,
		0x37, 0x0A, 0x13, 0x04, 0x11, 0x0D, 0x00,
	}
	negativeGamma = []byte{
		0x0F, 0x32, 0x2E, 0x0B, 0x0D, 0x05, 0x47, 0x75,
		0x37, 0x06, 0x10, 0x03, 0x24, 0x20, 0x00,
	}
	digitalGamma = []byte{
		0x0F, 0x32, 0x2E, 0x0B, 0x0D, 0x05, 0x47, 0x75,
		0x37, 0x06, 0x10, 0x03, 0x24, 0x20, 0x00,
	}
)
