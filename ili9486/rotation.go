// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9486

import "fmt"

// Rotation is the clockwise rotation of the logical frame.
type Rotation uint8

// Possible rotations.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	switch r {
	case Rotate0:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return fmt.Sprintf("Rotation(%d)", uint8(r))
	}
}

// swapsAxes reports whether the logical width is the native height.
func (r Rotation) swapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// PCB is the silkscreen color of the breakout board. It correlates with the
// factory RGB/BGR wiring of the panel.
type PCB uint8

// Known boards. Only PCBBlack is wired RGB.
const (
	PCBNone PCB = iota
	PCBRed
	PCBGreen
	PCBBlack
)

func (p PCB) String() string {
	switch p {
	case PCBNone:
		return "None"
	case PCBRed:
		return "Red"
	case PCBGreen:
		return "Green"
	case PCBBlack:
		return "Black"
	default:
		return fmt.Sprintf("PCB(%d)", uint8(p))
	}
}

// madctl returns the Memory Access Control byte for r on board p.
func madctl(r Rotation, p PCB) byte {
	if p == PCBBlack {
		switch r {
		case Rotate0:
			return madctlMX | madctlMY | madctlRGB
		case Rotate90:
			return madctlMV | madctlMY | madctlRGB
		case Rotate180:
			return madctlRGB
		default:
			return madctlMV | madctlMX | madctlRGB
		}
	}
	switch r {
	case Rotate0:
		return madctlBGR | madctlMY
	case Rotate90:
		return madctlBGR | madctlMV
	case Rotate180:
		return madctlBGR | madctlMX
	default:
		return madctlBGR | madctlMV | madctlMX | madctlMY
	}
}
