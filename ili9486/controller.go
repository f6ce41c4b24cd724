// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9486

import "time"

// controller is the subset of *tftspi.Tx used to replay a command table.
type controller interface {
	WriteCommandDelay(cmd byte, d time.Duration) (int, error)
	WriteDataDelay(data []byte, d time.Duration) (int, error)
}

// step is one register write. delay is waited after the parameters, or after
// the opcode when there are none.
type step struct {
	cmd   Command
	data  []byte
	delay time.Duration
}

// initSequence returns the boot profile. Deviating from it, in particular
// skipping the delays after SoftReset, SleepOut and DisplayOn, leaves the
// panel blank until the next power cycle.
func initSequence(f PixelFormat) []step {
	// Normal mode frame rate 30Hz, division ratio fosc, 17 clocks per line.
	const (
		frs = 0b0001
		div = 0b0000
		rtn = 0x11
	)
	// Step-up circuit at 4H in normal, idle and partial modes.
	const dc0, dc1 = 0b0100, 0b0100
	stepUp := []byte{dc1<<4 | dc0}

	return []step{
		{cmd: SoftReset, delay: 150 * time.Millisecond},
		{cmd: FrameRateControlNormal, data: []byte{frs<<4 | div, rtn}, delay: 10 * time.Millisecond},
		{cmd: FrameRateControlIdle, data: []byte{frs<<4 | div, rtn}},
		{cmd: FrameRateControlPartial, data: []byte{frs<<4 | div, rtn}},
		// Gamma +/- 4.4375V.
		{cmd: PowerControl1, data: []byte{0x09, 0x09}, delay: 10 * time.Millisecond},
		// VGH = Vci1 * 6, VGL = Vci1 * 5, external VCI.
		{cmd: PowerControl2, data: []byte{0x41, 0x00}},
		{cmd: PowerControl3, data: stepUp},
		{cmd: PowerControl4, data: stepUp},
		{cmd: PowerControl5, data: stepUp},
		{cmd: VcomControl1, data: []byte{0x00, 0x00, 0x00, 0x00}},
		{cmd: InterfacePixelFormat, data: []byte{f.colmod()}},
		{cmd: InterfaceModeControl, data: []byte{0x00}},
		{cmd: PositiveGammaControl, data: positiveGamma},
		{cmd: NegativeGammaControl, data: negativeGamma},
		{cmd: DigitalGammaControl1, data: digitalGamma},
		{cmd: SleepOut, delay: 120 * time.Millisecond},
		{cmd: DisplayOn, delay: 100 * time.Millisecond},
	}
}

// runSequence sends every step in order and stops at the first error.
func runSequence(ctrl controller, seq []step) error {
	for _, s := range seq {
		if len(s.data) == 0 {
			if _, err := ctrl.WriteCommandDelay(byte(s.cmd), s.delay); err != nil {
				return err
			}
			continue
		}
		if _, err := ctrl.WriteCommandDelay(byte(s.cmd), 0); err != nil {
			return err
		}
		if _, err := ctrl.WriteDataDelay(s.data, s.delay); err != nil {
			return err
		}
	}
	return nil
}
