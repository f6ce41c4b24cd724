// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tftspi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/rpi"
)

// ResetDelay is the time RST is held at each level during ResetPin.
const ResetDelay = 10 * time.Millisecond

// defaultMaxTxSize is used when the connection does not report its limit.
const defaultMaxTxSize = 4096

// Opts defines the options for the transport.
type Opts struct {
	// Speed is the SPI clock. The controllers accept much more but long
	// jumper wires do not.
	Speed physic.Frequency
	// MaxTxSize caps the number of bytes sent in a single SPI transfer. When
	// 0, the limit reported by the connection is used, or 4096 bytes.
	MaxTxSize int
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Speed: 500 * physic.KiloHertz,
}

// Transport is a shareable handle to the SPI bus and the DC/RST lines.
//
// It is safe for concurrent use.
type Transport struct {
	mu sync.Mutex
	tx Tx
}

// Tx gives unlocked access to the bus while a Do transaction is running.
//
// It must not be retained after the function passed to Do returns.
type Tx struct {
	c   spi.Conn
	dc  gpio.PinOut
	rst gpio.PinOut

	// dcLevel is the last level driven on dc.
	dcLevel   gpio.Level
	maxTxSize int
}

// New returns a Transport on the SPI port p in mode 0, 8 bits per word.
//
// dc and rst must be valid output pins. dc is driven low immediately.
func New(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*Transport, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("tftspi: dc pin is required")
	}
	if rst == nil || rst == gpio.INVALID {
		return nil, errors.New("tftspi: rst pin is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	speed := opts.Speed
	if speed == 0 {
		speed = DefaultOpts.Speed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("tftspi: %w", err)
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("tftspi: failed to drive dc: %w", err)
	}

	maxTxSize := opts.MaxTxSize
	if maxTxSize == 0 {
		if l, ok := c.(conn.Limits); ok {
			maxTxSize = l.MaxTxSize()
		}
	}
	if maxTxSize <= 0 {
		maxTxSize = defaultMaxTxSize
	}

	t := &Transport{
		tx: Tx{
			c:         c,
			dc:        dc,
			rst:       rst,
			dcLevel:   gpio.Low,
			maxTxSize: maxTxSize,
		},
	}
	return t, nil
}

// NewRPi returns a Transport using the default Raspberry Pi wiring: DC on
// GPIO24 (P1_18) and RST on GPIO25 (P1_22).
//
// host.Init() must have been called.
func NewRPi(p spi.Port, opts *Opts) (*Transport, error) {
	return New(p, rpi.P1_18, rpi.P1_22, opts)
}

func (t *Transport) String() string {
	return fmt.Sprintf("tftspi.Transport{%s, %s, %s}", t.tx.c, t.tx.dc, t.tx.rst)
}

// MaxTxSize returns the largest number of bytes sent in one SPI transfer.
func (t *Transport) MaxTxSize() int {
	return t.tx.maxTxSize
}

// Do runs f while holding the transport lock.
//
// Every write issued through tx appears on the wire in program order and no
// other user of the transport can interleave with it.
func (t *Transport) Do(f func(tx *Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return f(&t.tx)
}

// ResetPin pulses the active-low RST line: high, low, high, with ResetDelay
// after each edge.
func (t *Transport) ResetPin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.ResetPin()
}

// WriteCommand sends a single opcode with DC low.
func (t *Transport) WriteCommand(cmd byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteCommand(cmd)
}

// WriteCommandDelay sends an opcode then sleeps for d, if d is positive.
func (t *Transport) WriteCommandDelay(cmd byte, d time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteCommandDelay(cmd, d)
}

// WriteData sends parameters or pixel data with DC high.
func (t *Transport) WriteData(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteData(data)
}

// WriteDataDelay sends data then sleeps for d, if d is positive.
func (t *Transport) WriteDataDelay(data []byte, d time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteDataDelay(data, d)
}

// WriteReg sends an opcode followed by its parameters.
func (t *Transport) WriteReg(cmd byte, data ...byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteReg(cmd, data...)
}

// WriteWord sends v as 2 data bytes, most significant first.
func (t *Transport) WriteWord(v uint16) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.WriteWord(v)
}

// ResetPin is the unlocked version of Transport.ResetPin.
func (tx *Tx) ResetPin() error {
	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := tx.rst.Out(l); err != nil {
			return fmt.Errorf("tftspi: failed to drive rst: %w", err)
		}
		time.Sleep(ResetDelay)
	}
	return nil
}

// WriteCommand is the unlocked version of Transport.WriteCommand.
func (tx *Tx) WriteCommand(cmd byte) (int, error) {
	if err := tx.setDC(gpio.Low); err != nil {
		return 0, err
	}
	if err := tx.c.Tx([]byte{cmd}, nil); err != nil {
		return 0, err
	}
	return 1, nil
}

// WriteCommandDelay is the unlocked version of Transport.WriteCommandDelay.
func (tx *Tx) WriteCommandDelay(cmd byte, d time.Duration) (int, error) {
	n, err := tx.WriteCommand(cmd)
	if err != nil {
		return n, err
	}
	if d > 0 {
		time.Sleep(d)
	}
	return n, nil
}

// WriteData is the unlocked version of Transport.WriteData.
//
// data is split in transfers of at most MaxTxSize bytes. On failure, the
// number of bytes already sent is returned along the error.
func (tx *Tx) WriteData(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if err := tx.setDC(gpio.High); err != nil {
		return 0, err
	}
	n := 0
	for len(data) != 0 {
		chunk := data
		if len(chunk) > tx.maxTxSize {
			chunk = chunk[:tx.maxTxSize]
		}
		if err := tx.c.Tx(chunk, nil); err != nil {
			return n, err
		}
		n += len(chunk)
		data = data[len(chunk):]
	}
	return n, nil
}

// WriteDataDelay is the unlocked version of Transport.WriteDataDelay.
func (tx *Tx) WriteDataDelay(data []byte, d time.Duration) (int, error) {
	n, err := tx.WriteData(data)
	if err != nil {
		return n, err
	}
	if d > 0 {
		time.Sleep(d)
	}
	return n, nil
}

// WriteReg is the unlocked version of Transport.WriteReg.
func (tx *Tx) WriteReg(cmd byte, data ...byte) (int, error) {
	n, err := tx.WriteCommand(cmd)
	if err != nil {
		return n, err
	}
	m, err := tx.WriteData(data)
	return n + m, err
}

// WriteWord is the unlocked version of Transport.WriteWord.
func (tx *Tx) WriteWord(v uint16) (int, error) {
	return tx.WriteData([]byte{byte(v >> 8), byte(v)})
}

// MaxTxSize returns the largest number of bytes sent in one SPI transfer.
func (tx *Tx) MaxTxSize() int {
	return tx.maxTxSize
}

// setDC drives dc only when the level changes.
func (tx *Tx) setDC(l gpio.Level) error {
	if tx.dcLevel == l {
		return nil
	}
	if err := tx.dc.Out(l); err != nil {
		return fmt.Errorf("tftspi: failed to drive dc: %w", err)
	}
	tx.dcLevel = l
	return nil
}

var _ fmt.Stringer = &Transport{}
