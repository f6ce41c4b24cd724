// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tftsim

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"strconv"
)

// Format is the image format of the frames sent by ServeHTTP.
type Format int

// Supported formats.
const (
	PNG Format = iota
	JPEG
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) mimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseFormat returns the Format for "png", "jpg" or "jpeg".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return PNG, fmt.Errorf("tftsim: unrecognized image format %q", s)
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// ServeHTTP streams the visible frame as "multipart/x-mixed-replace", a new
// part every time the panel content changes. Browsers display it like a
// video. The "format" query parameter overrides Opts.Format.
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	f := p.format
	if v := r.URL.Query().Get("format"); v != "" {
		var err error
		if f, err = ParseFormat(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	fw := newFrameWriter(w)
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
		"boundary": fw.boundary,
	}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	p.mu.Lock()
	p.clients[c] = struct{}{}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.clients, c)
		p.mu.Unlock()
	}()

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Type", f.mimeType())
	for {
		b, err := p.encode(f)
		if err != nil {
			return
		}
		// A write error means the client went away.
		if err := fw.writeFrame(hdr, b); err != nil {
			return
		}
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// encode returns the visible frame in format f.
func (p *Panel) encode(f Format) ([]byte, error) {
	img := p.visible()
	var buf bytes.Buffer
	var err error
	if f == JPEG {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, img)
	}
	return buf.Bytes(), err
}

// visible returns what the panel shows: the frame, or black when it is off
// or asleep.
func (p *Panel) visible() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewNRGBA(p.frame.Rect)
	if p.awake && p.on {
		copy(img.Pix, p.frame.Pix)
		return img
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return img
}

// changedLocked wakes up every streaming client.
func (p *Panel) changedLocked() {
	for c := range p.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (p *Panel) terminateClientsLocked() {
	for c := range p.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

// frameWriter writes a neverending MIME multipart entity. Each part is
// followed by the boundary so the client can show it right away, which
// mime/multipart.Writer does not do.
type frameWriter struct {
	w        io.Writer
	boundary string
	started  bool
}

func newFrameWriter(w io.Writer) *frameWriter {
	var b [16]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(err)
	}
	return &frameWriter{w: w, boundary: fmt.Sprintf("%x", b[:])}
}

func (fw *frameWriter) writeFrame(hdr textproto.MIMEHeader, body []byte) error {
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	var buf bytes.Buffer
	if !fw.started {
		fmt.Fprintf(&buf, "--%s\r\n", fw.boundary)
		fw.started = true
	}
	for k, vs := range hdr {
		for _, v := range vs {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	fmt.Fprintf(&buf, "\r\n--%s\r\n", fw.boundary)
	_, err := buf.WriteTo(fw.w)
	return err
}

var _ http.Handler = &Panel{}
