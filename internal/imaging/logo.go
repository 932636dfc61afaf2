// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded client logos. Raster logos wider or
// taller than MaxLogoSide are scaled down to fit and re-encoded as PNG;
// smaller rasters and SVGs are passed through untouched.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// MaxLogoSide is the longest edge, in pixels, a stored raster logo may have.
const MaxLogoSide = 512

// ErrUndecodable is returned when a raster logo cannot be decoded.
var ErrUndecodable = errors.New("imaging: undecodable image")

// Logo is an image ready for upload.
type Logo struct {
	Data        []byte
	ContentType string
	Width       int // zero for SVG
	Height      int
}

// NormalizeLogo decodes a logo of the given content type and downscales it
// when it exceeds MaxLogoSide. The aspect ratio is preserved.
func NormalizeLogo(data []byte, contentType string) (*Logo, error) {
	if contentType == "image/svg+xml" {
		return &Logo{Data: data, ContentType: contentType}, nil
	}

	img, err := decode(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, contentType, err)
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), MaxLogoSide)
	if w == b.Dx() && h == b.Dy() {
		return &Logo{Data: data, ContentType: contentType, Width: w, Height: h}, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	return &Logo{Data: buf.Bytes(), ContentType: "image/png", Width: w, Height: h}, nil
}

func decode(data []byte, contentType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/png":
		return png.Decode(r)
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	return nil, fmt.Errorf("unsupported type %q", contentType)
}

// fit scales w x h down so neither side exceeds limit. Sizes already
// within bounds are returned unchanged; no side drops below one pixel.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, atLeastOne(h * limit / w)
	}
	return atLeastOne(w * limit / h), limit
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
