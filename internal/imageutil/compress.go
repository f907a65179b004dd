// Package imageutil recompresses provider-generated images under a storage
// byte budget before upload.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"

	xdraw "golang.org/x/image/draw"
)

const (
	startQuality  = 85
	minQuality    = 30
	qualityStep   = 10
	resizeQuality = 70
	minWidth      = 800
	scaleFactor   = 0.8
)

// Compress re-encodes image data as JPEG under maxSizeKB, best effort:
// quality steps down from 85 to 30, then dimensions shrink by 20% per pass
// until the budget or the minimum width is reached. The smallest attempted
// encoding is returned even if it is still over budget at the floor. The
// returned mime type is always image/jpeg.
func Compress(data []byte, maxSizeKB int) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	img := flatten(src)

	budget := maxSizeKB * 1024

	var compressed []byte
	for quality := startQuality; quality >= minQuality; quality -= qualityStep {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, "", err
		}
		if len(compressed) <= budget {
			log.Printf("[ImageUtil] Compressed image to %.1f KB (quality=%d)", float64(len(compressed))/1024, quality)
			return compressed, "image/jpeg", nil
		}
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	for len(compressed) > budget && width > minWidth {
		width = int(float64(width) * scaleFactor)
		height = int(float64(height) * scaleFactor)
		resized := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		compressed, err = encodeJPEG(resized, resizeQuality)
		if err != nil {
			return nil, "", err
		}
	}

	log.Printf("[ImageUtil] Compressed image to %.1f KB (%dx%d)", float64(len(compressed))/1024, width, height)
	return compressed, "image/jpeg", nil
}

// flatten drops any alpha channel by compositing onto white, since JPEG has
// no transparency.
func flatten(src image.Image) image.Image {
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
