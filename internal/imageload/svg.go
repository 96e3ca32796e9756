package imageload

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgSniffSize is how far into a file the root element is looked for; XML
// prologs and comments may come first.
const svgSniffSize = 4096

func isSVG(data []byte) bool {
	head := data
	if len(head) > svgSniffSize {
		head = head[:svgSniffSize]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// decodeSVG rasterises an SVG document at the size of its view box, under
// the same limits as bitmap images.
func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has no size: %gx%g", icon.ViewBox.W, icon.ViewBox.H)
	}
	if err := checkSize(w, h); err != nil {
		return nil, err
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
