package imaging

import (
	"image"
	"math"
)

// CLAHE applies contrast-limited adaptive histogram equalisation.
//
// The image is split into tilesX × tilesY tiles. Each tile gets its own
// equalisation curve whose histogram is clipped at clipLimit times the mean
// bin height; the clipped excess is spread evenly over all bins. Output pixels
// blend the curves of the four nearest tile centres bilinearly, so tile
// seams do not show. The clip semantics match OpenCV's createCLAHE.
func CLAHE(gray *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	if tilesX > w {
		tilesX = w
	}
	if tilesY > h {
		tilesY = h
	}
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}

	at := func(x, y int) uint8 {
		return gray.Pix[(y+b.Min.Y-gray.Rect.Min.Y)*gray.Stride+(x+b.Min.X-gray.Rect.Min.X)]
	}

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := ty*h/tilesY, (ty+1)*h/tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := tx*w/tilesX, (tx+1)*w/tilesX

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[at(x, y)]++
				}
			}
			luts[ty*tilesX+tx] = equalizeTile(hist, (x1-x0)*(y1-y0), clipLimit)
		}
	}

	tileW := float64(w) / float64(tilesX)
	tileH := float64(h) / float64(tilesY)

	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/tileH - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		if ty0 < 0 {
			ty0, wy = 0, 0
		}
		if ty1 > tilesY-1 {
			ty1 = tilesY - 1
		}

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/tileW - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			if tx0 < 0 {
				tx0, wx = 0, 0
			}
			if tx1 > tilesX-1 {
				tx1 = tilesX - 1
			}

			v := at(x, y)
			top := (1-wx)*float64(luts[ty0*tilesX+tx0][v]) + wx*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-wx)*float64(luts[ty1*tilesX+tx0][v]) + wx*float64(luts[ty1*tilesX+tx1][v])
			out.Pix[y*out.Stride+x] = uint8(math.Round((1-wy)*top + wy*bottom))
		}
	}
	return out
}

func equalizeTile(hist [256]int, area int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	if area == 0 {
		return lut
	}

	if clipLimit > 0 {
		limit := int(clipLimit * float64(area) / 256)
		if limit < 1 {
			limit = 1
		}
		excess := 0
		for i, c := range hist {
			if c > limit {
				excess += c - limit
				hist[i] = limit
			}
		}
		bonus, rest := excess/256, excess%256
		for i := range hist {
			hist[i] += bonus
			if i < rest {
				hist[i]++
			}
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i, c := range hist {
		sum += c
		v := math.Round(float64(sum) * scale)
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}
	return lut
}
