package detection

import (
	"image"
	"math"
	"math/rand"
)

// binaryMask is a row-major foreground map.
type binaryMask struct {
	w, h int
	on   []bool
}

func newBinaryMask(g *image.Gray) *binaryMask {
	b := g.Bounds()
	m := &binaryMask{w: b.Dx(), h: b.Dy(), on: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			m.on[y*m.w+x] = g.Pix[g.PixOffset(x+b.Min.X, y+b.Min.Y)] > 127
		}
	}
	return m
}

func (m *binaryMask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.on[y*m.w+x]
}

// externalContours returns the outer boundary of every foreground component
// that is not enclosed in a hole of another component, matching OpenCV's
// RETR_EXTERNAL.
func externalContours(m *binaryMask) []Contour {
	outside := outerBackground(m)

	labels := make([]int, m.w*m.h)
	var contours []Contour
	next := 1

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			i := y*m.w + x
			if !m.on[i] || labels[i] != 0 {
				continue
			}

			touchesOutside := false
			floodFill(m, labels, x, y, next, func(px, py int) {
				if touchesOutside {
					return
				}
				for _, d := range mooreDirs {
					nx, ny := px+d.X, py+d.Y
					if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h || outside[ny*m.w+nx] {
						touchesOutside = true
						return
					}
				}
			})
			next++

			if !touchesOutside {
				continue
			}

			// (x, y) is the first pixel of the component in raster order,
			// so its west neighbour is background.
			pts := traceBoundary(m, image.Point{X: x, Y: y})
			contours = append(contours, Contour{
				Points:    pts,
				Area:      polygonArea(pts),
				Perimeter: polygonPerimeter(pts),
			})
		}
	}
	return contours
}

// outerBackground marks background pixels 4-connected to the image border.
func outerBackground(m *binaryMask) []bool {
	out := make([]bool, m.w*m.h)
	stack := make([]image.Point, 0, 2*(m.w+m.h))
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.w || y >= m.h {
			return
		}
		i := y*m.w + x
		if m.on[i] || out[i] {
			return
		}
		out[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < m.w; x++ {
		push(x, 0)
		push(x, m.h-1)
	}
	for y := 0; y < m.h; y++ {
		push(0, y)
		push(m.w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return out
}

// floodFill labels the 8-connected component containing (startX, startY)
// and calls visit for every pixel. Stack-based to avoid deep recursion on
// large components.
func floodFill(m *binaryMask, labels []int, startX, startY, label int, visit func(x, y int)) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.at(p.X, p.Y) {
			continue
		}
		i := p.Y*m.w + p.X
		if labels[i] != 0 {
			continue
		}

		labels[i] = label
		visit(p.X, p.Y)

		for _, d := range mooreDirs {
			stack = append(stack, image.Point{X: p.X + d.X, Y: p.Y + d.Y})
		}
	}
}

// mooreDirs lists the 8 neighbours clockwise (Y grows downward), starting
// west.
var mooreDirs = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func dirIndex(d image.Point) int {
	for i, md := range mooreDirs {
		if md == d {
			return i
		}
	}
	return 0
}

// traceBoundary follows the outer boundary of the component containing
// start with Moore-neighbour tracing. start must have a background west
// neighbour. Tracing stops when start is re-entered with the same first move
// (Jacob's criterion).
func traceBoundary(m *binaryMask, start image.Point) []image.Point {
	contour := []image.Point{start}

	cur := start
	back := 0 // direction from cur to its backtrack pixel
	var firstMove image.Point
	first := true

	limit := 4*len(m.on) + 8
	for step := 0; step < limit; step++ {
		moved := false
		for i := 1; i <= 8; i++ {
			d := (back + i) % 8
			nx, ny := cur.X+mooreDirs[d].X, cur.Y+mooreDirs[d].Y
			if !m.at(nx, ny) {
				continue
			}

			next := image.Point{X: nx, Y: ny}
			if first {
				firstMove = next
				first = false
			} else if cur == start && next == firstMove {
				return contour
			}

			prev := (back + i - 1) % 8
			bp := cur.Add(mooreDirs[prev])
			back = dirIndex(bp.Sub(next))
			cur = next
			moved = true
			break
		}
		if !moved {
			// Isolated pixel.
			return contour
		}
		if cur == start {
			continue
		}
		contour = append(contour, cur)
	}
	return contour
}

// polygonArea is the shoelace area of a closed polygon.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// polygonPerimeter is the closed length of the polygon.
func polygonPerimeter(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// minEnclosingCircle is Welzl's algorithm in its iterative move-to-front
// form. The input is shuffled with a fixed seed so results are reproducible.
func minEnclosingCircle(pts []image.Point) Circle {
	if len(pts) == 0 {
		return Circle{}
	}

	p := make([][2]float64, len(pts))
	for i, pt := range pts {
		p[i] = [2]float64{float64(pt.X), float64(pt.Y)}
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })

	c := Circle{X: p[0][0], Y: p[0][1]}
	for i := 1; i < len(p); i++ {
		if inCircle(c, p[i]) {
			continue
		}
		c = Circle{X: p[i][0], Y: p[i][1]}
		for j := 0; j < i; j++ {
			if inCircle(c, p[j]) {
				continue
			}
			c = circleFrom2(p[i], p[j])
			for k := 0; k < j; k++ {
				if inCircle(c, p[k]) {
					continue
				}
				c = circleFrom3(p[i], p[j], p[k])
			}
		}
	}
	return c
}

func inCircle(c Circle, p [2]float64) bool {
	return math.Hypot(p[0]-c.X, p[1]-c.Y) <= c.Radius+1e-7
}

func circleFrom2(a, b [2]float64) Circle {
	return Circle{
		X:      (a[0] + b[0]) / 2,
		Y:      (a[1] + b[1]) / 2,
		Radius: math.Hypot(a[0]-b[0], a[1]-b[1]) / 2,
	}
}

func circleFrom3(a, b, c [2]float64) Circle {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		// Collinear: the circle through the two farthest points.
		best := circleFrom2(a, b)
		if alt := circleFrom2(a, c); alt.Radius > best.Radius {
			best = alt
		}
		if alt := circleFrom2(b, c); alt.Radius > best.Radius {
			best = alt
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{X: ux + a[0], Y: uy + a[1], Radius: math.Hypot(ux, uy)}
}
