// Package preview draws still images of imported models.
package preview

import (
	"image"
	"image/color"
	gomath "math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/internal/render"
)

// Options controls a preview.
type Options struct {
	Size        int     // output width and height in pixels
	Supersample int     // render at Size*Supersample, then downscale
	Edges       bool    // draw polyline submeshes
	Yaw         float32 // rotation about the vertical axis, degrees
	Pitch       float32 // tilt towards the viewer, degrees
	Background  color.NRGBA
	Margin      float32 // fraction of Size kept free on each side
}

// DefaultOptions returns an isometric-style view on a transparent background.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		Edges:       true,
		Yaw:         -45,
		Pitch:       30,
		Margin:      0.06,
	}
}

const (
	ambient   = 0.45
	edgeWidth = 1.0 // output pixels
	edgeBias  = 0.05
)

var lightDir = mgl32.Vec3{-0.4, -0.8, -0.45}.Normalize()

// shape is one depth-sorted polygon in canvas space.
type shape struct {
	pts   [][2]float32
	depth float32
	color color.NRGBA
}

// Render draws items with an orthographic camera fitted to their bounds.
// Triangles are painted back to front with Lambert shading; geometry has no
// reliable winding, so both faces are lit.
func Render(items []render.Item, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	full := opts.Size * opts.Supersample

	view := mgl32.HomogRotate3DX(mgl32.DegToRad(opts.Pitch)).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(opts.Yaw)))

	var shapes []shape
	var points []mgl32.Vec3
	for _, it := range items {
		world := make([]mgl32.Vec3, len(it.Mesh.Vertices))
		for i := range world {
			world[i] = mgl32.TransformCoordinate(it.WorldVertex(i), view)
		}
		for si, sub := range it.Mesh.Submeshes {
			c := it.SubmeshColor(si)
			switch sub.Topology {
			case mesh.Triangles:
				for t := 0; t+2 < len(sub.Indices); t += 3 {
					a, b, cc := world[sub.Indices[t]], world[sub.Indices[t+1]], world[sub.Indices[t+2]]
					shapes = append(shapes, shape{
						pts:   [][2]float32{{a.X(), a.Y()}, {b.X(), b.Y()}, {cc.X(), cc.Y()}},
						depth: (a.Z() + b.Z() + cc.Z()) / 3,
						color: shade(c, a, b, cc),
					})
				}
			case mesh.LineStrip:
				if !opts.Edges {
					continue
				}
				for k := 0; k+1 < len(sub.Indices); k++ {
					a, b := world[sub.Indices[k]], world[sub.Indices[k+1]]
					shapes = append(shapes, shape{
						pts:   [][2]float32{{a.X(), a.Y()}, {b.X(), b.Y()}},
						depth: (a.Z()+b.Z())/2 - edgeBias,
						color: c,
					})
				}
			}
		}
		points = append(points, world...)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, full, full))
	if opts.Background.A > 0 {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	if len(points) > 0 {
		fit := fitTransform(points, float32(full), opts.Margin)
		for i := range shapes {
			for j, p := range shapes[i].pts {
				shapes[i].pts[j] = fit(p)
			}
		}
		// Farther shapes first; the camera looks along +Z.
		sort.SliceStable(shapes, func(i, j int) bool {
			return shapes[i].depth > shapes[j].depth
		})
		paint(canvas, shapes, edgeWidth*float32(opts.Supersample))
	}

	return downsample(canvas, opts.Size)
}

func shade(c color.NRGBA, a, b, cc mgl32.Vec3) color.NRGBA {
	n := b.Sub(a).Cross(cc.Sub(a))
	if n.Len() == 0 {
		return c
	}
	lambert := gomath.Abs(float64(n.Normalize().Dot(lightDir)))
	k := ambient + (1-ambient)*lambert
	return color.NRGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

// fitTransform maps view-space XY onto a size x size canvas, keeping aspect
// ratio and centring the projected bounds.
func fitTransform(points []mgl32.Vec3, size, margin float32) func([2]float32) [2]float32 {
	minX, minY := points[0].X(), points[0].Y()
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X())
		maxX = max(maxX, p.X())
		minY = min(minY, p.Y())
		maxY = max(maxY, p.Y())
	}
	extent := max(maxX-minX, maxY-minY)
	if extent == 0 {
		extent = 1
	}
	scale := size * (1 - 2*margin) / extent
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return func(p [2]float32) [2]float32 {
		return [2]float32{
			size/2 + (p[0]-cx)*scale,
			size/2 + (p[1]-cy)*scale,
		}
	}
}

func paint(dst *image.RGBA, shapes []shape, lineWidth float32) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, s := range shapes {
		z.Reset(b.Dx(), b.Dy())
		if len(s.pts) == 2 {
			if !segment(z, s.pts[0], s.pts[1], lineWidth) {
				continue
			}
		} else {
			z.MoveTo(s.pts[0][0], s.pts[0][1])
			for _, p := range s.pts[1:] {
				z.LineTo(p[0], p[1])
			}
			z.ClosePath()
		}
		z.Draw(dst, b, image.NewUniform(s.color), image.Point{})
	}
}

// segment adds a segment of width w as a thin quad. It reports false for a
// zero-length segment.
func segment(z *vector.Rasterizer, a, b [2]float32, w float32) bool {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := float32(gomath.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return false
	}
	nx, ny := -dy/l*w/2, dx/l*w/2
	z.MoveTo(a[0]+nx, a[1]+ny)
	z.LineTo(b[0]+nx, b[1]+ny)
	z.LineTo(b[0]-nx, b[1]-ny)
	z.LineTo(a[0]-nx, a[1]-ny)
	z.ClosePath()
	return true
}

// downsample scales the premultiplied canvas to size x size and returns it
// with straight alpha.
func downsample(src *image.RGBA, size int) *image.NRGBA {
	scaled := src
	if src.Bounds().Dx() != size {
		scaled = image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	out := image.NewNRGBA(scaled.Bounds())
	draw.Draw(out, out.Bounds(), scaled, image.Point{}, draw.Src)
	return out
}
