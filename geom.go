package px

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Size is a non-negative width and height in pixels.
type Size struct {
	width, height int
}

// Sz returns a Size. Negative dimensions are clamped to 0.
func Sz(width, height int) Size {
	return Size{width: max(width, 0), height: max(height, 0)}
}

// Width returns the width in pixels.
func (s Size) Width() int { return s.width }

// Height returns the height in pixels.
func (s Size) Height() int { return s.height }

// Area returns width * height.
func (s Size) Area() int { return s.width * s.height }

// Empty reports whether the size has no pixels.
func (s Size) Empty() bool { return s.width == 0 || s.height == 0 }

// Contains reports whether p lies inside a buffer of this size.
func (s Size) Contains(p Point) bool {
	return p.X >= 0 && p.X < s.width && p.Y >= 0 && p.Y < s.height
}

// Rect is an axis-aligned rectangle with Min inclusive and Max exclusive.
// The constructors keep Min <= Max on both axes.
type Rect struct {
	Min, Max Point
}

// RectFromCorners returns the rectangle spanned by two opposite corners.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Min: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Point{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// RectAt returns the rectangle with top-left corner p and size s.
func RectAt(p Point, s Size) Rect {
	return Rect{Min: p, Max: Point{X: p.X + s.width, Y: p.Y + s.height}}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Sz(r.Max.X-r.Min.X, r.Max.Y-r.Min.Y)
}

// Intersect returns the largest rectangle contained by both r and o.
// An empty intersection has zero size.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: Point{X: max(r.Min.X, o.Min.X), Y: max(r.Min.Y, o.Min.Y)},
		Max: Point{X: min(r.Max.X, o.Max.X), Y: min(r.Max.Y, o.Max.Y)},
	}
	if out.Max.X < out.Min.X || out.Max.Y < out.Min.Y {
		return Rect{Min: out.Min, Max: out.Min}
	}
	return out
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}
