package spatial

import "math"

// Point is a single (x, y) location in the plane.
type Point struct {
	X, Y float64
}

// Rectangle is an axis-aligned bounding rectangle. The zero value is the
// degenerate rectangle at the origin, not the empty sentinel; use
// EmptyRectangle for the additive-identity sentinel.
type Rectangle struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRectangle builds a Rectangle from two opposite corners, sorting each
// axis independently so callers never need to pre-sort min/max themselves.
// Mirrors com.infomatiq.jsi.Rectangle's two-corner constructor.
func NewRectangle(x1, y1, x2, y2 float64) Rectangle {
	r := Rectangle{}
	r.set(x1, y1, x2, y2)
	return r
}

func (r *Rectangle) set(x1, y1, x2, y2 float64) {
	r.MinX, r.MaxX = math.Min(x1, x2), math.Max(x1, x2)
	r.MinY, r.MaxY = math.Min(y1, y2), math.Max(y1, y2)
}

// EmptyRectangle is the additive-identity sentinel: Add-ing any rectangle
// to it yields that rectangle unchanged.
func EmptyRectangle() Rectangle {
	return Rectangle{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether r is (or has decayed into) the empty sentinel.
func (r Rectangle) IsEmpty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// Intersects reports whether a and b share at least one point.
func Intersects(a, b Rectangle) bool {
	return a.MaxX >= b.MinX && a.MinX <= b.MaxX &&
		a.MaxY >= b.MinY && a.MinY <= b.MaxY
}

// Contains reports whether a fully encloses b.
func Contains(a, b Rectangle) bool {
	return a.MaxX >= b.MaxX && a.MinX <= b.MinX &&
		a.MaxY >= b.MaxY && a.MinY <= b.MinY
}

// Area returns the rectangle's area. The empty sentinel's width and height
// are both -Inf, so its area is +Inf; callers computing enlargement should
// use Enlargement rather than relying on Area's behaviour at +/-Inf directly.
func Area(r Rectangle) float64 {
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// Enlargement returns the area added to r's own area by unioning in s. It
// is guarded against the infinities that EmptyRectangle or pathological
// callers can introduce: a rectangle with infinite area cannot be enlarged
// (returns 0), and a union that grows to infinite area enlarges by +Inf.
func Enlargement(r, s Rectangle) float64 {
	ra := Area(r)
	if math.IsInf(ra, 1) {
		return 0
	}
	u := Union(r, s)
	ua := Area(u)
	if math.IsInf(ua, 1) {
		return math.Inf(1)
	}
	return ua - ra
}

// Union returns the smallest rectangle enclosing both r and s.
func Union(r, s Rectangle) Rectangle {
	Add(&r, s)
	return r
}

// Add grows r in place so it encloses s as well.
func Add(r *Rectangle, s Rectangle) {
	r.MinX = math.Min(r.MinX, s.MinX)
	r.MinY = math.Min(r.MinY, s.MinY)
	r.MaxX = math.Max(r.MaxX, s.MaxX)
	r.MaxY = math.Max(r.MaxY, s.MaxY)
}

// Equals is coordinate equality; it carries no notion of object identity.
func Equals(r, s Rectangle) bool {
	return r.MinX == s.MinX && r.MinY == s.MinY && r.MaxX == s.MaxX && r.MaxY == s.MaxY
}

// EdgeOverlaps reports whether r and s share at least one extreme
// coordinate on any axis. Node.deleteEntry uses this to decide, cheaply,
// whether removing an entry with rectangle s could possibly have changed
// r's MBR -- an interior rectangle's removal never can.
func EdgeOverlaps(r, s Rectangle) bool {
	return r.MinX == s.MinX || r.MinY == s.MinY || r.MaxX == s.MaxX || r.MaxY == s.MaxY
}

// DistanceSq returns the squared distance from p to the nearest point of r,
// which is zero when p lies inside r.
func DistanceSq(r Rectangle, p Point) float64 {
	dx := math.Max(0, math.Max(r.MinX-p.X, p.X-r.MaxX))
	dy := math.Max(0, math.Max(r.MinY-p.Y, p.Y-r.MaxY))
	return dx*dx + dy*dy
}

// Distance returns the (non-squared) distance from p to the nearest point
// of r.
func Distance(r Rectangle, p Point) float64 {
	return math.Sqrt(DistanceSq(r, p))
}
