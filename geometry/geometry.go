// Package geometry holds 2d primitives used by map collision and bsp queries.
// Planes are vertical (z component of normal is zero) and a point is behind plane
// when dot(normal, point) <= distance.
package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const EPSILON = 1.0 / 65536.0

type Side int

const (
	SIDE_RIGHT Side = iota
	SIDE_LEFT
)

func (s Side) String() string {
	if s == SIDE_RIGHT {
		return "right"
	}
	return "left"
}

type Interval struct {
	Min, Max float32
}

func NewInterval(min, max float32) Interval {
	return Interval{Min: min, Max: max}
}

func (i Interval) Contains(v float32) bool {
	return v >= i.Min && v <= i.Max
}

// Line2 is a point and direction, direction is not normalized
type Line2 struct {
	Point mgl32.Vec2
	Dir   mgl32.Vec2
}

func NewLine2(point, dir mgl32.Vec2) Line2 {
	return Line2{Point: point, Dir: dir}
}

func (l Line2) End() mgl32.Vec2 {
	return l.Point.Add(l.Dir)
}

// Normal is perpendicular to the right of direction.
// Degenerate line has zero normal.
func (l Line2) Normal() mgl32.Vec2 {
	n := mgl32.Vec2{l.Dir[1], -l.Dir[0]}
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

// PointSide reports side of point relative to direction of line.
// Points exactly on line are on the left, like bsp walk of the engine.
func (l Line2) PointSide(p mgl32.Vec2) Side {
	rel := p.Sub(l.Point)
	if l.Dir[0]*rel[1]-l.Dir[1]*rel[0] >= 0 {
		return SIDE_LEFT
	}
	return SIDE_RIGHT
}

// IsAxisAligned reports if normal is parallel to x or y axis
func IsAxisAligned(normal mgl32.Vec2) bool {
	return normal[0] == 0 || normal[1] == 0
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

func NewPlane2(normal mgl32.Vec2, distance float32) Plane {
	return Plane{Normal: normal.Vec3(0), Distance: distance}
}

// Behind reports if point is on inner side of the plane
func (p Plane) Behind(point mgl32.Vec2) bool {
	return p.Normal.Vec2().Dot(point) <= p.Distance+EPSILON
}

type AABB2 struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func EmptyAABB2() AABB2 {
	inf := math32.Inf(1)
	return AABB2{
		Min: mgl32.Vec2{inf, inf},
		Max: mgl32.Vec2{-inf, -inf},
	}
}

// AABB2FromExtents uses doom bounding box order
func AABB2FromExtents(top, bottom, left, right float32) AABB2 {
	return AABB2{
		Min: mgl32.Vec2{left, bottom},
		Max: mgl32.Vec2{right, top},
	}
}

func (b AABB2) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

func (b *AABB2) AddPoint(p mgl32.Vec2) {
	for i := 0; i < 2; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func (b AABB2) Contains(p mgl32.Vec2) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] && p[1] >= b.Min[1] && p[1] <= b.Max[1]
}

// Planes returns outward facing planes of the box sides
func (b AABB2) Planes() [4]Plane {
	return [4]Plane{
		NewPlane2(mgl32.Vec2{-1, 0}, -b.Min[0]),
		NewPlane2(mgl32.Vec2{1, 0}, b.Max[0]),
		NewPlane2(mgl32.Vec2{0, -1}, -b.Min[1]),
		NewPlane2(mgl32.Vec2{0, 1}, b.Max[1]),
	}
}
