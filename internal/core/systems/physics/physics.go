package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HorizontalDistance computes the XZ-plane distance between two points.
func HorizontalDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(b.X()-a.X(), b.Z()-a.Z())
}

// Flatten drops the vertical component of v.
func Flatten(v mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X(), 0, v.Z()} }

// YawTowards returns the rotation about +Y that faces from -> to. The model
// forward axis is +Z.
func YawTowards(from, to mgl64.Vec3) (mgl64.Quat, bool) {
	d := Flatten(to.Sub(from))
	if d.Len() < 1e-6 {
		return mgl64.QuatIdent(), false
	}
	return mgl64.QuatRotate(math.Atan2(d.X(), d.Z()), mgl64.Vec3{0, 1, 0}), true
}

func aabbOverlap(aMin, aMax, bMin, bMax mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if aMax[i] <= bMin[i] || bMax[i] <= aMin[i] {
			return false
		}
	}
	return true
}

// sphereAABB reports whether a sphere touches a box.
func sphereAABB(center mgl64.Vec3, radius float64, bMin, bMax mgl64.Vec3) bool {
	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = math.Max(bMin[i], math.Min(center[i], bMax[i]))
	}
	return closest.Sub(center).Len() <= radius
}

// rayAABB is the slab test. It returns the entry fraction along dir and the
// hit normal.
func rayAABB(origin, dir, bMin, bMax mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	tMin, tMax := 0.0, 1.0
	var normal mgl64.Vec3
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < bMin[i] || origin[i] > bMax[i] {
				return 0, normal, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (bMin[i] - origin[i]) * inv
		t2 := (bMax[i] - origin[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			normal = mgl64.Vec3{}
			normal[i] = sign
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, normal, false
		}
	}
	return tMin, normal, true
}
