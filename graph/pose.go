package graph

import (
	"math"

	"github.com/Carmen-Shannon/oxy-go/engine/model"
)

// identityTransform is the rest pose for bones no contributing clip animates.
func identityTransform() model.Transform {
	return model.Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// newPose allocates a bone-count sized pose initialized to the rest pose.
func newPose(boneCount int) []model.Transform {
	pose := make([]model.Transform, boneCount)
	resetPose(pose)
	return pose
}

func resetPose(pose []model.Transform) {
	for i := range pose {
		pose[i] = identityTransform()
	}
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// slerpQuat interpolates between two quaternions along the shorter arc,
// falling back to normalized lerp when the inputs are nearly parallel.
func slerpQuat(a, b [4]float32, t float32) [4]float32 {
	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	if dot < 0 {
		dot = -dot
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
	}

	var wa, wb float32
	if dot > 0.9995 {
		wa = 1 - t
		wb = t
	} else {
		theta := float32(math.Acos(float64(dot)))
		sinTheta := float32(math.Sin(float64(theta)))
		wa = float32(math.Sin(float64((1-t)*theta))) / sinTheta
		wb = float32(math.Sin(float64(t*theta))) / sinTheta
	}

	out := [4]float32{
		wa*a[0] + wb*b[0],
		wa*a[1] + wb*b[1],
		wa*a[2] + wb*b[2],
		wa*a[3] + wb*b[3],
	}
	return normalizeQuat(out)
}

func normalizeQuat(q [4]float32) [4]float32 {
	length := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if length == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	return [4]float32{q[0] / length, q[1] / length, q[2] / length, q[3] / length}
}

func lerpTransform(a, b model.Transform, t float32) model.Transform {
	return model.Transform{
		Translation: lerp3(a.Translation, b.Translation, t),
		Rotation:    slerpQuat(a.Rotation, b.Rotation, t),
		Scale:       lerp3(a.Scale, b.Scale, t),
	}
}

// blendInto folds src into dst with interpolation factor t, the progressive
// weighted-average step used when accumulating mixer inputs.
func blendInto(dst, src []model.Transform, t float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] = lerpTransform(dst[i], src[i], t)
	}
}
