package graph

import "github.com/Carmen-Shannon/oxy-go/engine/model"

// clipNode is one clip playback node: an authored clip plus its local clock.
// The node does no looping of its own; the orchestrator above decides wrap
// and completion and pushes the clock it wants sampled.
type clipNode struct {
	clip      *model.AnimationClip
	time      float32
	speed     float32
	done      bool
	boneCount int
}

func newClipNode(clip *model.AnimationClip) *clipNode {
	boneCount := 0
	for _, channel := range clip.Channels {
		if int(channel.BoneIndex)+1 > boneCount {
			boneCount = int(channel.BoneIndex) + 1
		}
	}
	return &clipNode{clip: clip, speed: 1, boneCount: boneCount}
}

// sample evaluates the clip at the node's current time into out. Bones the
// clip has no channel for are left untouched.
func (n *clipNode) sample(out []model.Transform) {
	for _, channel := range n.clip.Channels {
		bone := int(channel.BoneIndex)
		if bone < 0 || bone >= len(out) {
			continue
		}
		transform := identityTransform()
		if len(channel.PositionKeys) > 0 {
			transform.Translation = sampleVector(channel.PositionKeys, n.time)
		}
		if len(channel.RotationKeys) > 0 {
			transform.Rotation = sampleQuaternion(channel.RotationKeys, n.time)
		}
		if len(channel.ScaleKeys) > 0 {
			transform.Scale = sampleVector(channel.ScaleKeys, n.time)
		}
		out[bone] = transform
	}
}

// sampleVector interpolates a keyframe track at the given time, clamping to
// the first and last keys outside the authored range.
func sampleVector(keys []model.VectorKeyframe, time float32) [3]float32 {
	if time <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if time >= keys[last].Time {
		return keys[last].Value
	}
	for i := 0; i < last; i++ {
		if time < keys[i+1].Time {
			span := keys[i+1].Time - keys[i].Time
			if span <= 0 {
				return keys[i].Value
			}
			t := (time - keys[i].Time) / span
			return lerp3(keys[i].Value, keys[i+1].Value, t)
		}
	}
	return keys[last].Value
}

func sampleQuaternion(keys []model.QuaternionKeyframe, time float32) [4]float32 {
	if time <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if time >= keys[last].Time {
		return keys[last].Value
	}
	for i := 0; i < last; i++ {
		if time < keys[i+1].Time {
			span := keys[i+1].Time - keys[i].Time
			if span <= 0 {
				return keys[i].Value
			}
			t := (time - keys[i].Time) / span
			return slerpQuat(keys[i].Value, keys[i+1].Value, t)
		}
	}
	return keys[last].Value
}
