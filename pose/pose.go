package pose

// Pose is the position and orientation of the device relative to a reference
// space, stored as a rigid model matrix.
//
// The zero value is not usable; create poses with NewPose.
type Pose struct {
	model Mat4
}

// NewPose composes a pose from a position and an orientation.
func NewPose(position Vec3, orientation Quat) *Pose {
	return &Pose{model: Compose(position, orientation)}
}

// ModelMatrix returns the head-to-world transform.
func (p *Pose) ModelMatrix() Mat4 { return p.model }

// ViewMatrix returns the world-to-head transform used for rendering.
func (p *Pose) ViewMatrix() Mat4 { return EyeView(p.model) }

// SetModelMatrix replaces the pose with a matrix delivered by the tracker.
func (p *Pose) SetModelMatrix(m Mat4) { p.model = m }

func (p *Pose) Position() Vec3 { return TranslationOf(p.model) }

func (p *Pose) SetPosition(v Vec3) {
	p.model[12] = v.X
	p.model[13] = v.Y
	p.model[14] = v.Z
}

func (p *Pose) Orientation() Quat { return RotationOf(p.model) }

// SetOrientation rebuilds the rotation block and keeps the current position.
func (p *Pose) SetOrientation(q Quat) {
	p.model = Compose(p.Position(), q)
}

// Translate moves the pose by v in world space.
func (p *Pose) Translate(v Vec3) {
	p.model[12] += v.X
	p.model[13] += v.Y
	p.model[14] += v.Z
}
