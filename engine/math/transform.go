package math

func TransformCreate() *Transform {
	return &Transform{Scale: NewVec2One()}
}

func TransformFromPosition(position Vec2) *Transform {
	return &Transform{Position: position, Scale: NewVec2One()}
}

func (t *Transform) SetPosition(position Vec2) {
	t.Position = position
}

func (t *Transform) Translate(translation Vec2) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) SetRotation(rotation float32) {
	t.Rotation = rotation
}

func (t *Transform) Rotate(rotation float32) {
	t.Rotation += rotation
}

func (t *Transform) SetScale(scale Vec2) {
	t.Scale = scale
}

// GetLocal returns translation × rotation × scale.
func (t *Transform) GetLocal() Mat4 {
	tr := NewMat4Translation(Vec3{X: t.Position.X, Y: t.Position.Y})
	rot := NewMat4EulerZ(t.Rotation)
	sc := NewMat4Scale(Vec3{X: t.Scale.X, Y: t.Scale.Y, Z: 1})
	return tr.Mul(rot).Mul(sc)
}

func (t *Transform) GetWorld() Mat4 {
	local := t.GetLocal()
	if t.Parent != nil {
		return t.Parent.GetWorld().Mul(local)
	}
	return local
}
