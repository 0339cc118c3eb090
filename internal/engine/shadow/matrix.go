package shadow

import "github.com/go-gl/mathgl/mgl32"

// CorrectProjection negates the z row of proj when the platform depth buffer
// is reversed, so shadow depth compares the same way on every platform.
func CorrectProjection(proj mgl32.Mat4, reversedZ bool) mgl32.Mat4 {
	if reversedZ {
		for col := 0; col < 4; col++ {
			proj.Set(2, col, -proj.At(2, col))
		}
	}
	return proj
}

// ClipToTexture maps clip space [-1,1] onto texture space [0,1] on all
// three axes.
func ClipToTexture() mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 0, 0.5)
	m.Set(1, 1, 0.5)
	m.Set(2, 2, 0.5)
	m.Set(0, 3, 0.5)
	m.Set(1, 3, 0.5)
	m.Set(2, 3, 0.5)
	return m
}

// TileRemap squeezes texture space into one atlas tile: x and y are scaled
// by scale and moved to offset*scale, where offset is the tile grid coordinate.
func TileRemap(offset mgl32.Vec2, scale float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 0, scale)
	m.Set(1, 1, scale)
	m.Set(0, 3, offset.X()*scale)
	m.Set(1, 3, offset.Y()*scale)
	return m
}

// WorldToShadow returns the matrix taking world positions into shadow
// texture space for the given light view and projection.
func WorldToShadow(view, proj mgl32.Mat4, reversedZ bool) mgl32.Mat4 {
	return ClipToTexture().Mul4(CorrectProjection(proj, reversedZ).Mul4(view))
}
