// Package meshconvert implements the Mesh Converter (§4.7): turns one Mesh
// Quad into a Face Instance, resolving position, rotation, UV tiling,
// texture layer, and ambient occlusion.
package meshconvert

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/ao"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/texturearray"
	"voxelcore/internal/voxel"
)

// Converter ties together the registries a quad needs to become a Face
// Instance: the block registry for texture/layer lookups, the texture
// array for stable layer indices, and the AO sampler.
type Converter struct {
	Registry *registry.Registry
	Textures *texturearray.Registry
	AO       *ao.Sampler
}

func New(reg *registry.Registry, tex *texturearray.Registry, aoSampler *ao.Sampler) *Converter {
	return &Converter{Registry: reg, Textures: tex, AO: aoSampler}
}

// faceBasis is the (right, up, normal) world-axis basis matching the
// quad's own (u,v) convention (§4.5), with south's basis being the
// identity orientation (§4.7's "canonical +Z face orientation").
func faceBasis(face registry.BlockFace) (right, up, normal mgl32.Vec3) {
	switch face {
	case registry.FaceDown:
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}
	case registry.FaceUp:
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}
	case registry.FaceNorth:
		return mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}
	case registry.FaceSouth:
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}
	case registry.FaceWest:
		return mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}
	default: // FaceEast
		return mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}
	}
}

// quatFromBasis builds the quaternion that rotates the canonical basis
// (X,Y,Z) into the given orthonormal right-handed basis, via the standard
// rotation-matrix-to-quaternion conversion (Shepperd's method).
func quatFromBasis(right, up, normal mgl32.Vec3) mgl32.Quat {
	m00, m01, m02 := right.X(), up.X(), normal.X()
	m10, m11, m12 := right.Y(), up.Y(), normal.Y()
	m20, m21, m22 := right.Z(), up.Z(), normal.Z()

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := float32(0.5) / sqrt32(trace+1)
		return mgl32.Quat{
			W: 0.25 / s,
			V: mgl32.Vec3{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s},
		}
	case m00 > m11 && m00 > m22:
		s := 2 * sqrt32(1+m00-m11-m22)
		return mgl32.Quat{
			W: (m21 - m12) / s,
			V: mgl32.Vec3{0.25 * s, (m01 + m10) / s, (m02 + m20) / s},
		}
	case m11 > m22:
		s := 2 * sqrt32(1+m11-m00-m22)
		return mgl32.Quat{
			W: (m02 - m20) / s,
			V: mgl32.Vec3{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s},
		}
	default:
		s := 2 * sqrt32(1+m22-m00-m11)
		return mgl32.Quat{
			W: (m10 - m01) / s,
			V: mgl32.Vec3{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s},
		}
	}
}

func sqrt32(v float32) float32 {
	// Newton-Raphson: avoids pulling in math.Sqrt's float64 round-trip for
	// this small, always-positive input.
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// anchor returns the position offset from the quad's origin cell to the
// face's drawn corner, per the §4.7 position table. sizeX/Y/Z are already
// scaled by the element's normalized extent, so a full-cube quad (element
// size 1) reduces to the table exactly, and a partial element (e.g. a
// stair tread) anchors at its own sub-cube boundary.
func anchor(face registry.BlockFace, sizeX, sizeY, sizeZ float32) mgl32.Vec3 {
	switch face {
	case registry.FaceDown:
		return mgl32.Vec3{0, 0, sizeZ}
	case registry.FaceUp:
		return mgl32.Vec3{0, sizeY, 0}
	case registry.FaceNorth:
		return mgl32.Vec3{0, 0, 0}
	case registry.FaceSouth:
		return mgl32.Vec3{sizeX, 0, sizeZ}
	case registry.FaceWest:
		return mgl32.Vec3{0, 0, sizeZ}
	default: // FaceEast
		return mgl32.Vec3{sizeX, 0, 0}
	}
}

func inPlaneSize(q mesh.Quad) (w, h int) {
	switch q.Face {
	case registry.FaceDown, registry.FaceUp:
		return q.SizeX, q.SizeZ
	case registry.FaceNorth, registry.FaceSouth:
		return q.SizeX, q.SizeY
	default:
		return q.SizeY, q.SizeZ
	}
}

// scaledInPlaneSize applies the element's normalized extent to the quad's
// integer in-plane size, so a partial element's face reports its true
// sub-cube width/height rather than a full cell.
func scaledInPlaneSize(face registry.BlockFace, w, h float32, elemSize [3]float32) (float32, float32) {
	switch face {
	case registry.FaceDown, registry.FaceUp:
		return w * elemSize[0], h * elemSize[2]
	case registry.FaceNorth, registry.FaceSouth:
		return w * elemSize[0], h * elemSize[1]
	default:
		return w * elemSize[1], h * elemSize[2]
	}
}

func faceTexture(def *registry.BlockDef, q mesh.Quad) string {
	if q.ElementIndex >= 0 && q.ElementIndex < len(def.Elements) {
		return def.Elements[q.ElementIndex].FaceTexture[q.Face]
	}
	return def.FaceTexture[q.Face]
}

// Convert turns one Mesh Quad into a Face Instance, anchored at the
// chunk's world origin.
func (cv *Converter) Convert(c *voxel.Chunk, src voxel.Source, q mesh.Quad) mesh.FaceInstance {
	def := cv.Registry.Get(q.BlockType)
	right, up, normal := faceBasis(q.Face)

	elemSize := q.ElementSize
	if elemSize == ([3]float32{}) {
		elemSize = [3]float32{1, 1, 1} // no element info (synthetic full cube): identity scale
	}

	ox, oy, oz := c.WorldOrigin()
	origin := mgl32.Vec3{float32(ox + q.OriginX), float32(oy + q.OriginY), float32(oz + q.OriginZ)}
	origin = origin.Add(mgl32.Vec3{q.ElementOffset[0], q.ElementOffset[1], q.ElementOffset[2]})
	position := origin.Add(anchor(q.Face,
		float32(q.SizeX)*elemSize[0],
		float32(q.SizeY)*elemSize[1],
		float32(q.SizeZ)*elemSize[2],
	))

	w, h := inPlaneSize(q)
	wf, hf := scaledInPlaneSize(q.Face, float32(w), float32(h), elemSize)
	texture := faceTexture(def, q)
	layer := 0
	if texture != "" {
		layer = cv.Textures.GetOrRegister(texture)
	}

	aoValues := cv.AO.ForQuad(cv.Registry, c, src, q)

	return mesh.FaceInstance{
		Position:     position,
		Rotation:     quatFromBasis(right, up, normal),
		Scale:        [2]float32{wf, hf},
		Face:         q.Face,
		UV:           [4]float32{0, 0, 16 * wf, 16 * hf},
		TextureLayer: uint32(layer),
		RenderLayer:  def.RenderLayer,
		AO:           aoValues,
	}
}

// ConvertChunk converts every quad produced by the binary or traditional
// mesher for one chunk into a layer-grouped Chunk Mesh (§4.11 step 3).
func (cv *Converter) ConvertChunk(c *voxel.Chunk, src voxel.Source, quads []mesh.Quad) mesh.ChunkMesh {
	var out mesh.ChunkMesh
	for _, q := range quads {
		out.Append(cv.Convert(c, src, q))
	}
	return out
}
