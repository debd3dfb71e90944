package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/lumo/engine/math"
)

/**
 * @brief A single vertex as every mesh in the engine lays it out.
 * Interleaved position, color, normal and texture coordinate; the
 * pipeline vertex input description mirrors this order.
 */
type Vertex struct {
	Position math.Vec3
	Color    math.Vec3
	Normal   math.Vec3
	Texcoord math.Vec2
}

/** @brief Size in bytes of one interleaved vertex. */
const VertexSize = uint32(unsafe.Sizeof(Vertex{}))
