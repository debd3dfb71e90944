package metadata

// ShaderModel selects which builtin shading pair a mesh instance is drawn
// with. The name doubles as the shader file base name on disk
// (assets/shaders/<name>.vert.spv / .frag.spv).
type ShaderModel int

const (
	ShaderModelBox ShaderModel = iota
	ShaderModelGouraud
	ShaderModelPhong
	ShaderModelPBR
	ShaderModelText
	ShaderModelCount
)

var shaderModelNames = [ShaderModelCount]string{
	"box",
	"gouraud",
	"phong",
	"pbr",
	"text",
}

func (sm ShaderModel) String() string {
	if sm < 0 || sm >= ShaderModelCount {
		return "unknown"
	}
	return shaderModelNames[sm]
}

// ShaderModels lists every model the pipeline system preloads at startup.
func ShaderModels() []ShaderModel {
	models := make([]ShaderModel, 0, ShaderModelCount)
	for sm := ShaderModel(0); sm < ShaderModelCount; sm++ {
		models = append(models, sm)
	}
	return models
}
