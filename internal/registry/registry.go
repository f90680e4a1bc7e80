package registry

import (
	"sync"

	"github.com/charmbracelet/log"

	"voxelcore/pkg/blockmodel"
)

// Registry is the Block Registry and Face-Bounds Store (§4.1). It is
// written by InitDefaults at startup and by ReloadBlock on a hot reload;
// every read takes the read lock so it can run alongside a reload.
type Registry struct {
	mu      sync.RWMutex // guards defs and byName
	defs    map[BlockType]*BlockDef
	byName  map[string]BlockType
	loader  *blockmodel.Loader
	log     *log.Logger
	nextID  BlockType
}

// New creates an empty registry backed by the given model loader.
func New(loader *blockmodel.Loader, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		defs:   make(map[BlockType]*BlockDef),
		byName: make(map[string]BlockType),
		loader: loader,
		log:    logger,
		nextID: 1, // 0 reserved for air
	}
	r.defs[Air] = &BlockDef{Type: Air, DisplayID: "air", Transparent: true}
	r.byName["air"] = Air
	return r
}

// registerSpec is the startup-time description of one block type, resolved
// against the model loader to derive its face bounds.
type registerSpec struct {
	name        string
	model       string
	layer       RenderLayer
	collision   bool
	transparent bool
	liquid      bool
	canBeCulled bool
	isStairs    bool
}

// InitDefaults registers the fixed catalog of concrete block types this
// module ships (see SPEC_FULL.md §4.1): enough variety to exercise every
// render layer, the hybrid dispatcher's binary/traditional split, and the
// cross-chunk culling decision table.
func (r *Registry) InitDefaults() {
	specs := []registerSpec{
		{name: "stone", model: "stone", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "dirt", model: "dirt", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "grass_block", model: "grass_block", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "bedrock", model: "bedrock", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "stone_bricks", model: "stone_bricks", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "oak_planks", model: "oak_planks", layer: LayerOpaque, collision: true, canBeCulled: true},
		{name: "glass", model: "glass", layer: LayerCutout, collision: true, transparent: true},
		{name: "water", model: "water", layer: LayerTranslucent, collision: false, transparent: true, liquid: true},
		{name: "oak_stairs", model: "oak_stairs", layer: LayerOpaque, collision: true, isStairs: true},
	}
	for _, s := range specs {
		r.register(s)
	}
}

func (r *Registry) register(s registerSpec) BlockType {
	id := r.nextID
	r.nextID++

	def := &BlockDef{
		Type:        id,
		DisplayID:   s.name,
		ModelName:   s.model,
		RenderLayer: s.layer,
		Collision:   s.collision,
		Transparent: s.transparent,
		Liquid:      s.liquid,
		CanBeCulled: s.canBeCulled,
		IsStairs:    s.isStairs,
	}
	for i := range def.CullPolicy {
		if s.canBeCulled {
			def.CullPolicy[i] = CullFull
		} else {
			def.CullPolicy[i] = CullNone
		}
	}

	r.deriveFaceBounds(def)

	r.mu.Lock()
	r.defs[id] = def
	r.byName[s.name] = id
	r.mu.Unlock()
	return id
}

// deriveFaceBounds loads the block's model (logging and skipping on failure
// per §7's "asset malformed/missing" policy) and computes the projected 2D
// face bounds plus the single-full-cube flag used by the hybrid dispatcher.
func (r *Registry) deriveFaceBounds(def *BlockDef) {
	for i := range def.FaceBounds {
		def.FaceBounds[i] = FaceBounds{} // empty: no textured face by default
	}
	if def.ModelName == "" || r.loader == nil {
		return
	}
	model, err := r.loader.LoadModel("block/" + def.ModelName)
	if err != nil {
		r.log.Warn("block model missing or malformed, block will render without geometry", "block", def.DisplayID, "model", def.ModelName, "err", err)
		return
	}

	def.ElementCount = len(model.Elements)
	def.SingleFullCube = len(model.Elements) == 1 && elementIsFullCube(model.Elements[0])

	var bounds [6]FaceBounds
	have := [6]bool{}
	def.Elements = make([]ElementGeometry, 0, len(model.Elements))
	for _, elem := range model.Elements {
		geo := ElementGeometry{
			From: [3]float32{elem.From[0] / 16, elem.From[1] / 16, elem.From[2] / 16},
			To:   [3]float32{elem.To[0] / 16, elem.To[1] / 16, elem.To[2] / 16},
		}
		for key, faceDef := range elem.Faces {
			face, ok := faceFromModelKey(key)
			if !ok {
				continue
			}
			proj := projectElementFace(elem, face)
			geo.FaceBounds[face] = proj
			geo.FaceTexture[face] = faceDef.Texture
			geo.HasFace[face] = true

			if !have[face] {
				bounds[face] = proj
				have[face] = true
			} else {
				bounds[face] = unionBounds(bounds[face], proj)
			}
			def.FaceTexture[face] = faceDef.Texture
		}
		def.Elements = append(def.Elements, geo)
	}
	def.FaceBounds = bounds
}

func elementIsFullCube(e blockmodel.Element) bool {
	const eps = 1e-3
	almost := func(a, b float32) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d < eps
	}
	return almost(e.From[0], 0) && almost(e.From[1], 0) && almost(e.From[2], 0) &&
		almost(e.To[0], 16) && almost(e.To[1], 16) && almost(e.To[2], 16)
}

// projectElementFace projects one element's from/to onto the given face's
// 2D plane, normalized to 0..1, per the per-face axis mapping in §4.5.
func projectElementFace(e blockmodel.Element, face BlockFace) FaceBounds {
	switch face {
	case FaceDown, FaceUp:
		return FaceBounds{e.From[0] / 16, e.From[2] / 16, e.To[0] / 16, e.To[2] / 16}
	case FaceNorth, FaceSouth:
		return FaceBounds{e.From[0] / 16, e.From[1] / 16, e.To[0] / 16, e.To[1] / 16}
	default: // FaceWest, FaceEast
		return FaceBounds{e.From[2] / 16, e.From[1] / 16, e.To[2] / 16, e.To[1] / 16}
	}
}

func unionBounds(a, b FaceBounds) FaceBounds {
	return FaceBounds{
		MinU: minf(a.MinU, b.MinU),
		MinV: minf(a.MinV, b.MinV),
		MaxU: maxf(a.MaxU, b.MaxU),
		MaxV: maxf(a.MaxV, b.MaxV),
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Get returns the definition for type, total over all inputs: unknown
// handles resolve to air per §4.1's failure model.
func (r *Registry) Get(t BlockType) *BlockDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.defs[t]; ok {
		return def
	}
	return r.defs[Air]
}

// ByName resolves a registered block's display id back to its handle.
func (r *Registry) ByName(name string) (BlockType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) RenderLayer(t BlockType) RenderLayer { return r.Get(t).RenderLayer }

func (r *Registry) CullPolicy(t BlockType, face BlockFace) CullPolicy {
	def := r.Get(t)
	if face < 0 || int(face) >= len(def.CullPolicy) {
		return CullNone
	}
	return def.CullPolicy[face]
}

func (r *Registry) IsTransparent(t BlockType) bool { return r.Get(t).Transparent }

func (r *Registry) FaceBoundsOf(t BlockType) [6]FaceBounds { return r.Get(t).FaceBounds }

// ReloadBlock re-derives one block type's face bounds from its (possibly
// just-changed) model file. Called by the asset watcher after an fsnotify
// event invalidates the model loader's cache for this block's model.
func (r *Registry) ReloadBlock(t BlockType) {
	def := r.Get(t)
	if def == nil || def.Type == Air {
		return
	}
	clone := *def
	r.deriveFaceBounds(&clone)
	r.mu.Lock()
	r.defs[t] = &clone
	r.mu.Unlock()
}

// AllTypes returns every registered non-air block type.
func (r *Registry) AllTypes() []BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BlockType, 0, len(r.defs))
	for t := range r.defs {
		if t != Air {
			out = append(out, t)
		}
	}
	return out
}
