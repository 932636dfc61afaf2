package handlers

import "clientportal/internal/models"

// Presentation is the visual descriptor the portal front end uses to draw
// a block card: an icon name and a gradient class pair.
type Presentation struct {
	Icon     string `json:"icon"`
	Gradient string `json:"gradient"`
}

var defaultPresentation = Presentation{Icon: "file-text", Gradient: "from-gray-500 to-gray-600"}

var presentations = map[models.BlockType]Presentation{
	models.BlockHome:            {"file-text", "from-blue-500 to-blue-600"},
	models.BlockCourse:          {"play", "from-green-500 to-green-600"},
	models.BlockEbook:           {"file-text", "from-purple-500 to-purple-600"},
	models.BlockText:            {"file-text", "from-gray-500 to-gray-600"},
	models.BlockImage:           {"image", "from-pink-500 to-pink-600"},
	models.BlockChatGPT:         {"message-square", "from-emerald-500 to-emerald-600"},
	models.BlockAssistants:      {"message-square", "from-teal-500 to-teal-600"},
	models.BlockNanoBanana:      {"sparkles", "from-yellow-500 to-yellow-600"},
	models.BlockGems:            {"sparkles", "from-amber-500 to-amber-600"},
	models.BlockSocial:          {"message-square", "from-cyan-500 to-cyan-600"},
	models.BlockJSON:            {"file-json", "from-orange-500 to-orange-600"},
	models.BlockWriter:          {"file-text", "from-indigo-500 to-indigo-600"},
	models.BlockEditor:          {"code", "from-violet-500 to-violet-600"},
	models.BlockMusic:           {"music", "from-red-500 to-red-600"},
	models.BlockDirector:        {"camera", "from-rose-500 to-rose-600"},
	models.BlockImgGen:          {"image", "from-fuchsia-500 to-fuchsia-600"},
	models.BlockPrompts:         {"wand", "from-lime-500 to-lime-600"},
	models.BlockCameraAngles:    {"camera", "from-slate-500 to-slate-600"},
	models.BlockWeather:         {"camera", "from-sky-500 to-sky-600"},
	models.BlockLighting:        {"camera", "from-yellow-500 to-yellow-600"},
	models.BlockComposition:     {"camera", "from-zinc-500 to-zinc-600"},
	models.BlockPoses:           {"camera", "from-stone-500 to-stone-600"},
	models.BlockActions:         {"camera", "from-neutral-500 to-neutral-600"},
	models.BlockColorGrading:    {"camera", "from-cyan-500 to-cyan-600"},
	models.BlockCostumes:        {"camera", "from-pink-500 to-pink-600"},
	models.BlockPhotoTypes:      {"camera", "from-purple-500 to-purple-600"},
	models.BlockEmotions:        {"camera", "from-red-500 to-red-600"},
	models.BlockProducts:        {"camera", "from-green-500 to-green-600"},
	models.BlockEnvironments:    {"camera", "from-emerald-500 to-emerald-600"},
	models.BlockMockup:          {"image", "from-blue-500 to-blue-600"},
	models.BlockFoodPhoto:       {"image", "from-orange-500 to-orange-600"},
	models.BlockArchitecture:    {"camera", "from-slate-500 to-slate-600"},
	models.BlockCulture:         {"camera", "from-indigo-500 to-indigo-600"},
	models.BlockCameraMovements: {"camera", "from-cyan-500 to-cyan-600"},
	models.BlockCustomLink:      {"external-link", "from-gray-500 to-gray-600"},
}

// presentationFor returns the descriptor for t, falling back to a plain
// text card for types without one.
func presentationFor(t models.BlockType) Presentation {
	if p, ok := presentations[t]; ok {
		return p
	}
	return defaultPresentation
}
