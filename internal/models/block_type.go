// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// BlockType tags the kind of content a block holds.
type BlockType string

const (
	BlockHome            BlockType = "home"
	BlockCourse          BlockType = "course"
	BlockEbook           BlockType = "ebook"
	BlockText            BlockType = "text"
	BlockImage           BlockType = "image"
	BlockChatGPT         BlockType = "chatgpt"
	BlockAssistants      BlockType = "assistants"
	BlockNanoBanana      BlockType = "nano_banana"
	BlockGems            BlockType = "gems"
	BlockSocial          BlockType = "social"
	BlockJSON            BlockType = "json"
	BlockWriter          BlockType = "writer"
	BlockEditor          BlockType = "editor"
	BlockMusic           BlockType = "music"
	BlockDirector        BlockType = "director"
	BlockImgGen          BlockType = "img_gen"
	BlockPrompts         BlockType = "prompts"
	BlockCameraAngles    BlockType = "camera_angles"
	BlockWeather         BlockType = "weather"
	BlockLighting        BlockType = "lighting"
	BlockComposition     BlockType = "composition"
	BlockPoses           BlockType = "poses"
	BlockActions         BlockType = "actions"
	BlockColorGrading    BlockType = "color_grading"
	BlockCostumes        BlockType = "costumes"
	BlockPhotoTypes      BlockType = "photo_types"
	BlockEmotions        BlockType = "emotions"
	BlockProducts        BlockType = "products"
	BlockEnvironments    BlockType = "environments"
	BlockMockup          BlockType = "mockup"
	BlockFoodPhoto       BlockType = "food_photo"
	BlockArchitecture    BlockType = "architecture"
	BlockCulture         BlockType = "culture"
	BlockCameraMovements BlockType = "camera_movements"
	BlockCustomLink      BlockType = "custom_link"
)

// BlockTypeInfo describes a block type in the admin picker.
type BlockTypeInfo struct {
	Type     BlockType `json:"type"`
	Label    string    `json:"label"`
	Category string    `json:"category"`
}

// BlockTypes lists every block type in picker order.
var BlockTypes = []BlockTypeInfo{
	{BlockHome, "Home", "Navegação"},
	{BlockCourse, "Acessar Curso", "Navegação"},
	{BlockEbook, "Ebook", "Conteúdo"},
	{BlockText, "Texto", "Conteúdo"},
	{BlockImage, "Imagem", "Conteúdo"},
	{BlockChatGPT, "ChatGPT", "IA Tools"},
	{BlockAssistants, "Assistentes GPT", "IA Tools"},
	{BlockNanoBanana, "Nano Banana Pro", "IA Tools"},
	{BlockGems, "Gems", "Gems"},
	{BlockSocial, "Social", "Social"},
	{BlockJSON, "JSON", "Developer"},
	{BlockWriter, "Writer", "Developer"},
	{BlockEditor, "Editor", "Developer"},
	{BlockMusic, "Music", "Mídia"},
	{BlockDirector, "Director", "Mídia"},
	{BlockImgGen, "Image", "Mídia"},
	{BlockPrompts, "Prompts", "Prompts"},
	{BlockCameraAngles, "Ângulos de Câmera", "Prompts"},
	{BlockWeather, "Clima e Tempo", "Prompts"},
	{BlockLighting, "Iluminação", "Prompts"},
	{BlockComposition, "Composições", "Prompts"},
	{BlockPoses, "Poses e Orientações", "Prompts"},
	{BlockActions, "Ações e Movimentos", "Prompts"},
	{BlockColorGrading, "Color Grading", "Prompts"},
	{BlockCostumes, "Figurinos e Estilos", "Prompts"},
	{BlockPhotoTypes, "Tipos de Fotografia", "Prompts"},
	{BlockEmotions, "Emoções e Expressões", "Prompts"},
	{BlockProducts, "Produtos", "Produtos"},
	{BlockEnvironments, "Ambientes e Cenários", "Produtos"},
	{BlockMockup, "Mockup", "Produtos"},
	{BlockFoodPhoto, "Fotografia de Comida", "Produtos"},
	{BlockArchitecture, "Arquitetura", "Produtos"},
	{BlockCulture, "Cultura", "Produtos"},
	{BlockCameraMovements, "Movimentos de Câmera", "Produtos"},
	{BlockCustomLink, "Link Personalizado", "Customizado"},
}

var blockTypeIndex = func() map[BlockType]BlockTypeInfo {
	m := make(map[BlockType]BlockTypeInfo, len(BlockTypes))
	for _, info := range BlockTypes {
		m[info.Type] = info
	}
	return m
}()

// Valid reports whether t is a known block type.
func (t BlockType) Valid() bool {
	_, ok := blockTypeIndex[t]
	return ok
}

// Info returns the picker entry for t.
func (t BlockType) Info() (BlockTypeInfo, bool) {
	info, ok := blockTypeIndex[t]
	return info, ok
}
