package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
)

/** @brief A 2D offset in pixels. */
type Offset2D struct {
	X, Y int32
}

/** @brief A 2D extent in pixels. */
type Extent2D struct {
	Width, Height uint32
}

/** @brief A rectangle made of an offset and an extent. */
type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

/** @brief Viewport transform, including the depth range. */
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type InputAssemblyState struct {
	/** @brief The primitive topology. */
	Topology PrimitiveTopology
	/** @brief Whether a special index value restarts strip/fan primitives. */
	PrimitiveRestartEnable bool
}

type RasterizationState struct {
	DepthClampEnable        bool
	RasterizerDiscardEnable bool
	PolygonMode             PolygonMode
	LineWidth               float32
	CullMode                FaceCullMode
	FrontFace               FrontFace
	DepthBiasEnable         bool
	DepthBiasConstantFactor float32
	DepthBiasClamp          float32
	DepthBiasSlopeFactor    float32
}

type MultisampleState struct {
	RasterizationSamples  SampleCount
	SampleShadingEnable   bool
	MinSampleShading      float32
	AlphaToCoverageEnable bool
	AlphaToOneEnable      bool
}

type ColorBlendAttachment struct {
	ColorWriteMask      ColorComponentFlags
	BlendEnable         bool
	SrcColorBlendFactor BlendFactor
	DstColorBlendFactor BlendFactor
	ColorBlendOp        BlendOp
	SrcAlphaBlendFactor BlendFactor
	DstAlphaBlendFactor BlendFactor
	AlphaBlendOp        BlendOp
}

/** @brief Aggregate blend state. The single attachment lives in PipelineConfig. */
type ColorBlendState struct {
	LogicOpEnable  bool
	LogicOp        LogicOp
	BlendConstants [4]float32
}

type StencilOpState struct {
	FailOp      StencilOp
	PassOp      StencilOp
	DepthFailOp StencilOp
	CompareOp   CompareOp
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
}

type DepthStencilState struct {
	DepthTestEnable       bool
	DepthWriteEnable      bool
	DepthCompareOp        CompareOp
	DepthBoundsTestEnable bool
	MinDepthBounds        float32
	MaxDepthBounds        float32
	StencilTestEnable     bool
	Front                 StencilOpState
	Back                  StencilOpState
}

/**
 * @brief Describes every fixed-function stage of a graphics pipeline.
 *
 * Build it with DefaultPipelineConfig, then set PipelineLayout and RenderPass:
 * both are owned by the caller and are required when the pipeline is created.
 */
type PipelineConfig struct {
	Viewport             Viewport
	Scissor              Rect2D
	InputAssembly        InputAssemblyState
	Rasterization        RasterizationState
	Multisample          MultisampleState
	ColorBlendAttachment ColorBlendAttachment
	ColorBlend           ColorBlendState
	DepthStencil         DepthStencilState
	/** @brief Required. Externally owned pipeline layout. */
	PipelineLayout PipelineLayout
	/** @brief Required. Externally owned render pass the pipeline is compatible with. */
	RenderPass RenderPass
	/** @brief Index of the subpass the pipeline is used in. */
	Subpass uint32
}

// DefaultPipelineConfig returns an opaque, depth-tested triangle-list
// configuration covering a width x height target.
func DefaultPipelineConfig(width, height uint32) PipelineConfig {
	return PipelineConfig{
		InputAssembly: InputAssemblyState{
			Topology:               PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		Viewport: Viewport{
			X:        0,
			Y:        0,
			Width:    float32(width),
			Height:   float32(height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Scissor: Rect2D{
			Offset: Offset2D{X: 0, Y: 0},
			Extent: Extent2D{Width: width, Height: height},
		},
		Rasterization: RasterizationState{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: false,
			PolygonMode:             PolygonModeFill,
			LineWidth:               1,
			CullMode:                FaceCullModeNone,
			FrontFace:               FrontFaceClockwise,
			DepthBiasEnable:         false,
		},
		Multisample: MultisampleState{
			RasterizationSamples:  SampleCount1,
			SampleShadingEnable:   false,
			MinSampleShading:      1,
			AlphaToCoverageEnable: false,
			AlphaToOneEnable:      false,
		},
		ColorBlendAttachment: ColorBlendAttachment{
			ColorWriteMask:      ColorComponentAll,
			BlendEnable:         false,
			SrcColorBlendFactor: BlendFactorOne,
			DstColorBlendFactor: BlendFactorZero,
			ColorBlendOp:        BlendOpAdd,
			SrcAlphaBlendFactor: BlendFactorOne,
			DstAlphaBlendFactor: BlendFactorZero,
			AlphaBlendOp:        BlendOpAdd,
		},
		ColorBlend: ColorBlendState{
			LogicOpEnable: false,
			LogicOp:       LogicOpCopy,
		},
		DepthStencil: DepthStencilState{
			DepthTestEnable:       true,
			DepthWriteEnable:      true,
			DepthCompareOp:        CompareOpLess,
			DepthBoundsTestEnable: false,
			MinDepthBounds:        0,
			MaxDepthBounds:        1,
			StencilTestEnable:     false,
		},
	}
}

// Validate checks the fields the caller must fill before the config can be
// used to build a pipeline.
func (c *PipelineConfig) Validate() error {
	if c.PipelineLayout.IsNull() {
		return core.Fail(core.ErrPrecondition, "cannot create graphics pipeline: no pipeline layout provided in config")
	}
	if c.RenderPass.IsNull() {
		return core.Fail(core.ErrPrecondition, "cannot create graphics pipeline: no render pass provided in config")
	}
	return nil
}

/** @brief One programmable stage of a pipeline. */
type ShaderStageInfo struct {
	Stage      ShaderStage
	Module     ShaderModule
	EntryPoint string
}

/** @brief Vertex buffer layout. Empty when geometry is generated in the vertex shader. */
type VertexInputState struct {
	Bindings   []VertexInputBinding
	Attributes []VertexInputAttribute
}

type VertexInputBinding struct {
	Binding   uint32
	Stride    uint32
	Instanced bool
}

type VertexInputAttribute struct {
	Location uint32
	Binding  uint32
	Offset   uint32
	/** @brief Number of 32-bit float components (1-4). */
	Components uint32
}

/**
 * @brief Everything a backend needs to compile a graphics pipeline: the
 * shader stages, the vertex layout and the fixed-function config.
 */
type GraphicsPipelineCreateInfo struct {
	Stages            []ShaderStageInfo
	VertexInput       VertexInputState
	Config            PipelineConfig
	BasePipelineIndex int32
}

/** @brief Parameters of one non-indexed draw call. */
type DrawParams struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// DefaultDrawParams draws a single triangle generated by the vertex shader.
func DefaultDrawParams() DrawParams {
	return DrawParams{VertexCount: 3, InstanceCount: 1}
}

/** @brief Arguments of a render pass begin command. */
type RenderPassBeginInfo struct {
	RenderPass   RenderPass
	Framebuffer  Framebuffer
	RenderArea   Rect2D
	ClearColor   mgl32.Vec4
	ClearDepth   float32
	ClearStencil uint32
}
