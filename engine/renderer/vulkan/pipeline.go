package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Holds a Vulkan pipeline. The layout is owned by the caller.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
}

var topologies = map[metadata.PrimitiveTopology]vk.PrimitiveTopology{
	metadata.PrimitiveTopologyPointList:     vk.PrimitiveTopologyPointList,
	metadata.PrimitiveTopologyLineList:      vk.PrimitiveTopologyLineList,
	metadata.PrimitiveTopologyLineStrip:     vk.PrimitiveTopologyLineStrip,
	metadata.PrimitiveTopologyTriangleList:  vk.PrimitiveTopologyTriangleList,
	metadata.PrimitiveTopologyTriangleStrip: vk.PrimitiveTopologyTriangleStrip,
	metadata.PrimitiveTopologyTriangleFan:   vk.PrimitiveTopologyTriangleFan,
}

var polygonModes = map[metadata.PolygonMode]vk.PolygonMode{
	metadata.PolygonModeFill:  vk.PolygonModeFill,
	metadata.PolygonModeLine:  vk.PolygonModeLine,
	metadata.PolygonModePoint: vk.PolygonModePoint,
}

var cullModes = map[metadata.FaceCullMode]vk.CullModeFlagBits{
	metadata.FaceCullModeNone:         vk.CullModeNone,
	metadata.FaceCullModeFront:        vk.CullModeFrontBit,
	metadata.FaceCullModeBack:         vk.CullModeBackBit,
	metadata.FaceCullModeFrontAndBack: vk.CullModeFrontAndBack,
}

var frontFaces = map[metadata.FrontFace]vk.FrontFace{
	metadata.FrontFaceCounterClockwise: vk.FrontFaceCounterClockwise,
	metadata.FrontFaceClockwise:        vk.FrontFaceClockwise,
}

var sampleCounts = map[metadata.SampleCount]vk.SampleCountFlagBits{
	metadata.SampleCount1:  vk.SampleCount1Bit,
	metadata.SampleCount2:  vk.SampleCount2Bit,
	metadata.SampleCount4:  vk.SampleCount4Bit,
	metadata.SampleCount8:  vk.SampleCount8Bit,
	metadata.SampleCount16: vk.SampleCount16Bit,
}

var compareOps = map[metadata.CompareOp]vk.CompareOp{
	metadata.CompareOpNever:          vk.CompareOpNever,
	metadata.CompareOpLess:           vk.CompareOpLess,
	metadata.CompareOpEqual:          vk.CompareOpEqual,
	metadata.CompareOpLessOrEqual:    vk.CompareOpLessOrEqual,
	metadata.CompareOpGreater:        vk.CompareOpGreater,
	metadata.CompareOpNotEqual:       vk.CompareOpNotEqual,
	metadata.CompareOpGreaterOrEqual: vk.CompareOpGreaterOrEqual,
	metadata.CompareOpAlways:         vk.CompareOpAlways,
}

var blendFactors = map[metadata.BlendFactor]vk.BlendFactor{
	metadata.BlendFactorZero:             vk.BlendFactorZero,
	metadata.BlendFactorOne:              vk.BlendFactorOne,
	metadata.BlendFactorSrcColor:         vk.BlendFactorSrcColor,
	metadata.BlendFactorOneMinusSrcColor: vk.BlendFactorOneMinusSrcColor,
	metadata.BlendFactorDstColor:         vk.BlendFactorDstColor,
	metadata.BlendFactorOneMinusDstColor: vk.BlendFactorOneMinusDstColor,
	metadata.BlendFactorSrcAlpha:         vk.BlendFactorSrcAlpha,
	metadata.BlendFactorOneMinusSrcAlpha: vk.BlendFactorOneMinusSrcAlpha,
	metadata.BlendFactorDstAlpha:         vk.BlendFactorDstAlpha,
	metadata.BlendFactorOneMinusDstAlpha: vk.BlendFactorOneMinusDstAlpha,
}

var blendOps = map[metadata.BlendOp]vk.BlendOp{
	metadata.BlendOpAdd:             vk.BlendOpAdd,
	metadata.BlendOpSubtract:        vk.BlendOpSubtract,
	metadata.BlendOpReverseSubtract: vk.BlendOpReverseSubtract,
	metadata.BlendOpMin:             vk.BlendOpMin,
	metadata.BlendOpMax:             vk.BlendOpMax,
}

var logicOps = map[metadata.LogicOp]vk.LogicOp{
	metadata.LogicOpClear:       vk.LogicOpClear,
	metadata.LogicOpAnd:         vk.LogicOpAnd,
	metadata.LogicOpAndReverse:  vk.LogicOpAndReverse,
	metadata.LogicOpCopy:        vk.LogicOpCopy,
	metadata.LogicOpAndInverted: vk.LogicOpAndInverted,
	metadata.LogicOpNoOp:        vk.LogicOpNoOp,
	metadata.LogicOpXor:         vk.LogicOpXor,
	metadata.LogicOpOr:          vk.LogicOpOr,
}

var stencilOps = map[metadata.StencilOp]vk.StencilOp{
	metadata.StencilOpKeep:              vk.StencilOpKeep,
	metadata.StencilOpZero:              vk.StencilOpZero,
	metadata.StencilOpReplace:           vk.StencilOpReplace,
	metadata.StencilOpIncrementAndClamp: vk.StencilOpIncrementAndClamp,
	metadata.StencilOpDecrementAndClamp: vk.StencilOpDecrementAndClamp,
	metadata.StencilOpInvert:            vk.StencilOpInvert,
	metadata.StencilOpIncrementAndWrap:  vk.StencilOpIncrementAndWrap,
	metadata.StencilOpDecrementAndWrap:  vk.StencilOpDecrementAndWrap,
}

var shaderStages = map[metadata.ShaderStage]vk.ShaderStageFlagBits{
	metadata.ShaderStageVertex:   vk.ShaderStageVertexBit,
	metadata.ShaderStageFragment: vk.ShaderStageFragmentBit,
}

// attributeFormats maps a float component count onto its vertex format.
var attributeFormats = map[uint32]vk.Format{
	1: vk.FormatR32Sfloat,
	2: vk.FormatR32g32Sfloat,
	3: vk.FormatR32g32b32Sfloat,
	4: vk.FormatR32g32b32a32Sfloat,
}

// lookup translates v with table and fails on values the table lacks.
func lookup[K comparable, V any](table map[K]V, v K, what string) (V, error) {
	out, ok := table[v]
	if !ok {
		return out, errors.Newf("unsupported %s %v", what, v)
	}
	return out, nil
}

func colorWriteMask(mask metadata.ColorComponentFlags) vk.ColorComponentFlags {
	var out vk.ColorComponentFlagBits
	if mask&metadata.ColorComponentR != 0 {
		out |= vk.ColorComponentRBit
	}
	if mask&metadata.ColorComponentG != 0 {
		out |= vk.ColorComponentGBit
	}
	if mask&metadata.ColorComponentB != 0 {
		out |= vk.ColorComponentBBit
	}
	if mask&metadata.ColorComponentA != 0 {
		out |= vk.ColorComponentABit
	}
	return vk.ColorComponentFlags(out)
}

func stencilState(s metadata.StencilOpState) (vk.StencilOpState, error) {
	out := vk.StencilOpState{
		CompareMask: s.CompareMask,
		WriteMask:   s.WriteMask,
		Reference:   s.Reference,
	}
	var err error
	if out.FailOp, err = lookup(stencilOps, s.FailOp, "stencil op"); err != nil {
		return out, err
	}
	if out.PassOp, err = lookup(stencilOps, s.PassOp, "stencil op"); err != nil {
		return out, err
	}
	if out.DepthFailOp, err = lookup(stencilOps, s.DepthFailOp, "stencil op"); err != nil {
		return out, err
	}
	if out.CompareOp, err = lookup(compareOps, s.CompareOp, "compare op"); err != nil {
		return out, err
	}
	return out, nil
}

// pipelineState is the fixed-function part of a pipeline in Vulkan terms.
type pipelineState struct {
	inputAssembly vk.PipelineInputAssemblyStateCreateInfo
	viewport      vk.PipelineViewportStateCreateInfo
	rasterization vk.PipelineRasterizationStateCreateInfo
	multisample   vk.PipelineMultisampleStateCreateInfo
	colorBlend    vk.PipelineColorBlendStateCreateInfo
	depthStencil  vk.PipelineDepthStencilStateCreateInfo
	vertexInput   vk.PipelineVertexInputStateCreateInfo
}

func translatePipelineConfig(config *metadata.PipelineConfig) (*pipelineState, error) {
	s := &pipelineState{}
	var err error

	// Input assembly
	s.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		PrimitiveRestartEnable: vkBool(config.InputAssembly.PrimitiveRestartEnable),
	}
	if s.inputAssembly.Topology, err = lookup(topologies, config.InputAssembly.Topology, "topology"); err != nil {
		return nil, err
	}

	// Viewport state
	v := config.Viewport
	s.viewport = vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			X:        v.X,
			Y:        v.Y,
			Width:    v.Width,
			Height:   v.Height,
			MinDepth: v.MinDepth,
			MaxDepth: v.MaxDepth,
		}},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{{
			Offset: vk.Offset2D{X: config.Scissor.Offset.X, Y: config.Scissor.Offset.Y},
			Extent: vk.Extent2D{Width: config.Scissor.Extent.Width, Height: config.Scissor.Extent.Height},
		}},
	}

	// Rasterizer
	r := config.Rasterization
	s.rasterization = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vkBool(r.DepthClampEnable),
		RasterizerDiscardEnable: vkBool(r.RasterizerDiscardEnable),
		LineWidth:               r.LineWidth,
		DepthBiasEnable:         vkBool(r.DepthBiasEnable),
		DepthBiasConstantFactor: r.DepthBiasConstantFactor,
		DepthBiasClamp:          r.DepthBiasClamp,
		DepthBiasSlopeFactor:    r.DepthBiasSlopeFactor,
	}
	if s.rasterization.PolygonMode, err = lookup(polygonModes, r.PolygonMode, "polygon mode"); err != nil {
		return nil, err
	}
	cull, err := lookup(cullModes, r.CullMode, "cull mode")
	if err != nil {
		return nil, err
	}
	s.rasterization.CullMode = vk.CullModeFlags(cull)
	if s.rasterization.FrontFace, err = lookup(frontFaces, r.FrontFace, "front face"); err != nil {
		return nil, err
	}

	// Multisampling.
	m := config.Multisample
	s.multisample = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vkBool(m.SampleShadingEnable),
		MinSampleShading:      m.MinSampleShading,
		AlphaToCoverageEnable: vkBool(m.AlphaToCoverageEnable),
		AlphaToOneEnable:      vkBool(m.AlphaToOneEnable),
	}
	if s.multisample.RasterizationSamples, err = lookup(sampleCounts, m.RasterizationSamples, "sample count"); err != nil {
		return nil, err
	}

	// Color blending
	a := config.ColorBlendAttachment
	attachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:    vkBool(a.BlendEnable),
		ColorWriteMask: colorWriteMask(a.ColorWriteMask),
	}
	if attachment.SrcColorBlendFactor, err = lookup(blendFactors, a.SrcColorBlendFactor, "blend factor"); err != nil {
		return nil, err
	}
	if attachment.DstColorBlendFactor, err = lookup(blendFactors, a.DstColorBlendFactor, "blend factor"); err != nil {
		return nil, err
	}
	if attachment.ColorBlendOp, err = lookup(blendOps, a.ColorBlendOp, "blend op"); err != nil {
		return nil, err
	}
	if attachment.SrcAlphaBlendFactor, err = lookup(blendFactors, a.SrcAlphaBlendFactor, "blend factor"); err != nil {
		return nil, err
	}
	if attachment.DstAlphaBlendFactor, err = lookup(blendFactors, a.DstAlphaBlendFactor, "blend factor"); err != nil {
		return nil, err
	}
	if attachment.AlphaBlendOp, err = lookup(blendOps, a.AlphaBlendOp, "blend op"); err != nil {
		return nil, err
	}
	s.colorBlend = vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vkBool(config.ColorBlend.LogicOpEnable),
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{attachment},
		BlendConstants:  config.ColorBlend.BlendConstants,
	}
	if s.colorBlend.LogicOp, err = lookup(logicOps, config.ColorBlend.LogicOp, "logic op"); err != nil {
		return nil, err
	}

	// Depth and stencil testing.
	d := config.DepthStencil
	s.depthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vkBool(d.DepthTestEnable),
		DepthWriteEnable:      vkBool(d.DepthWriteEnable),
		DepthBoundsTestEnable: vkBool(d.DepthBoundsTestEnable),
		MinDepthBounds:        d.MinDepthBounds,
		MaxDepthBounds:        d.MaxDepthBounds,
		StencilTestEnable:     vkBool(d.StencilTestEnable),
	}
	if s.depthStencil.DepthCompareOp, err = lookup(compareOps, d.DepthCompareOp, "compare op"); err != nil {
		return nil, err
	}
	if s.depthStencil.Front, err = stencilState(d.Front); err != nil {
		return nil, err
	}
	if s.depthStencil.Back, err = stencilState(d.Back); err != nil {
		return nil, err
	}

	return s, nil
}

func translateVertexInput(in *metadata.VertexInputState) (vk.PipelineVertexInputStateCreateInfo, error) {
	out := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	if len(in.Bindings) > 0 {
		bindings := make([]vk.VertexInputBindingDescription, len(in.Bindings))
		for i, b := range in.Bindings {
			bindings[i] = vk.VertexInputBindingDescription{
				Binding:   b.Binding,
				Stride:    b.Stride,
				InputRate: vk.VertexInputRateVertex,
			}
			if b.Instanced {
				bindings[i].InputRate = vk.VertexInputRateInstance
			}
		}
		out.VertexBindingDescriptionCount = uint32(len(bindings))
		out.PVertexBindingDescriptions = bindings
	}
	if len(in.Attributes) > 0 {
		attributes := make([]vk.VertexInputAttributeDescription, len(in.Attributes))
		for i, a := range in.Attributes {
			format, err := lookup(attributeFormats, a.Components, "attribute component count")
			if err != nil {
				return out, errors.Wrapf(err, "attribute at location %d", a.Location)
			}
			attributes[i] = vk.VertexInputAttributeDescription{
				Location: a.Location,
				Binding:  a.Binding,
				Format:   format,
				Offset:   a.Offset,
			}
		}
		out.VertexAttributeDescriptionCount = uint32(len(attributes))
		out.PVertexAttributeDescriptions = attributes
	}
	return out, nil
}

func NewGraphicsPipeline(
	context *VulkanContext,
	stages []vk.PipelineShaderStageCreateInfo,
	state *pipelineState,
	layout vk.PipelineLayout,
	renderpass vk.RenderPass,
	subpass uint32,
	basePipelineIndex int32,
) (*VulkanPipeline, error) {
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &state.vertexInput,
		PInputAssemblyState: &state.inputAssembly,
		PViewportState:      &state.viewport,
		PRasterizationState: &state.rasterization,
		PMultisampleState:   &state.multisample,
		PDepthStencilState:  &state.depthStencil,
		PColorBlendState:    &state.colorBlend,
		Layout:              layout,
		RenderPass:          renderpass,
		Subpass:             subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   basePipelineIndex,
	}

	pipelines := make([]vk.Pipeline, 1)
	result := vk.CreateGraphicsPipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
		context.Allocator,
		pipelines)
	if err := vk.Error(result); err != nil {
		return nil, errors.Wrapf(err, "vkCreateGraphicsPipelines failed with %s", VulkanResultString(result))
	}

	core.LogDebug("Graphics pipeline created!")
	return &VulkanPipeline{Handle: pipelines[0]}, nil
}

// NewPipelineLayout creates a layout with no descriptor sets and no push
// constants.
func NewPipelineLayout(context *VulkanContext) (vk.PipelineLayout, error) {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	result := vk.CreatePipelineLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &layout)
	if err := vk.Error(result); err != nil {
		return vk.NullPipelineLayout, errors.Wrapf(err, "vkCreatePipelineLayout failed with %s", VulkanResultString(result))
	}
	return layout, nil
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	if pipeline.Handle != vk.NullPipeline {
		vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
		pipeline.Handle = vk.NullPipeline
	}
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, pipeline.Handle)
}
