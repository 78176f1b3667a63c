package metadata

/**
 * @brief Opaque, API-neutral GPU object handles. Backends map them to their
 * native objects. The zero value of every handle is the null handle.
 */
const NullHandle = 0

type (
	/** @brief A compiled shader module. */
	ShaderModule uint64
	/** @brief A compiled graphics pipeline. */
	Pipeline uint64
	/** @brief A pipeline layout (descriptor set layouts + push constants). */
	PipelineLayout uint64
	/** @brief A render pass. */
	RenderPass uint64
	/** @brief A framebuffer bound to a render pass. */
	Framebuffer uint64
	/** @brief A command pool command buffers are allocated from. */
	CommandPool uint64
	/** @brief A primary command buffer. */
	CommandBuffer uint64
)

func (h ShaderModule) IsNull() bool   { return h == NullHandle }
func (h Pipeline) IsNull() bool       { return h == NullHandle }
func (h PipelineLayout) IsNull() bool { return h == NullHandle }
func (h RenderPass) IsNull() bool     { return h == NullHandle }
func (h Framebuffer) IsNull() bool    { return h == NullHandle }
func (h CommandPool) IsNull() bool    { return h == NullHandle }
func (h CommandBuffer) IsNull() bool  { return h == NullHandle }
