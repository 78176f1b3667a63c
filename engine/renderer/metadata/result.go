package metadata

/** @brief API-neutral status code returned by swapchain operations. */
type Result int

const (
	/** @brief The operation completed successfully. */
	ResultSuccess Result = iota
	/** @brief The swapchain no longer matches the surface exactly but can still present. */
	ResultSuboptimal
	/** @brief A fence or query has not yet completed. */
	ResultNotReady
	/** @brief A wait operation did not complete in the given time. */
	ResultTimeout
	/** @brief The surface changed and the swapchain can no longer present to it. */
	ResultErrorOutOfDate
	/** @brief The surface is no longer available. */
	ResultErrorSurfaceLost
	/** @brief The logical or physical device has been lost. */
	ResultErrorDeviceLost
	/** @brief A host memory allocation failed. */
	ResultErrorOutOfHostMemory
	/** @brief A device memory allocation failed. */
	ResultErrorOutOfDeviceMemory
	/** @brief Any other failure. */
	ResultErrorUnknown
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "SUCCESS"
	case ResultSuboptimal:
		return "SUBOPTIMAL"
	case ResultNotReady:
		return "NOT_READY"
	case ResultTimeout:
		return "TIMEOUT"
	case ResultErrorOutOfDate:
		return "ERROR_OUT_OF_DATE"
	case ResultErrorSurfaceLost:
		return "ERROR_SURFACE_LOST"
	case ResultErrorDeviceLost:
		return "ERROR_DEVICE_LOST"
	case ResultErrorOutOfHostMemory:
		return "ERROR_OUT_OF_HOST_MEMORY"
	case ResultErrorOutOfDeviceMemory:
		return "ERROR_OUT_OF_DEVICE_MEMORY"
	default:
		return "ERROR_UNKNOWN"
	}
}

// AcquireUsable reports whether an image acquired with this result can be
// rendered to. Suboptimal images are still presentable.
func (r Result) AcquireUsable() bool {
	return r == ResultSuccess || r == ResultSuboptimal
}
