package renderer

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// ShaderOptions controls how strictly shader binaries are checked before they
// reach the device.
type ShaderOptions struct {
	// Permissive drops trailing bytes of a binary whose size is not a multiple
	// of 4 instead of rejecting it.
	Permissive bool
	// CheckMagic rejects binaries that do not start with the SPIR-V magic number.
	CheckMagic bool
}

// ReadShaderFile reads a whole shader binary. The size is taken from the file
// metadata and the contents are read in a single pass.
func ReadShaderFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Mark(err, core.ErrIO, "failed to open shader file %q", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, core.Mark(err, core.ErrIO, "failed to stat shader file %q", path)
	}
	if info.IsDir() {
		return nil, core.Fail(core.ErrIO, "shader path %q is a directory", path)
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, core.Mark(err, core.ErrIO, "failed to read shader file %q", path)
	}
	return buf, nil
}

// ShaderWords converts shader bytecode into little-endian instruction words.
func ShaderWords(code []byte, opts ShaderOptions) ([]uint32, error) {
	if len(code) == 0 {
		return nil, core.Fail(core.ErrResourceCreation, "shader bytecode is empty")
	}
	if len(code)%4 != 0 {
		if !opts.Permissive {
			return nil, core.Fail(core.ErrResourceCreation, "shader bytecode size %d is not a multiple of 4", len(code))
		}
		core.LogWarn("shader bytecode size %d is not a multiple of 4, dropping %d trailing bytes", len(code), len(code)%4)
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if len(words) == 0 {
		return nil, core.Fail(core.ErrResourceCreation, "shader bytecode shorter than one word")
	}
	if opts.CheckMagic && words[0] != SPIRVMagic {
		return nil, core.Fail(core.ErrResourceCreation, "shader bytecode has magic %#08x, want %#08x", words[0], SPIRVMagic)
	}
	return words, nil
}

// NewShaderModule wraps bytecode as a device shader module.
func NewShaderModule(device Device, code []byte, opts ShaderOptions) (metadata.ShaderModule, error) {
	words, err := ShaderWords(code, opts)
	if err != nil {
		return metadata.NullHandle, err
	}
	module, err := device.CreateShaderModule(words)
	if err != nil {
		return metadata.NullHandle, core.Mark(err, core.ErrResourceCreation, "failed to create shader module")
	}
	return module, nil
}
