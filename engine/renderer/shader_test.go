package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/lumen/engine/core"
)

func TestReadShaderFile(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "simple.vert.spv")

	code, err := ReadShaderFile(path)
	if err != nil {
		t.Fatalf("ReadShaderFile() error = %v", err)
	}
	if len(code) != 20 {
		t.Errorf("len(code) = %d, want 20", len(code))
	}
	if code[0] != 0x03 || code[3] != 0x07 {
		t.Errorf("code starts with % x, want SPIR-V magic in little endian", code[:4])
	}
}

func TestReadShaderFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.spv")},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadShaderFile(tt.path)
			if err == nil {
				t.Fatal("ReadShaderFile() error = nil, want error")
			}
			if !errors.Is(err, core.ErrIO) {
				t.Errorf("error %v is not ErrIO", err)
			}
		})
	}
}

func TestReadShaderFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.spv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	code, err := ReadShaderFile(path)
	if err != nil {
		t.Fatalf("ReadShaderFile() error = %v", err)
	}
	if len(code) != 0 {
		t.Errorf("len(code) = %d, want 0", len(code))
	}
}

func TestShaderWords(t *testing.T) {
	code := []byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00}

	words, err := ShaderWords(code, ShaderOptions{CheckMagic: true})
	if err != nil {
		t.Fatalf("ShaderWords() error = %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words[0] != SPIRVMagic {
		t.Errorf("words[0] = %#x, want %#x", words[0], SPIRVMagic)
	}
	if words[1] != 1 {
		t.Errorf("words[1] = %d, want 1", words[1])
	}
}

func TestShaderWordsValidation(t *testing.T) {
	tests := []struct {
		name      string
		code      []byte
		opts      ShaderOptions
		wantErr   bool
		wantWords int
	}{
		{"empty", nil, ShaderOptions{}, true, 0},
		{"unaligned", []byte{1, 2, 3, 4, 5}, ShaderOptions{}, true, 0},
		{"unaligned permissive", []byte{1, 2, 3, 4, 5}, ShaderOptions{Permissive: true}, false, 1},
		{"shorter than a word permissive", []byte{1, 2}, ShaderOptions{Permissive: true}, true, 0},
		{"bad magic", []byte{1, 2, 3, 4}, ShaderOptions{CheckMagic: true}, true, 0},
		{"bad magic unchecked", []byte{1, 2, 3, 4}, ShaderOptions{}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := ShaderWords(tt.code, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ShaderWords() error = nil, want error")
				}
				if !errors.Is(err, core.ErrResourceCreation) {
					t.Errorf("error %v is not ErrResourceCreation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ShaderWords() error = %v", err)
			}
			if len(words) != tt.wantWords {
				t.Errorf("len(words) = %d, want %d", len(words), tt.wantWords)
			}
		})
	}
}

func TestNewShaderModule(t *testing.T) {
	device := newFakeDevice()
	code := []byte{0x03, 0x02, 0x23, 0x07}

	module, err := NewShaderModule(device, code, ShaderOptions{})
	if err != nil {
		t.Fatalf("NewShaderModule() error = %v", err)
	}
	if module.IsNull() {
		t.Error("module is null")
	}
	if len(device.lastModuleCode) != 1 || device.lastModuleCode[0] != SPIRVMagic {
		t.Errorf("device received %v, want [%#x]", device.lastModuleCode, SPIRVMagic)
	}
}

func TestNewShaderModuleRejected(t *testing.T) {
	device := newFakeDevice()
	device.failModuleAt = 1

	_, err := NewShaderModule(device, []byte{1, 2, 3, 4}, ShaderOptions{})
	if !errors.Is(err, core.ErrResourceCreation) {
		t.Fatalf("error = %v, want ErrResourceCreation", err)
	}
	if device.modulesCreated != 0 {
		t.Errorf("modulesCreated = %d, want 0", device.modulesCreated)
	}
}

func TestNewShaderModuleMalformedNeverReachesDevice(t *testing.T) {
	device := newFakeDevice()

	if _, err := NewShaderModule(device, []byte{1, 2, 3}, ShaderOptions{}); err == nil {
		t.Fatal("NewShaderModule() error = nil, want error")
	}
	if device.moduleCalls != 0 {
		t.Errorf("moduleCalls = %d, want 0", device.moduleCalls)
	}
}
