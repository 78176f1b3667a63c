//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every GLSL shader under shaders/ to SPIR-V next to its source.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, pattern := range []string{"shaders/*.vert", "shaders/*.frag"} {
		sources, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		for _, src := range sources {
			if _, err := executeCmd("glslc", withArgs(src, "-o", src+".spv"), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}
