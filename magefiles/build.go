//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderModels = []string{"box", "gouraud", "phong", "pbr", "text"}
var shaderStages = []string{"vert", "frag"}

// Compiles every GLSL shader pair to SPIR-V with glslc. The engine's file
// watcher picks the fresh binaries up while it is running.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, model := range shaderModels {
		for _, stage := range shaderStages {
			source := fmt.Sprintf("assets/shaders/%s.%s", model, stage)
			output := fmt.Sprintf("assets/shaders/%s.%s.spv", model, stage)
			if _, err := executeCmd("glslc", withArgs(source, "-o", output), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Builds the testbed binary.
func (Build) Testbed() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/testbed", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
