package pipeline

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer/gpu"
)

type partLocations struct {
	mvp, offset                     gpu.UniformLocation
	opacity, multColor, screenColor gpu.UniformLocation
	emissionStrength                gpu.UniformLocation
	albedo, emissive, bumpmap       gpu.UniformLocation
}

type partMaskLocations struct {
	mvp, offset, threshold, tex gpu.UniformLocation
}

type transformLocations struct {
	mvp, offset gpu.UniformLocation
}

type shaderSet struct {
	stages   [3]gpu.Program
	stageU   [3]partLocations
	partMsk  gpu.Program
	partMskU partMaskLocations
	mask     gpu.Program
	maskU    transformLocations

	post     gpu.Program
	debug    gpu.Program
	debugU   struct{ mvp, color gpu.UniformLocation }
	present  gpu.Program
	presentU struct{ src, colorKey gpu.UniformLocation }
	thumb    gpu.Program
	thumbU   struct{ mvp, albedo gpu.UniformLocation }
}

var builtinPrograms = []gpu.ProgramSource{
	{Name: gpu.ProgramPartStage1, Vertex: partVertexSource, Fragment: partStage1Source},
	{Name: gpu.ProgramPartStage2, Vertex: partVertexSource, Fragment: partStage2Source},
	{Name: gpu.ProgramPartStage3, Vertex: partVertexSource, Fragment: partStage3Source},
	{Name: gpu.ProgramPartMask, Vertex: partVertexSource, Fragment: partMaskSource},
	{Name: gpu.ProgramMask, Vertex: maskVertexSource, Fragment: maskFragmentSource},
	{Name: gpu.ProgramPost, Vertex: quadVertexSource, Fragment: postFragmentSource},
	{Name: gpu.ProgramDebug, Vertex: debugVertexSource, Fragment: debugFragmentSource},
	{Name: gpu.ProgramPresent, Vertex: quadVertexSource, Fragment: presentFragmentSource},
	{Name: gpu.ProgramThumb, Vertex: thumbVertexSource, Fragment: thumbFragmentSource},
}

// buildShaderSet compiles every built-in program. A single failure releases what was built and
// fails the whole set.
func buildShaderSet(dev gpu.Device) (*shaderSet, error) {
	programs := make(map[string]gpu.Program, len(builtinPrograms))
	for _, src := range builtinPrograms {
		p, err := dev.CreateProgram(src)
		if err != nil {
			for _, built := range programs {
				dev.DeleteProgram(built)
			}
			return nil, fmt.Errorf("%w: %s: %v", core.ErrShaderBuild, src.Name, err)
		}
		programs[src.Name] = p
	}

	s := &shaderSet{
		stages: [3]gpu.Program{
			programs[gpu.ProgramPartStage1],
			programs[gpu.ProgramPartStage2],
			programs[gpu.ProgramPartStage3],
		},
		partMsk: programs[gpu.ProgramPartMask],
		mask:    programs[gpu.ProgramMask],
		post:    programs[gpu.ProgramPost],
		debug:   programs[gpu.ProgramDebug],
		present: programs[gpu.ProgramPresent],
		thumb:   programs[gpu.ProgramThumb],
	}
	for i, p := range s.stages {
		s.stageU[i] = partLocations{
			mvp:              dev.UniformLocation(p, "mvp"),
			offset:           dev.UniformLocation(p, "offset"),
			opacity:          dev.UniformLocation(p, "opacity"),
			multColor:        dev.UniformLocation(p, "multColor"),
			screenColor:      dev.UniformLocation(p, "screenColor"),
			emissionStrength: dev.UniformLocation(p, "emissionStrength"),
			albedo:           dev.UniformLocation(p, "albedo"),
			emissive:         dev.UniformLocation(p, "emissive"),
			bumpmap:          dev.UniformLocation(p, "bumpmap"),
		}
	}
	s.partMskU = partMaskLocations{
		mvp:       dev.UniformLocation(s.partMsk, "mvp"),
		offset:    dev.UniformLocation(s.partMsk, "offset"),
		threshold: dev.UniformLocation(s.partMsk, "threshold"),
		tex:       dev.UniformLocation(s.partMsk, "tex"),
	}
	s.maskU = transformLocations{
		mvp:    dev.UniformLocation(s.mask, "mvp"),
		offset: dev.UniformLocation(s.mask, "offset"),
	}
	s.debugU.mvp = dev.UniformLocation(s.debug, "mvp")
	s.debugU.color = dev.UniformLocation(s.debug, "inColor")
	s.presentU.src = dev.UniformLocation(s.present, "srcTex")
	s.presentU.colorKey = dev.UniformLocation(s.present, "useColorKey")
	s.thumbU.mvp = dev.UniformLocation(s.thumb, "mvp")
	s.thumbU.albedo = dev.UniformLocation(s.thumb, "albedo")
	return s, nil
}

func (s *shaderSet) release(dev gpu.Device) {
	for _, p := range []gpu.Program{s.stages[0], s.stages[1], s.stages[2], s.partMsk, s.mask, s.post, s.debug, s.present, s.thumb} {
		if p != 0 {
			dev.DeleteProgram(p)
		}
	}
	*s = shaderSet{}
}
