package pipeline_test

import (
	"testing"

	"github.com/containifyci/foundry/pkg/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestPhaseOrderingStrictlyIncreasing(t *testing.T) {
	phases := []pipeline.Phase{
		pipeline.PhaseDependencies,
		pipeline.PhaseDownloads,
		pipeline.PhaseAutogen,
		pipeline.PhaseConfigure,
		pipeline.PhaseBuild,
		pipeline.PhaseInstall,
		pipeline.PhaseCommit,
		pipeline.PhaseExport,
		pipeline.PhaseFinal,
	}
	for i := 1; i < len(phases); i++ {
		assert.Less(t, phases[i-1], phases[i])
	}
}

func TestSelectsMask(t *testing.T) {
	mask := pipeline.PhaseBuild | pipeline.PhaseInstall
	assert.True(t, pipeline.PhaseBuild.Selects(mask))
	assert.True(t, pipeline.PhaseInstall.Selects(mask))
	assert.False(t, pipeline.PhaseConfigure.Selects(mask))
}

func TestParsePhaseRoundTripsString(t *testing.T) {
	p, ok := pipeline.ParsePhase("install")
	assert.True(t, ok)
	assert.Equal(t, pipeline.PhaseInstall, p)

	_, ok = pipeline.ParsePhase("bogus")
	assert.False(t, ok)
}

func TestParsePhasesCombinesAndReportsUnknown(t *testing.T) {
	mask, unknown := pipeline.ParsePhases([]string{"configure", "build", "bogus"})
	assert.Equal(t, pipeline.PhaseConfigure|pipeline.PhaseBuild, mask)
	assert.Equal(t, []string{"bogus"}, unknown)
}
