// Package pipeline implements BuildPipeline, BuildStage, and
// BuildProgress: an ordered sequence of stages sharing a build
// directory and an intercepting PTY, executed against a target phase
// mask with diagnostics scraped from the PTY's consumer side.
//
// Phase ordering and the category-bucket idea generalize a
// BuildCategory enumeration (Auth, PreBuild, Build, PostBuild, Quality,
// Apply, Publish): that category is a single bucket per step used only
// to order execution, which is exactly what Phase is here, just with
// nine phase names instead of seven.
package pipeline

// Phase is a bit flag; a stage declares exactly one. Ordering is the
// declaration order below, strictly increasing.
type Phase uint16

const PhaseNone Phase = 0

const (
	PhaseDependencies Phase = 1 << iota
	PhaseDownloads
	PhaseAutogen
	PhaseConfigure
	PhaseBuild
	PhaseInstall
	PhaseCommit
	PhaseExport
	PhaseFinal
)

// orderedPhases lists every non-NONE phase in strictly increasing order,
// the sequence build() walks forward and clean()/purge() walk backward.
var orderedPhases = []Phase{
	PhaseDependencies,
	PhaseDownloads,
	PhaseAutogen,
	PhaseConfigure,
	PhaseBuild,
	PhaseInstall,
	PhaseCommit,
	PhaseExport,
	PhaseFinal,
}

// Selects reports whether mask selects phase p: s.phase & M != 0.
func (p Phase) Selects(mask Phase) bool {
	return p&mask != 0
}

// ParsePhase looks up the Phase whose String() is name, case-sensitive.
func ParsePhase(name string) (Phase, bool) {
	for _, p := range orderedPhases {
		if p.String() == name {
			return p, true
		}
	}
	return PhaseNone, false
}

// ParsePhases ORs together every name ParsePhase recognizes, skipping
// (and logging via the caller) any it doesn't.
func ParsePhases(names []string) (mask Phase, unknown []string) {
	for _, name := range names {
		if p, ok := ParsePhase(name); ok {
			mask |= p
		} else {
			unknown = append(unknown, name)
		}
	}
	return mask, unknown
}

func (p Phase) String() string {
	switch p {
	case PhaseDependencies:
		return "dependencies"
	case PhaseDownloads:
		return "downloads"
	case PhaseAutogen:
		return "autogen"
	case PhaseConfigure:
		return "configure"
	case PhaseBuild:
		return "build"
	case PhaseInstall:
		return "install"
	case PhaseCommit:
		return "commit"
	case PhaseExport:
		return "export"
	case PhaseFinal:
		return "final"
	default:
		return "none"
	}
}
