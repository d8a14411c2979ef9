package compilecommands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
)

// Entry is one compile_commands.json element: the directory the command
// was run from, and the raw (unsplit) command string.
type Entry struct {
	Directory string
	Command   string
}

// CompileCommands is an immutable index over a parsed
// compile_commands.json file.
type CompileCommands struct {
	byFile    map[string]Entry // normalized absolute path -> entry
	valaFiles []valaSidecar
}

type valaSidecar struct {
	path  string
	entry Entry
}

// New parses file's contents into a CompileCommands index. Returns InvalidData for malformed JSON or a
// non-array root, Io for a read failure.
func New(file string) *async.Future[*CompileCommands] {
	p, f := async.NewPromise[*CompileCommands]()
	raw, err := os.ReadFile(file)
	if err != nil {
		p.Reject(ferr.Wrap(ferr.Io, err, "reading compile_commands.json"))
		return f
	}

	if err := ValidateSchema(raw); err != nil {
		p.Reject(err)
		return f
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		p.Reject(ferr.Wrap(ferr.InvalidData, err, "compile_commands.json root must be an array"))
		return f
	}

	cc := &CompileCommands{byFile: make(map[string]Entry)}
	for _, row := range rows {
		fileVal, _ := row["file"].(string)
		dirVal, _ := row["directory"].(string)
		cmdVal, _ := row["command"].(string)
		if fileVal == "" || dirVal == "" || cmdVal == "" {
			continue
		}
		norm := normalize(fileVal, dirVal)
		entry := Entry{Directory: dirVal, Command: cmdVal}
		cc.byFile[norm] = entry

		if strings.HasSuffix(norm, ".vala") {
			cc.valaFiles = append(cc.valaFiles, valaSidecar{path: norm, entry: entry})
		}
		if strings.Contains(cmdVal, "valac") {
			for _, arg := range shellSplit(cmdVal) {
				if strings.Contains(arg, ".vala") {
					cc.valaFiles = append(cc.valaFiles, valaSidecar{path: normalize(arg, dirVal), entry: entry})
				}
			}
		}
	}
	p.Resolve(cc)
	return f
}

func normalize(file, directory string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Clean(filepath.Join(directory, file))
}
