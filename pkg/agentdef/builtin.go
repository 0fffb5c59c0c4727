package agentdef

import (
	"embed"
	"io/fs"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// BuiltinSub returns the "builtin" subtree of the embedded filesystem,
// rooted directly at the directory containing the *.toml files — what
// LoadAgents/LoadSelector/LoadAggregator expect as their builtinFS
// argument.
func BuiltinSub() (fs.FS, error) {
	return fs.Sub(builtinFS, "builtin")
}
