package filter

import (
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"

	"github.com/koron/dl-kaoriya-vim/internal/model"
)

// DefaultSkipMarker marks debug-symbol archives that are never downloaded.
const DefaultSkipMarker = "pdb"

// ErrFilenameNeedsArch is returned when an output name is given without a
// specific architecture; one name cannot hold every asset.
var ErrFilenameNeedsArch = errors.New("-a must be specified when you specify -n.")

type Decision string

const (
	DecisionDownload   Decision = "download"    // Fetch the asset
	DecisionSkipDebug  Decision = "skip-debug"  // Debug symbols
	DecisionSkipArch   Decision = "skip-arch"   // Other architecture
	DecisionSkipExists Decision = "skip-exists" // Target present, not forced
)

// Options controls which assets are fetched and where they are written.
type Options struct {
	Arch       model.Arch
	Filename   string
	Force      bool
	SkipMarker string
	Dir        string
}

func (o Options) Validate() error {
	if o.Filename != "" && (o.Arch == "" || o.Arch == model.ArchAll) {
		return ErrFilenameNeedsArch
	}
	return nil
}

func (o Options) skipMarker() string {
	if o.SkipMarker == "" {
		return DefaultSkipMarker
	}
	return o.SkipMarker
}

// Target is one asset paired with its resolved destination and decision.
type Target struct {
	Asset    model.Asset
	Name     string
	Path     string
	Decision Decision
	Force    bool
}

func (t Target) Download() bool { return t.Decision == DecisionDownload }

// Name resolves the destination name for an asset.
func (o Options) Name(a model.Asset) string {
	if o.Filename != "" {
		return o.Filename
	}
	return a.Name
}

// Path joins the destination name onto Dir unless it is already absolute.
func (o Options) Path(name string) string {
	if o.Dir == "" || o.Dir == "." || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// Decide applies the skip rules in order; the first match wins.
func Decide(a model.Asset, o Options, exists func(string) bool) Target {
	name := o.Name(a)
	t := Target{Asset: a, Name: name, Path: o.Path(name), Force: o.Force}
	switch {
	case strings.Contains(a.Name, o.skipMarker()):
		t.Decision = DecisionSkipDebug
	case o.Arch != "" && o.Arch != model.ArchAll && !strings.Contains(a.Name, string(o.Arch)):
		t.Decision = DecisionSkipArch
	case !o.Force && exists(t.Path):
		t.Decision = DecisionSkipExists
	default:
		t.Decision = DecisionDownload
	}
	return t
}

// Candidates returns the assets that pass the marker and arch rules, in
// listed order. Whether a target already exists is left to Decide at
// download time.
func Candidates(assets []model.Asset, o Options) []model.Asset {
	var out []model.Asset
	for _, a := range assets {
		if Decide(a, o, noFile).Download() {
			out = append(out, a)
		}
	}
	return out
}

func noFile(string) bool { return false }

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
