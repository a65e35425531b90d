package manifest

import (
	"bytes"
	"path/filepath"

	"studiodrop/internal/fileutil"
	"studiodrop/internal/planner"
	"studiodrop/internal/services"
)

// Paths are the files written by Emit.
type Paths struct {
	Manifest string `json:"manifest"`
	Report   string `json:"report"`
}

// PathsFor returns where Emit writes below dropRoot.
func PathsFor(dropRoot string) Paths {
	return Paths{
		Manifest: filepath.Join(dropRoot, filepath.FromSlash(planner.ManifestRelPath)),
		Report:   filepath.Join(dropRoot, filepath.FromSlash(planner.ReportRelPath)),
	}
}

// Emit writes docs/manifest.json and docs/report.html below dropRoot. Both
// files are replaced atomically; an earlier run's files are overwritten.
func Emit(m *Manifest, dropRoot string) (Paths, error) {
	paths := PathsFor(dropRoot)

	data, err := m.Encode()
	if err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "emit", "encode manifest", "", err)
	}
	if err := fileutil.WriteFileAtomic(paths.Manifest, data, 0o644); err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "emit", "write manifest", paths.Manifest, err)
	}

	var report bytes.Buffer
	if err := RenderReport(&report, m); err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "emit", "render report", "", err)
	}
	if err := fileutil.WriteFileAtomic(paths.Report, report.Bytes(), 0o644); err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "emit", "write report", paths.Report, err)
	}
	return paths, nil
}
