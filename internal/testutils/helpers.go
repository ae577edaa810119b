package testutils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// UUIDs of the sample result and its single import ancestor.
const (
	RootUUID   = "6a560ee1-2aa5-4b8c-9a4e-1bd9a1c4e5a1"
	ParentUUID = "0f1b2b36-54c1-4d4d-9bb5-7a5ad6f0b3c2"
	VizUUID    = "c3d4e5f6-0718-4293-a4b5-c6d7e8f90a1b"
)

const version = "QIIME 2\narchive: 5\nframework: 2023.9.1\n"

// SampleFiles returns the container layout of a filtered feature table whose
// table input was imported.
func SampleFiles() map[string]string {
	rootMeta := "uuid: " + RootUUID + "\ntype: FeatureTable[Frequency]\nformat: BIOMV210DirFmt\n"
	parentMeta := "uuid: " + ParentUUID + "\ntype: FeatureTable[Frequency]\nformat: BIOMV210DirFmt\n"
	parent := RootUUID + "/provenance/artifacts/" + ParentUUID
	return map[string]string{
		RootUUID + "/VERSION":                       version,
		RootUUID + "/metadata.yaml":                 rootMeta,
		RootUUID + "/data/feature-table.biom":       "biom",
		RootUUID + "/provenance/VERSION":            version,
		RootUUID + "/provenance/metadata.yaml":      rootMeta,
		RootUUID + "/provenance/action/action.yaml": filterAction,
		parent + "/VERSION":                         version,
		parent + "/metadata.yaml":                   parentMeta,
		parent + "/action/action.yaml":              importAction,
	}
}

// VisualizationFiles returns the layout of a visualization of the sample table.
func VisualizationFiles() map[string]string {
	meta := "uuid: " + VizUUID + "\ntype: Visualization\nformat: null\n"
	files := map[string]string{
		VizUUID + "/VERSION":                       version,
		VizUUID + "/metadata.yaml":                 meta,
		VizUUID + "/data/index.html":               "<html><body>summary</body></html>",
		VizUUID + "/data/style.css":                "body { margin: 0; }",
		VizUUID + "/provenance/metadata.yaml":      meta,
		VizUUID + "/provenance/action/action.yaml": summarizeAction,
	}
	for name, content := range SampleFiles() {
		if rel, ok := strings.CutPrefix(name, RootUUID+"/provenance/"); ok && rel != "VERSION" {
			if rel == "metadata.yaml" || strings.HasPrefix(rel, "action/") {
				rel = "artifacts/" + RootUUID + "/" + rel
			}
			files[VizUUID+"/provenance/"+rel] = content
		}
	}
	return files
}

// WriteArchive zips files into a temporary .qza and returns its path.
func WriteArchive(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "result.qza")
	f, err := os.Create(path)
	require.NoError(t, err, "Failed to create archive")

	w := zip.NewWriter(f)
	for _, name := range sortedKeys(files) {
		entry, err := w.Create(name)
		require.NoError(t, err, "Failed to add %s", name)
		_, err = entry.Write([]byte(files[name]))
		require.NoError(t, err, "Failed to write %s", name)
	}
	require.NoError(t, w.Close(), "Failed to finish archive")
	require.NoError(t, f.Close())
	return path
}

// WriteDir writes files under a temporary directory and returns it.
func WriteDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range sortedKeys(files) {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(files[name]), 0o644))
	}
	return dir
}

// SampleArchive writes the sample result as a zip.
func SampleArchive(t *testing.T) string {
	t.Helper()
	return WriteArchive(t, SampleFiles())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const filterAction = `execution:
  uuid: 4b1d7c2e-3a5f-4e6d-8c9b-0a1b2c3d4e5f
  runtime:
    start: 2023-10-02T10:00:00.000000-07:00
    duration: 1 second
action:
  type: method
  plugin: !ref 'environment:plugins:feature-table'
  action: filter_samples
  inputs:
  - table: ` + ParentUUID + `
  parameters:
  - min_frequency: 10
  - exclude_ids: false
  - metadata: null
  output-name: filtered_table
environment:
  platform: linux-x86_64
  python: 3.8.16
  framework:
    version: 2023.9.1
  plugins:
    feature-table:
      version: 2023.9.0
`

const importAction = `execution:
  uuid: 9e8d7c6b-5a49-4382-b716-a5f4e3d2c1b0
action:
  type: import
  format: BIOMV210Format
  manifest:
  - name: feature-table.biom
    md5sum: 1f2e3d4c5b6a79881726354453627181
environment:
  framework:
    version: 2023.9.1
`

const summarizeAction = `execution:
  uuid: 7d6c5b4a-3928-4170-8f6e-5d4c3b2a1908
action:
  type: visualizer
  plugin: !ref 'environment:plugins:feature-table'
  action: summarize
  inputs:
  - table: ` + RootUUID + `
  parameters:
  - sample_metadata: null
environment:
  framework:
    version: 2023.9.1
`
