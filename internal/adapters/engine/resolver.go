package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Artifact files expected under a model's cache directory.
const (
	checkpointFile = "model.onnx"
	vocabFile      = "vocab.txt"
)

const resolveURLFormat = "https://huggingface.co/%s/resolve/main/%s"

// ModelPaths names the resolved local artifact files.
type ModelPaths struct {
	Checkpoint string
	Vocab      string
}

// ResolveModel ensures the named model's artifacts exist under dir,
// downloading any missing file from the hub. Files already present are
// reused as-is; a partial download never replaces an existing file.
func ResolveModel(ctx context.Context, name, dir string) (ModelPaths, error) {
	target := filepath.Join(dir, sanitizeModelName(name))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return ModelPaths{}, fmt.Errorf("creating model dir: %w", err)
	}

	paths := ModelPaths{
		Checkpoint: filepath.Join(target, checkpointFile),
		Vocab:      filepath.Join(target, vocabFile),
	}
	for _, file := range []string{checkpointFile, vocabFile} {
		local := filepath.Join(target, file)
		if _, err := os.Stat(local); err == nil {
			continue
		}
		url := fmt.Sprintf(resolveURLFormat, name, file)
		if err := download(ctx, url, local); err != nil {
			return ModelPaths{}, fmt.Errorf("fetching %s: %w", file, err)
		}
	}
	return paths, nil
}

// sanitizeModelName flattens a hub identifier ("Unbabel/XCOMET-XL")
// into one path segment.
func sanitizeModelName(name string) string {
	return strings.ReplaceAll(name, "/", "--")
}

// download fetches url into path via a temp file and atomic rename.
func download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving download into place: %w", err)
	}
	return nil
}
