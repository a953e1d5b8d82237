package report

import (
	"fmt"
	"os"
	"path/filepath"

	"codefacts/internal/core/errors"
)

// WriteArtifacts writes the full and delta documents atomically: each is
// staged to a temp file in its target directory, and both are renamed
// into place only after both stages succeeded. Either both artifacts
// exist afterwards or neither was touched.
func WriteArtifacts(fullPath string, full []byte, deltaPath string, delta []byte) error {
	fullTmp, err := stage(fullPath, full)
	if err != nil {
		return err
	}
	deltaTmp, err := stage(deltaPath, delta)
	if err != nil {
		_ = os.Remove(fullTmp)
		return err
	}

	if err := os.Rename(fullTmp, fullPath); err != nil {
		_ = os.Remove(fullTmp)
		_ = os.Remove(deltaTmp)
		return wrapIO(err, fullPath, "replace artifact")
	}
	if err := os.Rename(deltaTmp, deltaPath); err != nil {
		_ = os.Remove(deltaTmp)
		return wrapIO(err, deltaPath, "replace artifact")
	}
	return nil
}

func stage(path string, content []byte) (string, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", wrapIO(err, path, "create artifact directory")
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return "", wrapIO(err, path, "create temp artifact")
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.Write(content); err != nil {
		writeErr = err
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return "", wrapIO(writeErr, path, "write temp artifact")
	}
	return tmpName, nil
}

func wrapIO(err error, path, op string) error {
	wrapped := errors.Wrap(err, errors.CodeIO, fmt.Sprintf("%s %q", op, path))
	return errors.AddContext(wrapped, errors.CtxPath, path)
}
