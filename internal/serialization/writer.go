package serialization

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/born-ml/mlp/internal/nn"
)

// SaveFile writes net to path.
//
// Data goes to a temporary file in the same directory which is synced and
// renamed over path only once it is complete, so an interrupted save never
// leaves a partial model at path. The temporary file is removed on failure.
func SaveFile(path string, net *nn.Network, opts ...Option) (err error) {
	pos := at("save")

	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close() // Best effort close on error
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = Save(bw, net, opts...); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	if err = tmp.Sync(); err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	if err = tmp.Close(); err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return pos.fail(KindIO, "", -1, err)
	}
	return nil
}
