// Package transcript writes demonstrator output to files and checks it
// against golden copies.
package transcript

import (
	"bytes"
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// sameContents returns true if the file at path holds exactly data. It returns
// false if any errors are encountered along the way.
func sameContents(path string, data []byte) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil || stat.Size() != int64(len(data)) {
		return false
	}
	var buf [4096]byte
	for {
		n, err := f.Read(buf[:])
		if n > len(data) || !bytes.Equal(buf[:n], data[:n]) {
			return false
		}
		data = data[n:]
		if err != nil {
			// got to the end of the file with every byte matched
			return len(data) == 0
		}
	}
}

// WriteFileIfChanged writes data to file name, first checking if it already
// has those contents.
//
// Same interface as [os.WriteFile] - creates name if it doesn't exist with
// perm, but doesn't set perm if the file does exist.
func WriteFileIfChanged(name string, data []byte, perm os.FileMode) error {
	if sameContents(name, data) {
		return nil
	}
	return os.WriteFile(name, data, perm)
}

// ActualPath is where Compare leaves output that did not match goldPath.
func ActualPath(goldPath string) string {
	return goldPath + ".actual"
}

// Compare checks actual against the golden file at goldPath.
//
// With update set the golden file is rewritten instead. On a mismatch the
// output is saved to ActualPath(goldPath) for inspection; on a match any stale
// copy there is removed.
func Compare(goldPath string, actual []byte, update bool) error {
	actualPath := ActualPath(goldPath)
	if update {
		_ = os.Remove(actualPath)
		return WriteFileIfChanged(goldPath, actual, 0644)
	}
	expected, err := os.ReadFile(goldPath)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("missing gold output %s (run with -update-gold)", goldPath)
	} else if err != nil {
		return errors.Wrapf(err, "could not load gold output %s", goldPath)
	}
	if !bytes.Equal(actual, expected) {
		if err := os.WriteFile(actualPath, actual, 0644); err != nil {
			return errors.Wrap(err, "could not save actual output")
		}
		return errors.Errorf("actual output != gold output; see %s", actualPath)
	}
	_ = os.Remove(actualPath)
	return nil
}
