package wrapper

import (
	"os"
)

// FileOps abstracts the filesystem operations the registrar performs, so
// rollback behavior can be tested against fakes.
type FileOps interface {
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
	Symlink(oldname, newname string) error
	Rename(oldpath, newpath string) error
	Remove(path string) error
	WriteFile(path string, data []byte, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
}

type defaultFileOps struct{}

// NewDefaultFileOps returns a FileOps backed by the os package.
func NewDefaultFileOps() FileOps {
	return &defaultFileOps{}
}

func (f *defaultFileOps) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (f *defaultFileOps) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (f *defaultFileOps) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

func (f *defaultFileOps) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

func (f *defaultFileOps) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (f *defaultFileOps) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (f *defaultFileOps) Remove(path string) error {
	return os.Remove(path)
}

func (f *defaultFileOps) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (f *defaultFileOps) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
