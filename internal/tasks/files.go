package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// Mkdir creates a directory and any missing parents.
type Mkdir struct {
	Dir string
}

// Describe implements ports.Element.
func (m *Mkdir) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "mkdir",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.Path("dir", func(m *Mkdir, v string) { m.Dir = v }, registry.Required()),
		},
	}
}

// Execute implements ports.Task.
func (m *Mkdir) Execute(_ context.Context, env ports.TaskEnv) error {
	if info, err := os.Stat(m.Dir); err == nil && info.IsDir() {
		return nil
	}
	env.Log(domain.LevelInfo, "Creating directory '"+m.Dir+"'.")
	if err := os.MkdirAll(m.Dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", m.Dir)
	}
	return nil
}

// Delete removes a file, a directory tree or the files of a fileset.
type Delete struct {
	File    string
	Dir     string
	FileSet *FileSet
}

// Describe implements ports.Element.
func (d *Delete) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "delete",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.Path("file", func(d *Delete, v string) { d.File = v }),
			registry.Path("dir", func(d *Delete, v string) { d.Dir = v }),
		},
		Children: []domain.ChildSpec{
			registry.Child("fileset", func(d *Delete, f *FileSet) { d.FileSet = f }),
		},
	}
}

// Initialize implements ports.Initializer.
func (d *Delete) Initialize() error {
	if d.File == "" && d.Dir == "" && d.FileSet == nil {
		return zerr.New("one of 'file', 'dir' or a nested fileset is required")
	}
	return nil
}

// Execute implements ports.Task.
func (d *Delete) Execute(_ context.Context, env ports.TaskEnv) error {
	if d.File != "" {
		if err := removeFile(env, d.File); err != nil {
			return err
		}
	}
	if d.Dir != "" {
		if _, err := os.Stat(d.Dir); err == nil {
			env.Log(domain.LevelInfo, "Deleting directory '"+d.Dir+"'.")
		}
		if err := os.RemoveAll(d.Dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to delete directory"), "path", d.Dir)
		}
	}
	if d.FileSet != nil {
		files, err := d.FileSet.Files(env.BaseDir())
		if err != nil {
			return err
		}
		if len(files) > 0 {
			env.Log(domain.LevelInfo, fmt.Sprintf("Deleting %d files.", len(files)))
		}
		for _, f := range files {
			if err := removeFile(env, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func removeFile(env ports.TaskEnv, path string) error {
	err := os.Remove(path)
	switch {
	case err == nil:
		env.Log(domain.LevelVerbose, "Deleting file '"+path+"'.")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return zerr.With(zerr.Wrap(err, "failed to delete file"), "path", path)
	}
}

// Copy copies a file or the files of a fileset.
type Copy struct {
	File      string
	ToFile    string
	ToDir     string
	Overwrite bool
	Flatten   bool
	FileSet   *FileSet
}

// Describe implements ports.Element.
func (c *Copy) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "copy",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.Path("file", func(c *Copy, v string) { c.File = v }),
			registry.Path("tofile", func(c *Copy, v string) { c.ToFile = v }),
			registry.Path("todir", func(c *Copy, v string) { c.ToDir = v }),
			registry.Bool("overwrite", func(c *Copy, v bool) { c.Overwrite = v }),
			registry.Bool("flatten", func(c *Copy, v bool) { c.Flatten = v }),
		},
		Children: []domain.ChildSpec{
			registry.Child("fileset", func(c *Copy, f *FileSet) { c.FileSet = f }),
		},
	}
}

// Initialize implements ports.Initializer.
func (c *Copy) Initialize() error {
	switch {
	case c.File == "" && c.FileSet == nil:
		return zerr.New("either 'file' or a nested fileset is required")
	case c.File != "" && c.FileSet != nil:
		return zerr.New("'file' and a nested fileset cannot be combined")
	case c.ToFile == "" && c.ToDir == "":
		return zerr.New("either 'tofile' or 'todir' is required")
	case c.ToFile != "" && c.ToDir != "":
		return zerr.New("'tofile' and 'todir' cannot be combined")
	case c.ToFile != "" && c.FileSet != nil:
		return zerr.New("'tofile' cannot be used with a nested fileset")
	}
	return nil
}

// Execute implements ports.Task.
func (c *Copy) Execute(_ context.Context, env ports.TaskEnv) error {
	plan, err := c.plan(env.BaseDir())
	if err != nil {
		return err
	}

	copied := 0
	for _, p := range plan {
		done, err := copyFile(p.src, p.dst, c.Overwrite)
		if err != nil {
			return err
		}
		if done {
			env.Log(domain.LevelVerbose, fmt.Sprintf("Copying '%s' to '%s'.", p.src, p.dst))
			copied++
		}
	}
	if copied > 0 {
		env.Log(domain.LevelInfo, fmt.Sprintf("Copying %d files.", copied))
	}
	return nil
}

type copyPair struct {
	src, dst string
}

func (c *Copy) plan(baseDir string) ([]copyPair, error) {
	if c.File != "" {
		dst := c.ToFile
		if dst == "" {
			dst = filepath.Join(c.ToDir, filepath.Base(c.File))
		}
		return []copyPair{{src: c.File, dst: dst}}, nil
	}

	files, err := c.FileSet.Files(baseDir)
	if err != nil {
		return nil, err
	}
	root := c.FileSet.Dir(baseDir)
	plan := make([]copyPair, 0, len(files))
	for _, f := range files {
		rel := filepath.Base(f)
		if !c.Flatten {
			if r, err := filepath.Rel(root, f); err == nil {
				rel = r
			}
		}
		plan = append(plan, copyPair{src: f, dst: filepath.Join(c.ToDir, rel)})
	}
	return plan, nil
}

// copyFile copies src to dst. Without overwrite an up-to-date destination is kept.
func copyFile(src, dst string, overwrite bool) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "could not find file to copy"), "path", src)
	}
	if !overwrite {
		if dstInfo, err := os.Stat(dst); err == nil && !dstInfo.ModTime().Before(info.ModTime()) {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}

	in, err := os.Open(src) //nolint:gosec // path comes from the build script
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only handle

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // path comes from the build script
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}
	return true, nil
}
