// Package provision makes sure the working database file exists before a batch
// writes into it.
//
// The working file is created exactly once, by copying the template database
// produced by the schema initializer. Once present it is never touched again,
// not even when the template changes or disappears.
package provision

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// FileProvisioner implements asdb.Provisioner by copying the template file.
//
// The copy is written to a temporary file next to the target, fsynced and then
// renamed into place, so an interrupted copy never leaves a truncated database
// at the target path. Concurrent provisioners racing for the same target are
// not supported.
type FileProvisioner struct {
	logger asdb.Logger
}

// NewFileProvisioner creates a provisioner.
// Panics if logger is nil.
func NewFileProvisioner(logger asdb.Logger) *FileProvisioner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &FileProvisioner{logger: logger}
}

// Ensure copies templatePath to targetPath unless targetPath already exists.
func (p *FileProvisioner) Ensure(ctx context.Context, targetPath, templatePath string) (asdb.ProvisionStatus, error) {
	fail := func(op string, err error) (asdb.ProvisionStatus, error) {
		return asdb.ProvisionUnknown, &asdb.ProvisionError{Op: op, Target: targetPath, Template: templatePath, Err: err}
	}

	info, err := os.Stat(targetPath)
	switch {
	case err == nil && info.IsDir():
		return fail("stat target", errors.New("target is a directory"))
	case err == nil:
		p.logger.Verbose("Database %s already present", targetPath)
		return asdb.AlreadyPresent, nil
	case !errors.Is(err, os.ErrNotExist):
		return fail("stat target", err)
	}

	if err := ctx.Err(); err != nil {
		return fail("copy", err)
	}

	src, err := os.Open(templatePath)
	if err != nil {
		return fail("open template", err)
	}
	defer src.Close()

	srcInfo, err := src.Stat()
	if err != nil {
		return fail("stat template", err)
	}
	if srcInfo.IsDir() {
		return fail("open template", errors.New("template is a directory"))
	}

	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail("create directory", err)
	}

	p.logger.Verbose("Provisioning %s from %s (%d bytes)", targetPath, templatePath, srcInfo.Size())

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return fail("create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: src}); err != nil {
		return fail("copy", err)
	}
	if err := tmp.Chmod(srcInfo.Mode().Perm()); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fail("rename", err)
	}
	committed = true

	syncDir(dir)

	p.logger.Info("Provisioned database %s from template %s", targetPath, templatePath)
	return asdb.Provisioned, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// syncDir persists the rename on filesystems that need a directory fsync.
// Failures are ignored; not every platform can open a directory for syncing.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}

var _ asdb.Provisioner = (*FileProvisioner)(nil)
