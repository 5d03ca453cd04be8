package resource

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/ksyq12/sslvhost/internal/engine"
	"github.com/ksyq12/sslvhost/internal/errors"
	"github.com/ksyq12/sslvhost/internal/fetch"
	"github.com/ksyq12/sslvhost/internal/logger"
)

// Ensure is the desired presence of a resource.
type Ensure string

const (
	Present   Ensure = "present"
	Absent    Ensure = "absent"
	Directory Ensure = "directory"
)

// manageOwnership is true when the process can chown.
var manageOwnership = os.Geteuid() == 0

// SetManageOwnership overrides ownership enforcement and returns a function
// restoring the previous setting.
func SetManageOwnership(enabled bool) func() {
	prev := manageOwnership
	manageOwnership = enabled
	return func() { manageOwnership = prev }
}

// File manages a regular file or a directory.
//
// Content comes from at most one of Content, Source or CopyFrom. When none
// is set the content is not managed: the file must already exist (or be
// created by something else earlier in the run) and only its mode and
// ownership are enforced.
type File struct {
	Path   string
	Ensure Ensure

	Content  []byte
	Source   string
	CopyFrom string
	Fetcher  fetch.Fetcher

	Owner string
	Group string
	Mode  os.FileMode

	desired []byte
}

// ID implements engine.Resource.
func (f *File) ID() engine.ID {
	return engine.MakeID("File", f.Path)
}

func (f *File) managesContent() bool {
	return f.Content != nil || f.Source != "" || f.CopyFrom != ""
}

// Check implements engine.Resource.
func (f *File) Check(ctx context.Context) (string, error) {
	f.desired = nil
	info, err := os.Lstat(f.Path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", f.Path, err)
	}

	switch f.Ensure {
	case Absent:
		if exists {
			return "present, should be absent", nil
		}
		return "", nil

	case Directory:
		if !exists {
			return "directory missing", nil
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s exists and is not a directory", f.Path)
		}
		return f.attributeDrift(info)

	default:
		if exists && info.IsDir() {
			return "", fmt.Errorf("%s is a directory", f.Path)
		}
		if f.managesContent() {
			desired, err := f.loadContent(ctx)
			if err != nil {
				return "", err
			}
			f.desired = desired
			if !exists {
				return "file missing", nil
			}
			if desired == nil {
				// source not produced yet; Apply will report it
				return "content source missing", nil
			}
			current, err := os.ReadFile(f.Path)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", f.Path, err)
			}
			if !bytes.Equal(current, desired) {
				return "content changed", nil
			}
		} else if !exists {
			return "file missing", nil
		}
		return f.attributeDrift(info)
	}
}

// loadContent returns the desired bytes. A CopyFrom file that does not exist
// yet yields nil so that a noop run can still report on it.
func (f *File) loadContent(ctx context.Context) ([]byte, error) {
	switch {
	case f.Content != nil:
		return f.Content, nil
	case f.Source != "":
		fetcher := f.Fetcher
		if fetcher == nil {
			fetcher = fetch.New()
		}
		return fetcher.Fetch(ctx, f.Source)
	default:
		data, err := os.ReadFile(f.CopyFrom)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.CopyFrom, err)
		}
		return data, nil
	}
}

func (f *File) attributeDrift(info fs.FileInfo) (string, error) {
	if f.Mode != 0 && fileMode(info) != f.Mode {
		return fmt.Sprintf("mode %s should be %s", FormatMode(fileMode(info)), FormatMode(f.Mode)), nil
	}
	if !manageOwnership || (f.Owner == "" && f.Group == "") {
		return "", nil
	}
	uid, gid, err := lookupOwner(f.Owner, f.Group)
	if err != nil {
		return "", err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", nil
	}
	if uid >= 0 && int(st.Uid) != uid {
		return fmt.Sprintf("owner should be %s", f.Owner), nil
	}
	if gid >= 0 && int(st.Gid) != gid {
		return fmt.Sprintf("group should be %s", f.Group), nil
	}
	return "", nil
}

// Apply implements engine.Resource.
func (f *File) Apply(ctx context.Context) error {
	switch f.Ensure {
	case Absent:
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", f.Path, err)
		}
		return nil

	case Directory:
		mode := f.Mode
		if mode == 0 {
			mode = 0755
		}
		if err := os.MkdirAll(f.Path, mode.Perm()); err != nil {
			return fmt.Errorf("create directory %s: %w", f.Path, err)
		}
		return f.setAttributes(mode)

	default:
		if f.managesContent() {
			if f.desired == nil {
				desired, err := f.loadContent(ctx)
				if err != nil {
					return err
				}
				if desired == nil {
					return errors.Wrap(errors.ErrCodeResource, "content source missing", fmt.Errorf("%s", f.CopyFrom))
				}
				f.desired = desired
			}
			if err := writeAtomic(f.Path, f.desired); err != nil {
				return err
			}
		} else if _, err := os.Stat(f.Path); os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeResource, "file missing and its content is not managed", fmt.Errorf("%s", f.Path))
		}
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}
		return f.setAttributes(mode)
	}
}

func (f *File) setAttributes(mode os.FileMode) error {
	if err := os.Chmod(f.Path, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Path, err)
	}
	if f.Owner == "" && f.Group == "" {
		return nil
	}
	if !manageOwnership {
		logger.WarnFields("not running as root, ownership left unchanged", map[string]interface{}{
			"path":  f.Path,
			"owner": f.Owner,
			"group": f.Group,
		})
		return nil
	}
	uid, gid, err := lookupOwner(f.Owner, f.Group)
	if err != nil {
		return err
	}
	if err := os.Lchown(f.Path, uid, gid); err != nil {
		return fmt.Errorf("chown %s: %w", f.Path, err)
	}
	return nil
}

// fileMode returns the permission bits plus setuid, setgid and sticky.
func fileMode(info fs.FileInfo) os.FileMode {
	return info.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky)
}

// lookupOwner resolves names to ids; -1 leaves an id unchanged.
func lookupOwner(owner, group string) (int, int, error) {
	uid, gid := -1, -1
	if owner != "" {
		u, err := user.Lookup(owner)
		if err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeResource, "unknown user", err)
		}
		uid, _ = strconv.Atoi(u.Uid)
	}
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeResource, "unknown group", err)
		}
		gid, _ = strconv.Atoi(g.Gid)
	}
	return uid, gid, nil
}

// writeAtomic replaces path through a temporary file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
