package vzipfs

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/vzip/util"
	"github.com/dendrascience/vzip/vzip"
)

const rootInode = 1

// FS implements a read-only FUSE filesystem over one archive.
type FS struct {
	ArchivePath string
	archive     *os.File
	codec       vzip.Codec
	modified    time.Time
	files       []*File
	byName      map[string]*File
}

// Open indexes the archive at archivePath. ext names records when no
// manifest sidecar exists.
func Open(archivePath string, codec vzip.Codec, ext string) (*FS, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	index, err := vzip.ScanIndex(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", archivePath, err)
	}

	filesystem := &FS{
		ArchivePath: archivePath,
		archive:     f,
		codec:       codec,
		modified:    info.ModTime(),
		byName:      make(map[string]*File, len(index)),
	}

	names, manifest := util.FrameNames(archivePath, len(index), ext)

	inodes := util.NewInodeAllocator(rootInode)
	for i, entry := range index {
		file := &File{
			fs:    filesystem,
			entry: entry,
			name:  names[i],
			inode: inodes.Next(),
			size:  -1,
		}
		if manifest != nil {
			if fe, err := manifest.Get(i); err == nil {
				file.size = int64(fe.ReadBytes)
			}
		}
		if _, dup := filesystem.byName[file.name]; dup {
			f.Close()
			return nil, fmt.Errorf("duplicate frame name %q in %s", file.name, archivePath)
		}
		filesystem.files = append(filesystem.files, file)
		filesystem.byName[file.name] = file
	}
	return filesystem, nil
}

// Close releases the archive file.
func (filesystem *FS) Close() error {
	return filesystem.archive.Close()
}

// Len returns the number of records exposed.
func (filesystem *FS) Len() int {
	return len(filesystem.files)
}

func (filesystem *FS) Root() (fs.Node, error) {
	return &Dir{fs: filesystem}, nil
}

// Dir is the flat root directory holding one file per record.
type Dir struct {
	fs *FS
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = rootInode
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fs.modified
	a.Ctime = d.fs.modified
	a.Atime = time.Now()
	return nil
}

// Lookup resolves a frame name to its file node
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	file, ok := d.fs.byName[name]
	if !ok {
		return nil, fuse.ENOENT
	}
	return file, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirents := make([]fuse.Dirent, 0, len(d.fs.files))
	for _, f := range d.fs.files {
		dirents = append(dirents, fuse.Dirent{
			Inode: f.inode,
			Name:  f.name,
			Type:  fuse.DT_File,
		})
	}
	return dirents, nil
}

// File is one decompressed record.
type File struct {
	fs    *FS
	entry vzip.IndexEntry
	name  string
	inode uint64
	size  int64  // decompressed size, -1 until known
	data  []byte // cached content
	mu    sync.Mutex
}

// Attr returns file attributes. Without a manifest the size is only known
// after decompressing the record once.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size < 0 {
		if _, err := f.load(); err != nil {
			return err
		}
	}
	a.Inode = f.inode
	a.Mode = 0o444
	a.Size = uint64(f.size)
	a.Mtime = f.fs.modified
	a.Ctime = f.fs.modified
	a.Atime = time.Now()
	return nil
}

// ReadAll returns the decompressed record
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// load decompresses the record on first use. f.mu must be held.
func (f *File) load() ([]byte, error) {
	if f.data != nil {
		return f.data, nil
	}
	payload, err := vzip.ReadPayload(f.fs.archive, f.entry)
	if err != nil {
		return nil, err
	}
	data, err := f.fs.codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", f.name, err)
	}
	if data == nil {
		data = []byte{}
	}
	f.data = data
	f.size = int64(len(data))
	return data, nil
}
