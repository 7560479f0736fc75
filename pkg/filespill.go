// Package pkg provides utilities shared by the sosie commands.
package pkg

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// FileSpill keeps an append-only list of items on disk instead of in memory.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
}

const frameHeaderSize = 8

// fileSpill stores every item as its own gob frame prefixed by its length, so
// Get can seek straight to an item through the offsets index.
type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	offsets []int64
	size    int64
	closed  bool
}

// NewFileSpill creates a spill file in dir. An empty dir uses the system temp dir.
func NewFileSpill[T any](dir string) (FileSpill[T], error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "spill-*.gob")
	if err != nil {
		slog.Error("failed to create spill file", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("created filespill", "path", file.Name())

	return &fileSpill[T]{path: file.Name(), file: file}, nil
}

// Len implements FileSpill.
func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return uint64(len(f.offsets))
}

// Path implements FileSpill.
func (f *fileSpill[T]) Path() string {
	return f.path
}

// Append implements FileSpill.
func (f *fileSpill[T]) Append(item T) error {
	var frame bytes.Buffer

	frame.Write(make([]byte, frameHeaderSize))

	if err := gob.NewEncoder(&frame).Encode(item); err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}

	data := frame.Bytes()
	binary.BigEndian.PutUint64(data[:frameHeaderSize], uint64(len(data)-frameHeaderSize))

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("append to closed spill %s", f.path)
	}

	if _, err := f.file.WriteAt(data, f.size); err != nil {
		slog.Error("failed to write item", "path", f.path, "index", len(f.offsets), "error", err)
		return fmt.Errorf("failed to write item: %w", err)
	}

	f.offsets = append(f.offsets, f.size)
	f.size += int64(len(data))

	return nil
}

// AppendBatch implements FileSpill.
func (f *fileSpill[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := f.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Get implements FileSpill.
func (f *fileSpill[T]) Get(index uint64) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T

	if index >= uint64(len(f.offsets)) {
		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, len(f.offsets))
	}

	reader, closeFn, err := f.reader()
	if err != nil {
		return zero, err
	}
	defer closeFn()

	return readFrame[T](reader, f.offsets[index])
}

// Range implements FileSpill.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	reader, closeFn, err := f.reader()
	if err != nil {
		return err
	}
	defer closeFn()

	for i, offset := range f.offsets {
		item, err := readFrame[T](reader, offset)
		if err != nil {
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(uint64(i), item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements FileSpill. Items stay readable after Close.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close spill", "path", f.path, "error", err)
		return err
	}

	slog.Debug("closed filespill", "path", f.path, "length", len(f.offsets))

	return nil
}

// reader returns the open file, or reopens it read-only once closed.
func (f *fileSpill[T]) reader() (io.ReaderAt, func(), error) {
	if !f.closed {
		return f.file, func() {}, nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spill: %w", err)
	}

	return file, func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spill reader", "path", f.path, "error", err)
		}
	}, nil
}

func readFrame[T any](r io.ReaderAt, offset int64) (T, error) {
	var (
		item   T
		header [frameHeaderSize]byte
	)

	if _, err := r.ReadAt(header[:], offset); err != nil {
		return item, fmt.Errorf("read frame header: %w", err)
	}

	length := int64(binary.BigEndian.Uint64(header[:]))
	section := io.NewSectionReader(r, offset+frameHeaderSize, length)

	if err := gob.NewDecoder(section).Decode(&item); err != nil {
		return item, fmt.Errorf("decode frame: %w", err)
	}

	return item, nil
}
