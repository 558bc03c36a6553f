// Package fingerprint computes blake2b tree digests for build artifacts.
//
// Archives are chunked in fixed size leaves hashed by a small worker pool,
// then the leaf digests are folded into a single root digest. The digest of
// an archive is stable across runs for identical bytes.
package fingerprint

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"

	units "github.com/docker/go-units"
	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"
)

type chunkInput struct {
	part       int
	partBuffer []byte
	lastChunk  bool
	leafSize   uint32
}

type chunkOutput struct {
	digest []byte
	part   int
	err    error
}

// Option customizes a Maker
type Option func(*Maker)

// LeafSize overrides the default 5MB leaf size. The leaf size is carried
// in the blake2b tree config as a uint32: non-positive values are ignored
// and values beyond 4GiB are capped rather than silently truncated.
func LeafSize(sz int64) Option {
	return func(m *Maker) {
		if sz <= 0 {
			return
		}
		if sz > math.MaxUint32 {
			sz = math.MaxUint32
		}
		m.leafSize = uint32(sz)
	}
}

// NumberOfWorkers overrides the default worker pool size
func NumberOfWorkers(no int) Option {
	return func(m *Maker) {
		m.numberOfWorkers = no
	}
}

// Size sets the inner hash size in bytes
func Size(sz uint8) Option {
	return func(m *Maker) {
		m.size = sz
	}
}

// WithFs sets the filesystem paths are resolved against
func WithFs(fs afero.Fs) Option {
	return func(m *Maker) {
		m.fs = fs
	}
}

// New builds a digest Maker
func New(opts ...Option) *Maker {
	m := &Maker{
		fs:              afero.NewOsFs(),
		leafSize:        uint32(5 * units.MB),
		numberOfWorkers: runtime.NumCPU(),
		size:            64,
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes tree digests over files
type Maker struct {
	fs              afero.Fs
	size            uint8
	leafSize        uint32
	numberOfWorkers int
}

// Process computes the digest of the file at path
func (m *Maker) Process(path string) ([]byte, error) {
	r, size, err := m.openPath(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return m.process(r, size)
}

func (m *Maker) process(r io.Reader, size int64) (digest []byte, err error) {
	var wg sync.WaitGroup
	chunks := make(chan chunkInput)
	results := make(chan chunkOutput)

	for i := 0; i < m.numberOfWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.processChunk(chunks, results)
		}()
	}

	go func() {
		defer close(chunks)
		for part, totalSize := 0, int64(0); ; part++ {
			partBuffer := make([]byte, m.leafSize)
			n, e := io.ReadFull(r, partBuffer)
			if e != nil && e != io.EOF && e != io.ErrUnexpectedEOF {
				results <- chunkOutput{part: part, err: e}
				return
			}
			partBuffer = partBuffer[:n]

			totalSize += int64(n)
			lastChunk := uint32(n) < m.leafSize || uint32(n) == m.leafSize && totalSize == size

			chunks <- chunkInput{part: part, partBuffer: partBuffer, lastChunk: lastChunk, leafSize: m.leafSize}

			if lastChunk {
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// leaf digests arrive out of order, index them by part number
	digestHash := make(map[int][]byte)
	for res := range results {
		if res.err != nil {
			err = res.err
			continue
		}
		digestHash[res.part] = res.digest
	}
	if err != nil {
		return nil, err
	}

	sz := int(m.size)
	b := make([]byte, len(digestHash)*sz)
	for index, val := range digestHash {
		offset := sz * index
		copy(b[offset:offset+sz], val)
	}

	rootBlake, err := blake2b.New(&blake2b.Config{
		Size: blake2b.Size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    0,
			NodeDepth:     1,
			InnerHashSize: m.size,
			IsLastNode:    true,
		},
	})
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(rootBlake, bytes.NewBuffer(b)); err != nil {
		return nil, err
	}
	return rootBlake.Sum(nil), nil
}

func (m *Maker) openPath(path string) (io.ReadCloser, int64, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

func (m *Maker) processChunk(rx <-chan chunkInput, tx chan<- chunkOutput) {
	for c := range rx {
		blake, err := blake2b.New(&blake2b.Config{
			Size: blake2b.Size,
			Tree: &blake2b.Tree{
				Fanout:        0,
				MaxDepth:      2,
				LeafSize:      c.leafSize,
				NodeOffset:    uint64(c.part),
				NodeDepth:     0,
				InnerHashSize: m.size,
				IsLastNode:    c.lastChunk,
			},
		})
		if err != nil {
			tx <- chunkOutput{part: c.part, err: fmt.Errorf("create hash for part %d: %v", c.part, err)}
			continue
		}

		if _, err = io.Copy(blake, bytes.NewBuffer(c.partBuffer)); err != nil {
			tx <- chunkOutput{part: c.part, err: fmt.Errorf("hash part %d: %v", c.part, err)}
			continue
		}
		tx <- chunkOutput{digest: blake.Sum(nil), part: c.part}
	}
}
