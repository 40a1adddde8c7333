package preprocessing

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
)

// fakeEmbedder maps text to a deterministic vector and records inputs.
type fakeEmbedder struct {
	mu     sync.Mutex
	dims   int
	inputs []string
	err    error
	short  bool
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n := f.dims
	if f.short {
		n--
	}
	vec := make([]float32, n)
	for i := range vec {
		h := fnv.New32a()
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000) / 1000
	}
	return vec, nil
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return "fake-minilm" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func (f *fakeEmbedder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

// suffixStep appends its name to the text.
type suffixStep struct {
	name string
	err  error
}

func (s suffixStep) Name() string { return s.name }

func (s suffixStep) Process(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return strings.TrimSpace(text + " " + s.name), nil
}

var errStep = errors.New("step exploded")
