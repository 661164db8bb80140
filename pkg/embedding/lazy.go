package embedding

import "sync"

// LazyProvider defers construction of the underlying provider until the first
// Generate call. Concurrent first calls collapse into a single initialization
// (sync.Once); a failed initialization is sticky and reported to every caller.
type LazyProvider struct {
	once     sync.Once
	initFn   func() (EmbeddingProvider, error)
	provider EmbeddingProvider
	initErr  error
}

func NewLazyProvider(initFn func() (EmbeddingProvider, error)) *LazyProvider {
	return &LazyProvider{initFn: initFn}
}

func (l *LazyProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	l.once.Do(func() {
		l.provider, l.initErr = l.initFn()
	})
	if l.initErr != nil {
		return nil, l.initErr
	}
	return l.provider.Generate(text, taskType)
}
