package runtime

import (
	"io"
	"strings"
	"sync"
)

// TemplateStream yields rendered fragments while the template is still
// running. Unlike Render, fragments written before a failure have already
// been delivered when the error surfaces.
type TemplateStream struct {
	chunks chan streamChunk
	done   chan struct{}
	once   sync.Once
}

type streamChunk struct {
	text string
	err  error
}

// Stream starts rendering t in a goroutine. Callers must drain the stream
// with Next, Collect or WriteTo, or release it with Close.
func (t *Template) Stream(vars map[string]interface{}) *TemplateStream {
	s := &TemplateStream{
		chunks: make(chan streamChunk, 1),
		done:   make(chan struct{}),
	}

	ctx, err := t.newRenderContext(vars)
	if err != nil {
		go s.finish(err)
		return s
	}

	go func() {
		info := NewRuntimeInfo(t.config, t.Name())
		err := t.run(ctx, s.emit, info)
		if err != nil {
			t.config.Logger().Debug("stream failed", "template", t.Name(), "error", err)
		}
		s.finish(err)
	}()
	return s
}

func (s *TemplateStream) emit(text string) {
	if text == "" {
		return
	}
	select {
	case s.chunks <- streamChunk{text: text}:
	case <-s.done:
	}
}

func (s *TemplateStream) finish(err error) {
	if err != nil {
		select {
		case s.chunks <- streamChunk{err: err}:
		case <-s.done:
		}
	}
	close(s.chunks)
}

// Next returns the next fragment. io.EOF marks the end of a successful
// render; any other error is the render failure.
func (s *TemplateStream) Next() (string, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return "", io.EOF
	}
	if chunk.err != nil {
		return "", chunk.err
	}
	return chunk.text, nil
}

// Collect concatenates the remaining fragments.
func (s *TemplateStream) Collect() (string, error) {
	var b strings.Builder
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
}

// WriteTo copies the remaining fragments to w as they arrive.
func (s *TemplateStream) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := io.WriteString(w, chunk)
		written += int64(n)
		if err != nil {
			s.Close()
			return written, err
		}
	}
}

// Close abandons the stream. The render goroutine finishes without
// delivering further fragments.
func (s *TemplateStream) Close() {
	s.once.Do(func() { close(s.done) })
}
