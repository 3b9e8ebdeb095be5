package model

import (
	"iter"
	"strings"
	"sync"
)

// StreamSource is the provider specific cursor behind a Stream. Next blocks
// until the next fragment is read from the transport. Close releases the
// underlying read handle and must be safe to call after exhaustion.
type StreamSource interface {
	Next() bool
	Fragment() string
	Err() error
	Close() error
}

// Stream is a lazy, finite, non-restartable sequence of decoded text
// fragments. The source is closed exactly once: when it is exhausted, when it
// fails, or when the consumer calls Close. A Stream is itself a StreamSource,
// so it can be wrapped.
//
// A Stream is meant for a single consumer goroutine.
type Stream struct {
	src  StreamSource
	cur  string
	err  error
	done bool

	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps a source.
func NewStream(src StreamSource) *Stream {
	return &Stream{src: src}
}

// Next advances to the next non-empty fragment. It returns false once the
// source is exhausted, failed or the stream was closed; the source has been
// released by then.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for s.src.Next() {
		if frag := s.src.Fragment(); frag != "" {
			s.cur = frag
			return true
		}
	}
	s.err = s.src.Err()
	s.cur = ""
	s.done = true
	s.release()
	return false
}

// Fragment returns the fragment read by the last successful Next.
func (s *Stream) Fragment() string { return s.cur }

// Err returns the transport error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// Close abandons the stream and releases the source. It is idempotent.
func (s *Stream) Close() error {
	s.done = true
	s.cur = ""
	s.release()
	return s.closeErr
}

func (s *Stream) release() {
	s.closeOnce.Do(func() {
		s.closeErr = s.src.Close()
	})
}

// Fragments exposes the stream as a range-over-func sequence. Breaking out of
// the loop closes the stream. A transport failure is yielded once as the
// final element with an empty fragment.
func (s *Stream) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.cur, nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield("", err)
		}
	}
}

// Collect drains the stream and returns the concatenated text.
func (s *Stream) Collect() (string, error) {
	var sb strings.Builder
	for frag, err := range s.Fragments() {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(frag)
	}
	return sb.String(), nil
}

// SliceSource replays a fixed list of fragments. It is used by MockModel and
// is handy in tests; OnClose, if set, runs when the source is released.
type SliceSource struct {
	fragments []string
	idx       int
	err       error
	OnClose   func()
}

// NewSliceSource creates a source yielding fragments in order, then failing
// with err if it is non-nil.
func NewSliceSource(err error, fragments ...string) *SliceSource {
	return &SliceSource{fragments: fragments, idx: -1, err: err}
}

// Next implements StreamSource.
func (s *SliceSource) Next() bool {
	if s.idx+1 >= len(s.fragments) {
		s.idx = len(s.fragments)
		return false
	}
	s.idx++
	return true
}

// Fragment implements StreamSource.
func (s *SliceSource) Fragment() string {
	if s.idx < 0 || s.idx >= len(s.fragments) {
		return ""
	}
	return s.fragments[s.idx]
}

// Err implements StreamSource.
func (s *SliceSource) Err() error {
	if s.idx >= len(s.fragments) {
		return s.err
	}
	return nil
}

// Close implements StreamSource.
func (s *SliceSource) Close() error {
	if s.OnClose != nil {
		s.OnClose()
	}
	return nil
}
