// Package endpoint implements the transport for agents that sit behind a
// plain HTTP endpoint instead of a provider SDK. Payloads are JSON encoded,
// responses are read either whole or chunk by chunk as a model.Stream.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/hupe1980/agentcore/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// HeadersFunc returns extra request headers. It is called once per request
// and its values override the defaults.
type HeadersFunc func() map[string]string

// DecodeFunc turns one decoded chunk of a streamed response into the text
// fragment handed to the consumer.
type DecodeFunc func(chunk string) (string, error)

// Options configure the endpoint client.
type Options struct {
	// HTTPClient performs the requests (default http.DefaultClient).
	HTTPClient *http.Client
	// Headers is merged over Content-Type: application/json.
	Headers HeadersFunc
	// ChunkSize bounds a single streamed read (default 4096).
	ChunkSize int
}

// Client posts JSON payloads to a single URL.
type Client struct {
	url  string
	opts Options
}

// New creates a client for url.
func New(url string, optFns ...func(o *Options)) *Client {
	opts := Options{
		HTTPClient: http.DefaultClient,
		ChunkSize:  4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 4096
	}
	return &Client{url: url, opts: opts}
}

// URL returns the target endpoint.
func (c *Client) URL() string { return c.url }

// Post sends payload and returns the complete response body as text.
func (c *Client) Post(ctx context.Context, payload any) (string, error) {
	resp, err := c.do(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(unicode.UTF8.NewDecoder().Reader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// PostStream sends payload and returns a stream over the response body. Each
// chunk goes through a stateful UTF-8 decoder before it is passed to decode,
// so multi-byte characters split across network reads stay intact.
// The body is closed when the stream ends, fails or is abandoned.
func (c *Client) PostStream(ctx context.Context, payload any, decode DecodeFunc) (*model.Stream, error) {
	resp, err := c.do(ctx, payload)
	if err != nil {
		return nil, err
	}

	// http.NoBody is an empty body, not a missing one: it yields no fragments.
	if resp.Body == nil {
		return nil, &model.TransportError{StatusCode: resp.StatusCode, NoBody: true}
	}

	if decode == nil {
		decode = func(chunk string) (string, error) { return chunk, nil }
	}

	return model.NewStream(&bodySource{
		body:    resp.Body,
		decoder: unicode.UTF8.NewDecoder(),
		buf:     make([]byte, c.opts.ChunkSize),
		decode:  decode,
	}), nil
}

func (c *Client) do(ctx context.Context, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.opts.Headers != nil {
		for k, v := range c.opts.Headers() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &model.TransportError{StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// bodySource reads decoded chunks from an HTTP response body. Bytes of an
// incomplete rune at the end of a read are carried over to the next one.
type bodySource struct {
	body    io.ReadCloser
	decoder transform.Transformer
	buf     []byte
	pending []byte
	decode  DecodeFunc

	cur  string
	err  error
	done bool
}

func (s *bodySource) Next() bool {
	for !s.done {
		n, err := s.body.Read(s.buf)
		s.pending = append(s.pending, s.buf[:n]...)
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = fmt.Errorf("read response body: %w", err)
			}
		}

		chunk, terr := s.decodeUTF8(s.done)
		if terr != nil {
			s.done = true
			s.err = fmt.Errorf("decode utf-8: %w", terr)
			return false
		}
		if chunk == "" {
			continue
		}

		frag, derr := s.decode(chunk)
		if derr != nil {
			s.done = true
			s.err = fmt.Errorf("decode chunk: %w", derr)
			return false
		}
		s.cur = frag
		return true
	}
	s.cur = ""
	return false
}

// decodeUTF8 decodes the complete runes of the pending bytes. Invalid sequences
// become U+FFFD, hence the output bound of three bytes per input byte.
func (s *bodySource) decodeUTF8(atEOF bool) (string, error) {
	if len(s.pending) == 0 {
		return "", nil
	}
	dst := make([]byte, 3*len(s.pending)+utf8.UTFMax)
	nDst, nSrc, err := s.decoder.Transform(dst, s.pending, atEOF)
	if err != nil && err != transform.ErrShortSrc {
		return "", err
	}
	s.pending = append(s.pending[:0], s.pending[nSrc:]...)
	return string(dst[:nDst]), nil
}

func (s *bodySource) Fragment() string { return s.cur }

func (s *bodySource) Err() error { return s.err }

func (s *bodySource) Close() error { return s.body.Close() }
