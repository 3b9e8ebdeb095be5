package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	*SliceSource
	closes int
}

func (c *countingSource) Close() error {
	c.closes++
	return c.SliceSource.Close()
}

func newCountingSource(err error, fragments ...string) *countingSource {
	return &countingSource{SliceSource: NewSliceSource(err, fragments...)}
}

func TestStreamCollect(t *testing.T) {
	src := newCountingSource(nil, "Hel", "", "lo")
	s := NewStream(src)

	text, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	assert.Equal(t, 1, src.closes)
}

func TestStreamReleasesOnExhaustion(t *testing.T) {
	src := newCountingSource(nil, "a")
	s := NewStream(src)

	require.True(t, s.Next())
	assert.Equal(t, "a", s.Fragment())
	assert.Equal(t, 0, src.closes)

	assert.False(t, s.Next())
	assert.Equal(t, 1, src.closes)

	// not restartable, no double release
	assert.False(t, s.Next())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, src.closes)
}

func TestStreamReleasesOnAbandon(t *testing.T) {
	src := newCountingSource(nil, "one", "two", "three")
	s := NewStream(src)

	for frag, err := range s.Fragments() {
		require.NoError(t, err)
		assert.Equal(t, "one", frag)
		break
	}

	assert.Equal(t, 1, src.closes)
	assert.False(t, s.Next())
}

func TestStreamReleasesOnError(t *testing.T) {
	boom := errors.New("connection reset")
	src := newCountingSource(boom, "partial")
	s := NewStream(src)

	text, err := s.Collect()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", text)
	assert.Equal(t, 1, src.closes)
}

func TestStreamIsASource(t *testing.T) {
	inner := newCountingSource(nil, "x", "y")
	outer := NewStream(NewStream(inner))

	text, err := outer.Collect()
	require.NoError(t, err)
	assert.Equal(t, "xy", text)
	assert.Equal(t, 1, inner.closes)
}

func TestMockModelStreamingMatchesSingleResponse(t *testing.T) {
	const answer = "Grüße aus Köln 👋"
	llm := NewMockModel("mock", core.NewAssistantText(answer), core.NewAssistantText(answer))

	msg, err := llm.Converse(context.Background(), Request{})
	require.NoError(t, err)

	s, err := llm.ConverseStream(context.Background(), Request{})
	require.NoError(t, err)
	streamed, err := s.Collect()
	require.NoError(t, err)

	assert.Equal(t, msg.Text(), streamed)
	assert.Equal(t, 1, llm.ClosedStreams())
	assert.Equal(t, 2, llm.Calls())
}

func TestMockModelRepeatsLastAndRecordsRequests(t *testing.T) {
	llm := NewMockModel("mock", core.NewAssistantText("first"), core.NewAssistantText("last"))
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		msg, err := llm.Converse(ctx, Request{Messages: []core.Message{core.NewUserText("q")}})
		require.NoError(t, err)
		got = append(got, msg.Text())
	}

	assert.Equal(t, []string{"first", "last", "last"}, got)
	require.Len(t, llm.Requests(), 3)
	assert.Equal(t, "q", llm.Requests()[0].Messages[0].Text())
}

func TestMockModelEmptyScript(t *testing.T) {
	_, err := NewMockModel("mock").Converse(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestTransportError(t *testing.T) {
	cause := errors.New("upstream")
	err := error(&TransportError{StatusCode: 500, Err: cause})

	te, ok := IsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, 500, te.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transport error: HTTP status 500: upstream", err.Error())

	assert.Equal(t, "transport error: response body is missing", (&TransportError{NoBody: true}).Error())
}
