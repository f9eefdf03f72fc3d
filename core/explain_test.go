package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jiayuqiu/sisi-mcp/internal/explaincache"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// mockChatClient is a mock implementation of ChatClient for testing.
type mockChatClient struct {
	mock.Mock
}

func (m *mockChatClient) Ask(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

// TestExplainChain runs the two-step chain for one event and checks the
// search output is forwarded verbatim and the think block is stripped.
func TestExplainChain(t *testing.T) {
	search := &mockChatClient{}
	rephrase := &mockChatClient{}
	event := schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"}

	search.On("Ask", mock.Anything, mock.MatchedBy(func(q string) bool {
		return q != ""
	})).Return("raw weather and news text", nil).Once()
	rephrase.On("Ask", mock.Anything, "raw weather and news text").
		Return("<think>reasoning</think>红海袭击导致绕行。", nil).Once()

	e := &Explainer{Search: search, Rephrase: rephrase}
	text, err := e.Explain(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, "红海袭击导致绕行。", text)

	search.AssertExpectations(t)
	rephrase.AssertExpectations(t)
}

// TestExplainPromptMentionsEvent checks the search question embeds the
// formatted date and the channel name.
func TestExplainPromptMentionsEvent(t *testing.T) {
	search := &mockChatClient{}
	rephrase := &mockChatClient{}

	var question string
	search.On("Ask", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { question = args.String(1) }).
		Return("raw", nil)
	rephrase.On("Ask", mock.Anything, "raw").Return("summary", nil)

	e := &Explainer{Search: search, Rephrase: rephrase}
	_, err := e.Explain(context.Background(), schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"})
	require.NoError(t, err)
	assert.Contains(t, question, "2023-12-31")
	assert.Contains(t, question, "曼德海峡")
}

// TestExplainErrors propagates upstream failures without retrying.
func TestExplainErrors(t *testing.T) {
	t.Run("search fails", func(t *testing.T) {
		search := &mockChatClient{}
		search.On("Ask", mock.Anything, mock.Anything).
			Return("", schema.ErrUpstreamService).Once()

		e := &Explainer{Search: search, Rephrase: &mockChatClient{}}
		_, err := e.Explain(context.Background(), schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"})
		assert.ErrorIs(t, err, schema.ErrUpstreamService)
		search.AssertExpectations(t)
	})

	t.Run("rephrase fails", func(t *testing.T) {
		search := &mockChatClient{}
		rephrase := &mockChatClient{}
		search.On("Ask", mock.Anything, mock.Anything).Return("raw", nil).Once()
		rephrase.On("Ask", mock.Anything, "raw").
			Return("", schema.ErrMalformedUpstreamResponse).Once()

		e := &Explainer{Search: search, Rephrase: rephrase}
		_, err := e.Explain(context.Background(), schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"})
		assert.ErrorIs(t, err, schema.ErrMalformedUpstreamResponse)
	})
}

// TestExplainCacheHitSkipsChain serves a cached answer without touching
// either chat service.
func TestExplainCacheHitSkipsChain(t *testing.T) {
	cache := &explaincache.MockExplainCache{}
	cache.On("Get", mock.Anything, "曼德海峡", 20231231).Return("cached text", true, nil).Once()

	e := &Explainer{Search: &mockChatClient{}, Rephrase: &mockChatClient{}, Cache: cache}
	text, err := e.Explain(context.Background(), schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"})
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)
	cache.AssertExpectations(t)
}

// TestExplainCacheMissStoresResult writes the chain output back on a miss.
func TestExplainCacheMissStoresResult(t *testing.T) {
	search := &mockChatClient{}
	rephrase := &mockChatClient{}
	cache := &explaincache.MockExplainCache{}

	cache.On("Get", mock.Anything, "曼德海峡", 20231231).Return("", false, nil).Once()
	search.On("Ask", mock.Anything, mock.Anything).Return("raw", nil).Once()
	rephrase.On("Ask", mock.Anything, "raw").Return("summary", nil).Once()
	cache.On("Set", mock.Anything, "曼德海峡", 20231231, "summary").Return(nil).Once()

	e := &Explainer{Search: search, Rephrase: rephrase, Cache: cache}
	text, err := e.Explain(context.Background(), schema.CongestionEvent{DateID: 20231231, PipeName: "曼德海峡"})
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
	cache.AssertExpectations(t)
}

// TestExplainEvents checks only the most recent event is explained by
// default, and that explain-all covers every event.
func TestExplainEvents(t *testing.T) {
	events := []schema.CongestionEvent{
		{DateID: 20231110, PipeName: "曼德海峡"},
		{DateID: 20231231, PipeName: "曼德海峡"},
	}

	t.Run("last only", func(t *testing.T) {
		search := &mockChatClient{}
		rephrase := &mockChatClient{}
		search.On("Ask", mock.Anything, mock.Anything).Return("raw", nil).Once()
		rephrase.On("Ask", mock.Anything, "raw").Return("latest summary", nil).Once()

		e := &Explainer{Search: search, Rephrase: rephrase}
		records, err := e.ExplainEvents(context.Background(), events, false)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Empty(t, records[0].Detection)
		assert.Equal(t, "latest summary", records[1].Detection)
		assert.Equal(t, 20231110, records[0].DateID)
		search.AssertExpectations(t)
	})

	t.Run("explain all", func(t *testing.T) {
		search := &mockChatClient{}
		rephrase := &mockChatClient{}
		search.On("Ask", mock.Anything, mock.Anything).Return("raw", nil).Twice()
		rephrase.On("Ask", mock.Anything, "raw").Return("summary", nil).Twice()

		e := &Explainer{Search: search, Rephrase: rephrase}
		records, err := e.ExplainEvents(context.Background(), events, true)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "summary", records[0].Detection)
		assert.Equal(t, "summary", records[1].Detection)
		search.AssertExpectations(t)
	})

	t.Run("no events", func(t *testing.T) {
		e := &Explainer{Search: &mockChatClient{}, Rephrase: &mockChatClient{}}
		records, err := e.ExplainEvents(context.Background(), nil, false)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

// TestExplainEventsPropagatesError stops the run on the first failure.
func TestExplainEventsPropagatesError(t *testing.T) {
	search := &mockChatClient{}
	search.On("Ask", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()

	e := &Explainer{Search: search, Rephrase: &mockChatClient{}}
	_, err := e.ExplainEvents(context.Background(), []schema.CongestionEvent{{DateID: 20231231, PipeName: "曼德海峡"}}, false)
	assert.Error(t, err)
}
