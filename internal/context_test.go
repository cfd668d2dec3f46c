package internal

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequestContextDefault(t *testing.T) {
	def := RequestContext{"user_id": "fallback"}

	assert.Equal(t, def, GetRequestContext(context.Background(), def))
	assert.Nil(t, GetRequestContext(context.Background(), nil))
	assert.Equal(t, def, GetRequestContext(nil, def))
}

func TestSetRequestContextNesting(t *testing.T) {
	ctx1 := RequestContext{KeyUserID: "u1", KeyRunID: "r1"}
	ctx2 := RequestContext{KeyUserID: "u2", KeyAgentID: "a2"}

	c1, _ := SetRequestContext(context.Background(), ctx1)
	c2, token2 := SetRequestContext(c1, ctx2)
	assert.Equal(t, ctx2, GetRequestContext(c2, nil))

	restored := ResetRequestContext(token2)
	assert.Equal(t, ctx1, GetRequestContext(restored, nil))
}

func TestResetToEmpty(t *testing.T) {
	c, token := SetRequestContext(context.Background(), RequestContext{KeyUserID: "u"})
	require.NotNil(t, GetRequestContext(c, nil))

	restored := ResetRequestContext(token)
	assert.Nil(t, GetRequestContext(restored, nil))

	// zero token falls back to a fresh background context
	assert.Nil(t, GetRequestContext(ResetRequestContext(Token{}), nil))
}

func TestRequestContextIsolation(t *testing.T) {
	base := context.Background()
	var wg sync.WaitGroup
	errs := make(chan string, 200)

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx, _ := SetRequestContext(base, RequestContext{KeyUserID: "A"})
			for j := 0; j < 50; j++ {
				if got := GetRequestContext(ctx, nil)[KeyUserID]; got != "A" {
					errs <- fmt.Sprintf("path A observed %v", got)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			ctx, _ := SetRequestContext(base, RequestContext{KeyUserID: "B"})
			for j := 0; j < 50; j++ {
				if got := GetRequestContext(ctx, nil)[KeyUserID]; got != "B" {
					errs <- fmt.Sprintf("path B observed %v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
	assert.Nil(t, GetRequestContext(base, nil), "base context must stay untouched")
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}
