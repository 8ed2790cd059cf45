package slogx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stateName string

func (s stateName) String() string { return string(s) }

func TestAttrs(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, KeyConversationID, ConversationID("c1").Key)
	assert.Equal(t, "COMPLETED", State(stateName("COMPLETED")).Value.String())
	assert.Equal(t, "call_phone_number", Tool("call_phone_number").Value.String())
	assert.Equal(t, "raw", ByteString("body", []byte("raw")).Value.String())

	el := Elapsed(time.Now().Add(-2 * time.Second))
	assert.GreaterOrEqual(t, el.Value.Duration(), 2*time.Second)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("k", "short", 10).Value.String())
	assert.Equal(t, "héllo…", Truncate("k", "héllo world", 5).Value.String())
}
