package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeduper_Seen(t *testing.T) {
	d := New(time.Minute, 10)
	assert.False(t, d.Seen("a"))
	assert.True(t, d.Seen("a"))
	assert.False(t, d.Seen("b"))
	assert.False(t, d.Seen(""))
	assert.False(t, d.Seen(""))
}

func TestDeduper_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	d := New(time.Minute, 10)
	d.now = func() time.Time { return now }

	assert.True(t, d.ShouldProcess("a"))
	now = now.Add(30 * time.Second)
	assert.False(t, d.ShouldProcess("a"))
	now = now.Add(2 * time.Minute)
	assert.True(t, d.ShouldProcess("a"))
}

func TestDeduper_Cap(t *testing.T) {
	d := New(time.Hour, 5)
	for i := 0; i < 50; i++ {
		d.Seen(fmt.Sprintf("k%d", i))
	}
	assert.LessOrEqual(t, d.Len(), 5)
}

func TestPayloadKey(t *testing.T) {
	assert.Equal(t, PayloadKey([]byte(`{"irrigation":true}`)), PayloadKey([]byte(`{"irrigation":true}`)))
	assert.NotEqual(t, PayloadKey([]byte(`{"irrigation":true}`)), PayloadKey([]byte(`{"irrigation":false}`)))
}
