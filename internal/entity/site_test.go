package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSiteLastChecked(t *testing.T) {
	t.Parallel()

	site := &Site{Properties: map[string]string{PropLastChecked: "0"}}
	ts, ok := site.LastChecked()
	assert.True(t, ok)
	assert.True(t, ts.Equal(time.Unix(0, 0)))

	site.Properties[PropLastChecked] = "yesterday"
	_, ok = site.LastChecked()
	assert.False(t, ok)

	delete(site.Properties, PropLastChecked)
	_, ok = site.LastChecked()
	assert.False(t, ok)
}
