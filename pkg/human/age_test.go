package human

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAge(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", Age(now))
	assert.Equal(t, "30s", Age(now.Add(-30*time.Second)))
	assert.Equal(t, "2m10s", Age(now.Add(-130*time.Second)))
	assert.Equal(t, "1h5m", Age(now.Add(-65*time.Minute)))
	assert.Equal(t, "2d3h", Age(now.Add(-51*time.Hour)))
}
