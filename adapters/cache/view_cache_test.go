package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "view:/:idp_1", Key("/", "idp_1"))
	assert.NotEqual(t, Key("/", "a"), Key("/", "b"))
}
