package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConstants(t *testing.T) {
	assert.Equal(t, "studentliving", AppName)
	assert.Equal(t, "studentliving", CommandName)
}
