package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMD5(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", CalculateMD5(nil), "空内容的MD5")
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", CalculateMD5([]byte("abc")))
}

func TestConvertArrayToJSON(t *testing.T) {
	assert.Equal(t, "[]", string(ConvertArrayToJSON(nil)))
	assert.Equal(t, `["name","email"]`, string(ConvertArrayToJSON([]string{"name", "email"})))
}
