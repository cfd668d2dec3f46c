package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseValue(t *testing.T) {
	var nilResp *Response
	assert.Nil(t, nilResp.Value())
	assert.False(t, nilResp.IsStructured())

	text := TextResponse(`{"facts": []}`)
	assert.Equal(t, `{"facts": []}`, text.Value())
	assert.False(t, text.IsStructured())

	m := map[string]interface{}{"memory": []interface{}{}}
	structured := StructuredResponse(m)
	assert.Equal(t, m, structured.Value())
	assert.True(t, structured.IsStructured())
}

func TestEffectiveToolChoice(t *testing.T) {
	assert.Equal(t, "auto", GenerateOptions{}.EffectiveToolChoice())
	assert.Equal(t, "required", GenerateOptions{ToolChoice: "required"}.EffectiveToolChoice())
}
