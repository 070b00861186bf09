package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperStage uppercases its input; it always applies.
type upperStage struct{}

func (upperStage) Name() string { return "upper" }

func (upperStage) Forward(data []byte, _ struct{}) ([]byte, bool, error) {
	return []byte(strings.ToUpper(string(data))), true, nil
}

func (upperStage) Reverse(data []byte, applied bool, _ struct{}) ([]byte, error) {
	if !applied {
		return data, nil
	}
	return []byte(strings.ToLower(string(data))), nil
}

// prefixStage prepends a marker, but only when the input is long enough
// to be worth marking; this models a stage that conditionally declines.
type prefixStage struct {
	threshold int
	marker    string
}

func (s prefixStage) Name() string { return "prefix" }

func (s prefixStage) Forward(data []byte, _ struct{}) ([]byte, bool, error) {
	if len(data) < s.threshold {
		return data, false, nil
	}
	return append([]byte(s.marker), data...), true, nil
}

func (s prefixStage) Reverse(data []byte, applied bool, _ struct{}) ([]byte, error) {
	if !applied {
		return data, nil
	}
	if !strings.HasPrefix(string(data), s.marker) {
		return nil, errors.New("missing marker")
	}
	return data[len(s.marker):], nil
}

func TestPipeline_ForwardReverse_RoundTrip(t *testing.T) {
	p := New[struct{}](prefixStage{threshold: 4, marker: ">>"}, upperStage{})

	out, applied, err := p.Forward([]byte("hello"), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte(">>HELLO"), out)
	assert.Equal(t, []bool{true, true}, applied)

	back, err := p.Reverse(out, applied, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), back)
}

func TestPipeline_StageDeclines_SkipsSymmetrically(t *testing.T) {
	p := New[struct{}](prefixStage{threshold: 10, marker: ">>"}, upperStage{})

	out, applied, err := p.Forward([]byte("hi"), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte("HI"), out)
	assert.Equal(t, []bool{false, true}, applied)

	back, err := p.Reverse(out, applied, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), back)
}

func TestPipeline_Reverse_AppliedLengthMismatch(t *testing.T) {
	p := New[struct{}](prefixStage{threshold: 1, marker: ">>"}, upperStage{})

	_, err := p.Reverse([]byte(">>HI"), []bool{true}, struct{}{})
	assert.Error(t, err)
}

func TestPipeline_EmptyPipeline_Identity(t *testing.T) {
	p := New[struct{}]()

	out, applied, err := p.Forward([]byte("unchanged"), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte("unchanged"), out)
	assert.Empty(t, applied)

	back, err := p.Reverse(out, applied, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte("unchanged"), back)
}
