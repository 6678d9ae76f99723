package shader

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapResolver(files map[string]string) Resolver {
	return func(name string) (string, error) {
		src, ok := files[name]
		if !ok {
			return "", errors.Errorf("no file %q", name)
		}
		return src, nil
	}
}

func TestParseAnnotation(t *testing.T) {
	a, ok, err := ParseAnnotation("  // @oxy:include lighting", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, AnnotationTypeInclude, a.Type)
	assert.Equal(t, []string{"lighting"}, a.Args)
	assert.Equal(t, 3, a.Line)

	_, ok, err = ParseAnnotation("// plain comment", 1)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseAnnotation("vec3 x; //@oxy:include blocks", 1)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseAnnotation("//@oxy:group 0 0", 1)
	assert.True(t, ok)
	assert.True(t, errors.Is(err, ErrMalformedAnnotation))

	_, _, err = ParseAnnotation("//@oxy:include a b", 1)
	assert.True(t, errors.Is(err, ErrMalformedAnnotation))
}

func TestProcessExpandsIncludesOnce(t *testing.T) {
	pp := NewPreProcessor(mapResolver(map[string]string{
		"blocks":   "struct Frame {};",
		"lighting": "//@oxy:include blocks\nfn shade() {}",
	}))

	out, err := pp.Process("//@oxy:include blocks\n//@oxy:include lighting\nfn main() {}")
	require.NoError(t, err)
	assert.Equal(t, "struct Frame {};\nfn shade() {}\nfn main() {}\n", out)
	assert.Equal(t, []string{"blocks", "lighting"}, pp.Includes())

	out, err = pp.Process("fn main() {}")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", out)
	assert.Empty(t, pp.Includes())
}

func TestProcessErrors(t *testing.T) {
	pp := NewPreProcessor(mapResolver(map[string]string{
		"a": "//@oxy:include b",
		"b": "//@oxy:include a",
	}))
	_, err := pp.Process("//@oxy:include a")
	assert.True(t, errors.Is(err, ErrIncludeCycle))

	_, err = pp.Process("//@oxy:include missing")
	assert.Error(t, err)

	_, err = pp.Process("//@oxy:bogus")
	assert.True(t, errors.Is(err, ErrMalformedAnnotation))

	deep := map[string]string{}
	for i := 0; i <= maxIncludeDepth; i++ {
		deep[string(rune('a'+i))] = "//@oxy:include " + string(rune('a'+i+1))
	}
	_, err = NewPreProcessor(mapResolver(deep)).Process("//@oxy:include a")
	assert.True(t, errors.Is(err, ErrIncludeDepth))
}
