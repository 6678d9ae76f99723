// pre_processor.go implements the Oxy shader pre-processor. It scans shader source for @oxy:
// annotations and replaces each include with the resolved source, recursively. A name included
// more than once is emitted only the first time.
package shader

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// maxIncludeDepth bounds include nesting.
const maxIncludeDepth = 16

var (
	// ErrIncludeCycle is returned when an include reaches a file that is still being expanded.
	ErrIncludeCycle = errors.New("shader: include cycle")
	// ErrIncludeDepth is returned when includes nest deeper than maxIncludeDepth.
	ErrIncludeDepth = errors.New("shader: includes nested too deeply")
)

// Resolver returns the source of a named include.
type Resolver func(name string) (string, error)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	resolve Resolver

	// included records names emitted during the current Process call, in order.
	included []string
	// active is the include stack being expanded.
	active []string
}

// PreProcessor expands @oxy: annotations in shader source.
type PreProcessor interface {
	// Process expands every @oxy:include in source. Annotation lines are replaced by the included
	// source; all other lines pass through unchanged.
	//
	// Parameters:
	//   - source: the shader source containing annotations
	//
	// Returns:
	//   - string: the expanded source
	//   - error: a malformed annotation, a resolver error, a cycle or excessive nesting
	Process(source string) (string, error)

	// Includes returns the names expanded by the most recent Process call, in the order they were
	// emitted.
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that resolves includes with resolve.
//
// Parameters:
//   - resolve: returns the source of a named include
//
// Returns:
//   - PreProcessor: the ready pre-processor
func NewPreProcessor(resolve Resolver) PreProcessor {
	return &preProcessor{resolve: resolve}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	p.active = p.active[:0]

	var b strings.Builder
	if err := p.expand(&b, source, "<source>"); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (p *preProcessor) Includes() []string {
	out := make([]string, len(p.included))
	copy(out, p.included)
	return out
}

// expand writes source to b, recursing into includes.
func (p *preProcessor) expand(b *strings.Builder, source, name string) error {
	for i, line := range strings.Split(source, "\n") {
		a, ok, err := ParseAnnotation(line, i+1)
		if err != nil {
			return errors.Wrap(err, name)
		}
		if !ok {
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}

		inc := a.Args[0]
		if slices.Contains(p.active, inc) {
			return errors.Wrapf(ErrIncludeCycle, "%s -> %s", strings.Join(p.active, " -> "), inc)
		}
		if slices.Contains(p.included, inc) {
			continue
		}
		if len(p.active) >= maxIncludeDepth {
			return errors.Wrapf(ErrIncludeDepth, "%s: %s", name, inc)
		}

		src, err := p.resolve(inc)
		if err != nil {
			return errors.Wrapf(err, "%s: include %s", name, inc)
		}
		p.included = append(p.included, inc)
		p.active = append(p.active, inc)
		if err := p.expand(b, src, inc); err != nil {
			return err
		}
		p.active = p.active[:len(p.active)-1]
	}
	return nil
}

