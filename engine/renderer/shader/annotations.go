// annotations.go defines the annotation types and parser for the Oxy shader pre-processor.
// Annotations are single-line comments prefixed with @oxy: and are valid in both GLSL and WGSL
// sources, since both languages share the // comment syntax.
package shader

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// ErrMalformedAnnotation is returned for an @oxy: line with an unknown type or the wrong arguments.
var ErrMalformedAnnotation = errors.New("shader: malformed annotation")

// AnnotationType identifies the kind of annotation parsed from a comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the named shared source file at the annotation site.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include lighting
	AnnotationTypeInclude AnnotationType = "include"
)

// annotationArity is the number of arguments each annotation type takes.
var annotationArity = map[AnnotationType]int{
	AnnotationTypeInclude: 1,
}

// Annotation is one parsed @oxy: line.
type Annotation struct {
	// Type is the annotation kind.
	Type AnnotationType

	// Args are the whitespace-separated arguments after the type.
	Args []string

	// Line is the 1-based source line the annotation was found on.
	Line int
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s%s %s (line %d)", annotationPrefix, a.Type, strings.Join(a.Args, " "), a.Line)
}

// ParseAnnotation parses one source line. Lines that are not @oxy: comments are reported as not
// being annotations, with no error.
//
// Parameters:
//   - line: the source line, leading whitespace allowed
//   - lineNumber: the 1-based line number recorded on the annotation
//
// Returns:
//   - Annotation: the parsed annotation
//   - bool: true if the line is an annotation
//   - error: ErrMalformedAnnotation for an unknown type or wrong argument count
func ParseAnnotation(line string, lineNumber int) (Annotation, bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return Annotation{}, false, nil
	}
	body := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
	if !strings.HasPrefix(body, annotationPrefix) {
		return Annotation{}, false, nil
	}

	fields := strings.Fields(strings.TrimPrefix(body, annotationPrefix))
	if len(fields) == 0 {
		return Annotation{}, true, errors.Wrapf(ErrMalformedAnnotation, "line %d: empty annotation", lineNumber)
	}
	a := Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNumber}

	arity, ok := annotationArity[a.Type]
	if !ok {
		return a, true, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown type %q", lineNumber, a.Type)
	}
	if len(a.Args) != arity {
		return a, true, errors.Wrapf(ErrMalformedAnnotation, "line %d: %s takes %d argument(s), got %d",
			lineNumber, a.Type, arity, len(a.Args))
	}
	return a, true, nil
}
