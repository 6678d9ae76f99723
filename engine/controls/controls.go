// package controls maps key presses onto the demo's tunable parameters. It stands in for a settings
// panel: Tab/Shift+Tab selects a parameter, Up and Down nudge it within its range, and single keys
// toggle the post effect, the light orbs and reset the camera.
package controls

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
)

// Targets are the values the controls edit. Nil fields are left out of the parameter list.
type Targets struct {
	Material      *material.Material
	Light         *light.Directional
	Shadow        *light.Shadow
	Aberration    *postfx.ChromaticAberration
	ShowLightOrbs *bool
	ResetCamera   func()
}

// parameter is one adjustable float with its allowed range.
type parameter struct {
	name  string
	value *float32
	rng   common.Range
}

// controls is the implementation of the Controls interface.
type controls struct {
	mu *sync.Mutex

	targets      Targets
	params       []parameter
	selected     int
	stepFraction float32
	shift        bool
	verbose      bool
}

// Controls applies key presses to a set of Targets.
type Controls interface {
	// HandleKey applies one key press.
	//
	// Parameters:
	//   - key: a key code from common/key_codes.go
	//
	// Returns:
	//   - bool: true if the key is bound
	HandleKey(key int) bool

	// SetShift records whether a shift key is held; Tab then selects the previous parameter and
	// Up/Down move ten times further.
	SetShift(held bool)

	// Selected returns the name of the parameter Up and Down adjust, or "" when there is none.
	Selected() string

	// Names returns every adjustable parameter in Tab order.
	Names() []string

	// Value returns a parameter's current value.
	Value(name string) (float32, bool)
}

var _ Controls = &controls{}

// NewControls builds the parameter list from the non-nil targets.
//
// Parameters:
//   - targets: the values to edit
//   - options: functional options to configure the controls
//
// Returns:
//   - Controls: the ready controls
func NewControls(targets Targets, options ...ControlsBuilderOption) Controls {
	c := &controls{
		mu:           &sync.Mutex{},
		targets:      targets,
		stepFraction: 0.02,
	}
	for _, option := range options {
		option(c)
	}

	if m := targets.Material; m != nil {
		c.params = append(c.params,
			parameter{"material.ambient", &m.Ambient, material.CoefficientRange},
			parameter{"material.diffuse", &m.Diffuse, material.CoefficientRange},
			parameter{"material.specular", &m.Specular, material.CoefficientRange},
			parameter{"material.shininess", &m.Shininess, material.ShininessRange},
		)
	}
	if l := targets.Light; l != nil {
		c.params = append(c.params,
			parameter{"light.direction.x", &l.Direction[0], light.DirectionRange},
			parameter{"light.direction.y", &l.Direction[1], light.DirectionRange},
			parameter{"light.direction.z", &l.Direction[2], light.DirectionRange},
			parameter{"light.color.r", &l.Color[0], light.ColorRange},
			parameter{"light.color.g", &l.Color[1], light.ColorRange},
			parameter{"light.color.b", &l.Color[2], light.ColorRange},
		)
	}
	if s := targets.Shadow; s != nil {
		c.params = append(c.params,
			parameter{"shadow.min_bias", &s.MinBias, light.BiasRange},
			parameter{"shadow.max_bias", &s.MaxBias, light.BiasRange},
		)
	}
	if a := targets.Aberration; a != nil {
		c.params = append(c.params,
			parameter{"aberration.r", &a.Offsets[0], postfx.OffsetRange},
			parameter{"aberration.g", &a.Offsets[1], postfx.OffsetRange},
			parameter{"aberration.b", &a.Offsets[2], postfx.OffsetRange},
		)
	}
	return c
}

func (c *controls) HandleKey(key int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case common.KeyTab:
		if len(c.params) == 0 {
			return true
		}
		if c.shift {
			c.selected = (c.selected + len(c.params) - 1) % len(c.params)
		} else {
			c.selected = (c.selected + 1) % len(c.params)
		}
		c.logf("[controls] selected %s = %.3f", c.params[c.selected].name, *c.params[c.selected].value)
	case common.KeyUp:
		c.nudge(1)
	case common.KeyDown:
		c.nudge(-1)
	case common.KeyX:
		if c.targets.Aberration == nil {
			return false
		}
		c.targets.Aberration.Toggle()
		c.logf("[controls] chromatic aberration on = %t", c.targets.Aberration.EffectOn)
	case common.KeyO:
		if c.targets.ShowLightOrbs == nil {
			return false
		}
		*c.targets.ShowLightOrbs = !*c.targets.ShowLightOrbs
		c.logf("[controls] light orbs = %t", *c.targets.ShowLightOrbs)
	case common.KeyR:
		if c.targets.ResetCamera == nil {
			return false
		}
		c.targets.ResetCamera()
		c.logf("[controls] camera reset")
	default:
		return false
	}
	return true
}

func (c *controls) SetShift(held bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shift = held
}

// nudge moves the selected parameter by one step in dir and clamps it. Caller must hold the mutex.
func (c *controls) nudge(dir float32) {
	if len(c.params) == 0 {
		return
	}
	p := c.params[c.selected]
	step := p.rng.Span() * c.stepFraction
	if c.shift {
		step *= 10
	}
	*p.value = p.rng.Clamp(*p.value + dir*step)
	c.logf("[controls] %s = %.3f", p.name, *p.value)
}

func (c *controls) logf(format string, args ...any) {
	if c.verbose {
		log.Printf(format, args...)
	}
}

func (c *controls) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.params) == 0 {
		return ""
	}
	return c.params[c.selected].name
}

func (c *controls) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.params))
	for i, p := range c.params {
		names[i] = p.name
	}
	return names
}

func (c *controls) Value(name string) (float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.params {
		if p.name == name {
			return *p.value, true
		}
	}
	return 0, false
}
