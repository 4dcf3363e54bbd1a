package skin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"analyze-skin/api/internal/util"
)

// Engine sends the prompt and image to a vision model and returns the
// trimmed text of the first candidate's first part.
type Engine interface {
	Name() string
	GetModel() string
	// Configured reports whether the engine has the credentials it needs.
	Configured() bool
	Generate(ctx context.Context, prompt string, img util.DataURI) (string, error)
}

// Engines is a name-indexed set of engines with a default.
type Engines struct {
	def  string
	byID map[string]Engine
}

func NewEngines(def string, engs ...Engine) *Engines {
	e := &Engines{def: strings.ToLower(strings.TrimSpace(def)), byID: make(map[string]Engine, len(engs))}
	for _, eng := range engs {
		if eng == nil {
			continue
		}
		e.byID[strings.ToLower(eng.Name())] = eng
	}
	return e
}

// GetEngine returns the named engine; an empty name selects the default.
func (e *Engines) GetEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	if eng, ok := e.byID[name]; ok {
		return eng, nil
	}
	return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(e.Names(), ", "))
}

func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.byID))
	for k := range e.byID {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
