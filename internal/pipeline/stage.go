package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
)

// Stage is the uniform generator contract every table implements. Stages read
// and write only through the Context; anything extra a stage needs (window
// bounds, random stream) lives there, never in a widened signature.
type Stage interface {
	Table() string
	Generate(ctx *Context, cfg *config.Config) error
}

// Registry maps table identifiers to their generator stage and remembers
// registration order, which is the execution order.
type Registry struct {
	stages map[string]Stage
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]Stage)}
}

// Register adds a stage; duplicate table names are a programming error.
func (r *Registry) Register(s Stage) error {
	name := s.Table()
	if _, exists := r.stages[name]; exists {
		return fmt.Errorf("stage for table %q registered twice", name)
	}
	r.stages[name] = s
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on duplicate registration; used at wiring time only.
func (r *Registry) MustRegister(stages ...Stage) {
	for _, s := range stages {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Run executes every registered stage in order. A stage error aborts the run
// immediately; there are no retries.
func (r *Registry) Run(ctx *Context, cfg *config.Config) error {
	for _, name := range r.order {
		stage := r.stages[name]
		log.Info().Str("table", name).Msg("Generating table")
		if err := stage.Generate(ctx, cfg); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	return nil
}

// Tables returns the execution order.
func (r *Registry) Tables() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
