// internal/engine/compiler/compiler.go

// Package compiler turns a task's resolved option fragments into the
// engine-facing override document: placeholder substitution with typed
// coercion, then either an ordered fragment array (standard tasks) or one
// right-biased deep merge (built-in tasks).
package compiler

import (
	"time"

	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/common/metrics"
	"pipeline-compiler/internal/engine/option"
	"pipeline-compiler/internal/engine/resolver"
	"pipeline-compiler/pkg/catalog"
)

// Mode selects the engine-facing output contract.
type Mode string

const (
	// ModeAuto emits a merged object for built-in tasks and an ordered
	// fragment array for standard tasks.
	ModeAuto   Mode = "auto"
	ModeArray  Mode = "array"
	ModeMerged Mode = "merged"
)

// Compiler is safe for concurrent use: it holds only immutable catalog
// data and performs no I/O beyond diagnostic logging.
type Compiler struct {
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	logger   logger.Logger
	mode     Mode
}

func New(cat *catalog.Catalog, mode Mode, log logger.Logger) *Compiler {
	if mode == "" {
		mode = ModeAuto
	}
	var reg option.Registry
	if cat != nil {
		reg = cat.Options()
	}
	return &Compiler{
		catalog:  cat,
		resolver: resolver.New(reg, log),
		logger:   log.WithFields(map[string]interface{}{"component": "compiler"}),
		mode:     mode,
	}
}

// Compile produces the override value for taskID given the current
// selections: a fragment array, a merged object, or the empty-array
// sentinel when the task or catalog is missing. It never fails; the worst
// case is an override smaller than intended plus a logged warning.
func (c *Compiler) Compile(taskID string, store option.Store) interface{} {
	start := time.Now()

	if c.catalog == nil {
		c.logger.Warn("no catalog loaded, emitting empty override", map[string]interface{}{
			"task": taskID,
		})
		return []option.Fragment{}
	}

	task, ok := c.catalog.Task(taskID)
	if !ok {
		c.logger.Warn("task not found in catalog, emitting empty override", map[string]interface{}{
			"task": taskID,
		})
		return []option.Fragment{}
	}

	merged := task.Builtin
	switch c.mode {
	case ModeArray:
		merged = false
	case ModeMerged:
		merged = true
	}

	fragments := c.CompileList(task, store)
	metrics.CompileDuration.WithLabelValues(task.ID).Observe(time.Since(start).Seconds())

	if merged {
		metrics.CompilationsTotal.WithLabelValues(task.ID, "merged").Inc()
		return MergeAll(nil, fragments)
	}
	metrics.CompilationsTotal.WithLabelValues(task.ID, "array").Inc()
	return fragments
}

// CompileList returns the raw ordered fragments for a task: the base
// fragment first if present, then the resolved option fragments with
// freetext templates substituted. Fragments whose substitution fails are
// dropped with a warning; the rest still compile.
func (c *Compiler) CompileList(task *catalog.Task, store option.Store) []option.Fragment {
	fragments := []option.Fragment{}
	if task == nil {
		return fragments
	}

	if task.PipelineOverride != nil {
		fragments = append(fragments, cloneFragment(task.PipelineOverride))
	}

	for _, res := range c.resolver.Resolve(task.Option, store) {
		if !res.FreeText() {
			fragments = append(fragments, cloneFragment(res.Fragment))
			continue
		}

		values, err := coerceSlotValues(res.OptionID, res.Slots, res.Values, c.logger.Warn)
		if err != nil {
			metrics.FragmentsDropped.WithLabelValues(task.ID, "substitution").Inc()
			c.logger.Warn("dropping fragment, substitution failed", map[string]interface{}{
				"task":   task.ID,
				"option": res.OptionID,
				"error":  err.Error(),
			})
			continue
		}
		fragments = append(fragments, substituteTemplate(res.Template, values))
	}

	metrics.FragmentsEmitted.WithLabelValues(task.ID).Add(float64(len(fragments)))
	return fragments
}

// CompileMerged deep-merges the task's fragment list into one document,
// left-to-right: later fragments win direct leaf conflicts while sibling
// keys from earlier fragments survive.
func (c *Compiler) CompileMerged(task *catalog.Task, store option.Store) option.Fragment {
	return MergeAll(nil, c.CompileList(task, store))
}
