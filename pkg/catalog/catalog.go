// pkg/catalog/catalog.go

// Package catalog loads and indexes option/task catalogs: project JSON
// files, remote documents, and the built-in catalog. All shape validation
// happens here, at load time; the resolution engine downstream assumes
// well-formed definitions.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "pipeline-compiler/internal/common/errors"
	commonhttp "pipeline-compiler/internal/common/http"
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/engine/option"
)

// Catalog is the merged view over every loaded document: an immutable
// option registry plus a task index.
type Catalog struct {
	options option.Registry
	tasks   map[string]*Task
	order   []string
	logger  logger.Logger
}

func New(log logger.Logger) *Catalog {
	return &Catalog{
		options: option.Registry{},
		tasks:   map[string]*Task{},
		logger:  log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Merge validates doc's option definitions and adds its contents to the
// catalog. Later documents override earlier ones on identifier conflicts,
// so built-ins merged first can be shadowed by project files. A malformed
// option definition fails the whole merge: configuration-shape errors are
// load failures, never runtime skips.
func (c *Catalog) Merge(doc *Document, builtin bool) error {
	for id, def := range doc.Options {
		normalizeDefinition(def)
		if err := def.Validate(); err != nil {
			return commonerrors.NewMalformedOptionError(id, err.Error())
		}
	}

	for id, def := range doc.Options {
		if _, exists := c.options[id]; exists {
			c.logger.Debug("option redefined by later document", map[string]interface{}{
				"option": id,
			})
		}
		c.options[id] = def
	}

	for _, task := range doc.Tasks {
		task.Builtin = builtin
		if _, exists := c.tasks[task.ID]; !exists {
			c.order = append(c.order, task.ID)
		}
		c.tasks[task.ID] = task
	}

	return nil
}

// Task returns the task definition for id, if present.
func (c *Catalog) Task(id string) (*Task, bool) {
	task, ok := c.tasks[id]
	return task, ok
}

// Options returns the merged option registry.
func (c *Catalog) Options() option.Registry {
	return c.options
}

// TaskIDs returns task identifiers in first-seen order.
func (c *Catalog) TaskIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// OptionIDs returns the registered option identifiers, sorted.
func (c *Catalog) OptionIDs() []string {
	out := make([]string, 0, len(c.options))
	for id := range c.options {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Slot type defaults to text when a document omits it.
func normalizeDefinition(def *option.Definition) {
	for i := range def.Input {
		if def.Input[i].Type == "" {
			def.Input[i].Type = option.SlotText
		}
	}
}

// ParseDocument schema-validates and decodes one catalog document. name
// is used in diagnostics only (file path or URL).
func ParseDocument(name string, data []byte) (*Document, error) {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, commonerrors.NewCatalogLoadFailedError(name, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, commonerrors.NewCatalogSchemaInvalidError(name, strings.Join(details, "; "))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, commonerrors.NewCatalogLoadFailedError(name, err)
	}
	return &doc, nil
}

// LoadFile reads and parses one catalog file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, commonerrors.NewCatalogLoadFailedError(path, err)
	}
	return ParseDocument(path, data)
}

// LoadDir loads every *.json document in dir, sorted by file name so the
// later-wins merge order is deterministic.
func LoadDir(dir string) ([]*Document, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, commonerrors.NewCatalogLoadFailedError(dir, err)
	}
	sort.Strings(entries)

	docs := make([]*Document, 0, len(entries))
	for _, path := range entries {
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FetchURL downloads and parses a remote catalog document.
func FetchURL(ctx context.Context, url string, client *commonhttp.Client) (*Document, error) {
	data, err := client.GetBytes(ctx, url)
	if err != nil {
		return nil, commonerrors.NewCatalogFetchFailedError(url, err)
	}
	return ParseDocument(url, data)
}
