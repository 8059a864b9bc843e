// pkg/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "pipeline-compiler/internal/common/errors"
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/engine/option"
)

// ==========================
// Test Helper Functions
// ==========================

const validCatalogJSON = `{
  "version": "1.0",
  "options": {
    "difficulty": {
      "kind": "choice",
      "default_case": "Normal",
      "cases": [
        {"name": "Normal", "pipeline_override": {"difficulty": "normal"}},
        {"name": "Hard", "pipeline_override": {"difficulty": "hard"}}
      ]
    },
    "stage": {
      "kind": "freetext",
      "input": [
        {"name": "stage", "default": "1-7"}
      ],
      "pipeline_override": {"stage": "{stage}"}
    }
  },
  "tasks": [
    {
      "id": "farm",
      "option": ["difficulty", "stage"],
      "pipeline_override": {"Entry": {"times": 1}}
    }
  ]
}`

func newTestCatalog(t *testing.T) *Catalog {
	return New(logger.NewTestLogger(t))
}

// ==========================
// Document Parsing Tests
// ==========================

func TestParseDocument_Valid(t *testing.T) {
	doc, err := ParseDocument("test.json", []byte(validCatalogJSON))
	require.NoError(t, err)

	assert.Equal(t, "1.0", doc.Version)
	assert.Len(t, doc.Options, 2)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "farm", doc.Tasks[0].ID)
	assert.Equal(t, []string{"difficulty", "stage"}, doc.Tasks[0].Option)
}

func TestParseDocument_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "missing version",
			data: `{"tasks": []}`,
		},
		{
			name: "task without id",
			data: `{"version": "1.0", "tasks": [{"option": ["a"]}]}`,
		},
		{
			name: "option with unknown kind",
			data: `{"version": "1.0", "options": {"x": {"kind": "toggle"}}}`,
		},
		{
			name: "slot with unknown type",
			data: `{"version": "1.0", "options": {"x": {"kind": "freetext", "input": [{"name": "a", "type": "float"}]}}}`,
		},
		{
			name: "case without name",
			data: `{"version": "1.0", "options": {"x": {"kind": "choice", "cases": [{"pipeline_override": {}}]}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument("test.json", []byte(tt.data))
			require.Error(t, err)

			var stdErr *commonerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, commonerrors.ErrCodeCatalogSchemaInvalid, stdErr.Code)
		})
	}
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument("test.json", []byte(`{not json`))
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeCatalogLoadFailed, stdErr.Code)
}

// ==========================
// Merge Tests
// ==========================

func TestCatalog_Merge(t *testing.T) {
	cat := newTestCatalog(t)

	doc, err := ParseDocument("test.json", []byte(validCatalogJSON))
	require.NoError(t, err)
	require.NoError(t, cat.Merge(doc, false))

	task, ok := cat.Task("farm")
	require.True(t, ok)
	assert.False(t, task.Builtin)

	def, ok := cat.Options().Lookup("difficulty")
	require.True(t, ok)
	assert.Equal(t, option.KindChoice, def.Kind)
}

func TestCatalog_Merge_RejectsMalformedOption(t *testing.T) {
	tests := []struct {
		name string
		def  *option.Definition
	}{
		{
			name: "boolean with one case",
			def: &option.Definition{
				Kind:  option.KindBoolean,
				Cases: []option.Case{{Name: "Yes"}},
			},
		},
		{
			name: "choice with no cases",
			def:  &option.Definition{Kind: option.KindChoice},
		},
		{
			name: "dangling default case",
			def: &option.Definition{
				Kind:        option.KindChoice,
				DefaultCase: "Z",
				Cases:       []option.Case{{Name: "A"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t)
			doc := &Document{
				Version: "1.0",
				Options: map[string]*option.Definition{"bad": tt.def},
			}

			err := cat.Merge(doc, false)
			require.Error(t, err)

			var stdErr *commonerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, commonerrors.ErrCodeMalformedOption, stdErr.Code)
		})
	}
}

func TestCatalog_Merge_LaterDocumentWins(t *testing.T) {
	cat := newTestCatalog(t)

	first := &Document{
		Version: "1.0",
		Options: map[string]*option.Definition{
			"shared": {
				Kind:  option.KindChoice,
				Cases: []option.Case{{Name: "old", PipelineOverride: option.Fragment{"v": 1}}},
			},
		},
		Tasks: []*Task{{ID: "job", Option: []string{"shared"}}},
	}
	second := &Document{
		Version: "2.0",
		Options: map[string]*option.Definition{
			"shared": {
				Kind:  option.KindChoice,
				Cases: []option.Case{{Name: "new", PipelineOverride: option.Fragment{"v": 2}}},
			},
		},
		Tasks: []*Task{{ID: "job", Option: []string{"shared"}, PipelineOverride: option.Fragment{"base": true}}},
	}

	require.NoError(t, cat.Merge(first, false))
	require.NoError(t, cat.Merge(second, false))

	def, ok := cat.Options().Lookup("shared")
	require.True(t, ok)
	assert.Equal(t, "new", def.Cases[0].Name)

	task, ok := cat.Task("job")
	require.True(t, ok)
	assert.NotNil(t, task.PipelineOverride)

	// Redefinition does not duplicate the task order entry.
	assert.Equal(t, []string{"job"}, cat.TaskIDs())
}

func TestCatalog_Merge_SlotTypeDefaultsToText(t *testing.T) {
	cat := newTestCatalog(t)

	doc, err := ParseDocument("test.json", []byte(`{
		"version": "1.0",
		"options": {
			"note": {
				"kind": "freetext",
				"input": [{"name": "text"}],
				"pipeline_override": {"note": "{text}"}
			}
		}
	}`))
	require.NoError(t, err)
	require.NoError(t, cat.Merge(doc, false))

	def, ok := cat.Options().Lookup("note")
	require.True(t, ok)
	assert.Equal(t, option.SlotText, def.Input[0].Type)
}

// ==========================
// File Loading Tests
// ==========================

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"version": "b"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"version": "a"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte(`not a catalog`), 0644))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Sorted by file name so merge order is deterministic.
	assert.Equal(t, "a", docs[0].Version)
	assert.Equal(t, "b", docs[1].Version)
}

func TestLoadDir_EmptyOrMissing(t *testing.T) {
	docs, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeCatalogLoadFailed, stdErr.Code)
}

// ==========================
// Built-in Catalog Tests
// ==========================

func TestBuiltin(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.Merge(Builtin(), true))

	for _, id := range []string{"sleep", "launch"} {
		task, ok := cat.Task(id)
		require.True(t, ok, id)
		assert.True(t, task.Builtin, id)
	}

	for _, id := range []string{"sleep_time", "launch_params", "wait_for_exit"} {
		def, ok := cat.Options().Lookup(id)
		require.True(t, ok, id)
		assert.NoError(t, def.Validate(), id)
	}
}

func TestBuiltin_ShadowedByProjectDocument(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.Merge(Builtin(), true))

	project := &Document{
		Version: "1.0",
		Options: map[string]*option.Definition{
			"sleep_time": {
				Kind: option.KindFreeText,
				Input: []option.Slot{
					{Name: "sleep_time", Default: "60", Type: option.SlotInteger},
				},
				PipelineOverride: option.Fragment{"sleep": "{sleep_time}"},
			},
		},
	}
	require.NoError(t, cat.Merge(project, false))

	def, ok := cat.Options().Lookup("sleep_time")
	require.True(t, ok)
	assert.Equal(t, "60", def.Input[0].Default)
}
