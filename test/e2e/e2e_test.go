// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline-compiler/internal/common/database"
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/engine/compiler"
	"pipeline-compiler/internal/engine/option"
	"pipeline-compiler/internal/engine/selection"
	"pipeline-compiler/pkg/catalog"
)

// projectCatalog is a realistic project file: a farming task with a
// difficulty choice whose hard case pulls in a nested option, plus a
// freetext stage picker.
const projectCatalog = `{
  "version": "1.0",
  "options": {
    "difficulty": {
      "kind": "choice",
      "default_case": "Normal",
      "cases": [
        {
          "name": "Normal",
          "pipeline_override": {"Combat": {"difficulty": "normal"}}
        },
        {
          "name": "Hard",
          "pipeline_override": {"Combat": {"difficulty": "hard"}},
          "option": ["retry_on_fail"]
        }
      ]
    },
    "retry_on_fail": {
      "kind": "boolean",
      "default_case": "No",
      "cases": [
        {"name": "Yes", "pipeline_override": {"Combat": {"retry": true}}},
        {"name": "No", "pipeline_override": {"Combat": {"retry": false}}}
      ]
    },
    "stage": {
      "kind": "freetext",
      "input": [
        {"name": "stage", "default": "1-7"},
        {"name": "times", "default": "1", "type": "integer", "pattern": "^\\d+$"}
      ],
      "pipeline_override": {
        "Combat": {
          "stage": "{stage}",
          "times": "{times}"
        }
      }
    }
  },
  "tasks": [
    {
      "id": "farm",
      "option": ["difficulty", "stage"],
      "pipeline_override": {"Combat": {"report": true}}
    }
  ]
}`

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.json"), []byte(projectCatalog), 0644))

	log := logger.NewTestLogger(t)
	cat := catalog.New(log)
	require.NoError(t, cat.Merge(catalog.Builtin(), true))

	docs, err := catalog.LoadDir(dir)
	require.NoError(t, err)
	for _, doc := range docs {
		require.NoError(t, cat.Merge(doc, false))
	}
	return cat
}

func TestEndToEnd_ProjectTaskWithRedisSelections(t *testing.T) {
	ctx := context.Background()
	cat := buildCatalog(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := selection.NewRedisStore(database.NewRedisFromClient(client), "selections", logger.NewTestLogger(t))

	instanceID := selection.NewInstanceID()
	selectionDoc := map[string]option.Selection{
		"difficulty":    {Kind: option.KindChoice, Case: "Hard"},
		"retry_on_fail": {Kind: option.KindBoolean, Value: true},
		"stage":         {Kind: option.KindFreeText, Input: map[string]string{"stage": "3-2", "times": "5"}},
	}
	encoded, err := json.Marshal(selectionDoc)
	require.NoError(t, err)
	require.NoError(t, mr.Set("selections:"+instanceID, string(encoded)))

	selections, err := store.Load(ctx, instanceID)
	require.NoError(t, err)

	comp := compiler.New(cat, compiler.ModeAuto, logger.NewTestLogger(t))
	out := comp.Compile("farm", selections)

	fragments, ok := out.([]option.Fragment)
	require.True(t, ok, "project tasks compile to an ordered fragment array")
	require.Len(t, fragments, 4)

	// Base fragment, hard case, nested retry, then the stage template with
	// typed substitution applied.
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{"report": true}}, fragments[0])
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{"difficulty": "hard"}}, fragments[1])
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{"retry": true}}, fragments[2])
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{
		"stage": "3-2",
		"times": int64(5),
	}}, fragments[3])

	// The array serializes the way the downstream engine expects.
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"Combat": {"report": true}},
		{"Combat": {"difficulty": "hard"}},
		{"Combat": {"retry": true}},
		{"Combat": {"stage": "3-2", "times": 5}}
	]`, string(data))
}

func TestEndToEnd_BuiltinTaskMergesToOneObject(t *testing.T) {
	cat := buildCatalog(t)
	comp := compiler.New(cat, compiler.ModeAuto, logger.NewTestLogger(t))

	store := option.MapStore{
		"sleep_time": {Kind: option.KindFreeText, Input: map[string]string{"sleep_time": "30"}},
	}

	out := comp.Compile("sleep", store)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Entry": {
			"action": "Custom",
			"custom_action": "MXU_SLEEP_ACTION",
			"custom_action_param": {"sleep_time": 30}
		}
	}`, string(data))
}

func TestEndToEnd_DefaultsWithoutAnySelections(t *testing.T) {
	cat := buildCatalog(t)
	comp := compiler.New(cat, compiler.ModeAuto, logger.NewTestLogger(t))

	out := comp.Compile("farm", option.MapStore{})
	fragments, ok := out.([]option.Fragment)
	require.True(t, ok)
	require.Len(t, fragments, 3)

	// Normal difficulty has no nested options; stage falls back to slot
	// defaults.
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{"difficulty": "normal"}}, fragments[1])
	assert.Equal(t, option.Fragment{"Combat": map[string]interface{}{
		"stage": "1-7",
		"times": int64(1),
	}}, fragments[2])
}

func TestEndToEnd_UnknownTaskYieldsEmptyArray(t *testing.T) {
	cat := buildCatalog(t)
	comp := compiler.New(cat, compiler.ModeAuto, logger.NewTestLogger(t))

	out := comp.Compile("renamed-in-a-newer-build", option.MapStore{})
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEndToEnd_SelectionsSurviveRoundTripThroughRedis(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := selection.NewRedisStore(database.NewRedisFromClient(client), "selections", logger.NewTestLogger(t))

	original := option.MapStore{
		"difficulty": {Kind: option.KindChoice, Case: "Hard"},
		"stage":      {Kind: option.KindFreeText, Input: map[string]string{"stage": "annihilation"}},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	require.NoError(t, mr.Set("selections:inst", string(encoded)))

	loaded, err := store.Load(ctx, "inst")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
