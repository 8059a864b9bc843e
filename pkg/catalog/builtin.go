// pkg/catalog/builtin.go
package catalog

import (
	"pipeline-compiler/internal/engine/option"
)

// Custom action names understood by the automation engine.
const (
	SleepAction  = "MXU_SLEEP_ACTION"
	LaunchAction = "MXU_LAUNCH_ACTION"
)

// Builtin returns the built-in task catalog: self-contained tasks not
// backed by a project configuration file. Their overrides are always
// compiled through the deep-merge path, since several independently
// authored options set siblings under custom_action_param.
func Builtin() *Document {
	return &Document{
		Version: "builtin",
		Options: map[string]*option.Definition{
			"sleep_time": {
				Kind: option.KindFreeText,
				Input: []option.Slot{
					{Name: "sleep_time", Default: "5", Type: option.SlotInteger, Pattern: `^\d+$`},
				},
				PipelineOverride: option.Fragment{
					"Entry": map[string]interface{}{
						"custom_action_param": map[string]interface{}{
							"sleep_time": "{sleep_time}",
						},
					},
				},
			},
			"launch_params": {
				Kind: option.KindFreeText,
				Input: []option.Slot{
					{Name: "program", Default: "", Type: option.SlotText},
					{Name: "args", Default: "", Type: option.SlotText},
				},
				PipelineOverride: option.Fragment{
					"Entry": map[string]interface{}{
						"custom_action_param": map[string]interface{}{
							"program": "{program}",
							"args":    "{args}",
						},
					},
				},
			},
			"wait_for_exit": {
				Kind:        option.KindBoolean,
				DefaultCase: "No",
				Cases: []option.Case{
					{
						Name: "Yes",
						PipelineOverride: option.Fragment{
							"Entry": map[string]interface{}{
								"custom_action_param": map[string]interface{}{
									"wait_for_exit": true,
								},
							},
						},
					},
					{
						Name: "No",
						PipelineOverride: option.Fragment{
							"Entry": map[string]interface{}{
								"custom_action_param": map[string]interface{}{
									"wait_for_exit": false,
								},
							},
						},
					},
				},
			},
		},
		Tasks: []*Task{
			{
				ID:     "sleep",
				Option: []string{"sleep_time"},
				PipelineOverride: option.Fragment{
					"Entry": map[string]interface{}{
						"action":        "Custom",
						"custom_action": SleepAction,
					},
				},
			},
			{
				ID:     "launch",
				Option: []string{"launch_params", "wait_for_exit"},
				PipelineOverride: option.Fragment{
					"Entry": map[string]interface{}{
						"action":        "Custom",
						"custom_action": LaunchAction,
					},
				},
			},
		},
	}
}
