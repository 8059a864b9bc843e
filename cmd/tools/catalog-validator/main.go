// cmd/tools/catalog-validator/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/pkg/catalog"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	// Validate command flags
	validatePath := validateCmd.String("path", "", "Catalog file to validate")
	validateDir := validateCmd.String("dir", "", "Directory of catalog files to validate")

	// List command flags
	listDir := listCmd.String("dir", "./catalogs", "Directory of catalog files")
	listBuiltin := listCmd.Bool("builtin", true, "Include built-in tasks")

	// Show command flags
	showDir := showCmd.String("dir", "./catalogs", "Directory of catalog files")
	showTask := showCmd.String("task", "", "Task ID to show")
	showOption := showCmd.String("option", "", "Option ID to show")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validatePath == "" && *validateDir == "" {
			fmt.Println("Error: either -path or -dir is required for validate.")
			validateCmd.Usage()
			os.Exit(1)
		}
		if err := validateCatalogs(*validatePath, *validateDir); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listTasks(*listDir, *listBuiltin); err != nil {
			fmt.Printf("Error listing tasks: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showCmd.Parse(os.Args[2:])
		if *showTask == "" && *showOption == "" {
			fmt.Println("Error: either -task or -option is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		if err := show(*showDir, *showTask, *showOption); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateCatalogs(path, dir string) error {
	cat := catalog.New(logger.NewNoOpLogger())

	count := 0
	if path != "" {
		doc, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		if err := cat.Merge(doc, false); err != nil {
			return err
		}
		count++
	}
	if dir != "" {
		docs, err := catalog.LoadDir(dir)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := cat.Merge(doc, false); err != nil {
				return err
			}
		}
		count += len(docs)
	}

	// Option references are resolved lazily at compile time, but dangling
	// ones are almost always authoring mistakes worth flagging here.
	for _, id := range cat.TaskIDs() {
		task, _ := cat.Task(id)
		for _, ref := range task.Option {
			if _, ok := cat.Options().Lookup(ref); !ok {
				fmt.Printf("Warning: task %s references unknown option %q\n", id, ref)
			}
		}
	}

	fmt.Printf("Validated %d document(s): %d tasks, %d options.\n",
		count, len(cat.TaskIDs()), len(cat.OptionIDs()))
	return nil
}

func loadAll(dir string, builtin bool) (*catalog.Catalog, error) {
	cat := catalog.New(logger.NewNoOpLogger())
	if builtin {
		if err := cat.Merge(catalog.Builtin(), true); err != nil {
			return nil, err
		}
	}
	docs, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := cat.Merge(doc, false); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func listTasks(dir string, builtin bool) error {
	cat, err := loadAll(dir, builtin)
	if err != nil {
		return err
	}

	for _, id := range cat.TaskIDs() {
		task, _ := cat.Task(id)
		kind := "project"
		if task.Builtin {
			kind = "builtin"
		}
		fmt.Printf("%-30s %-8s options=%d\n", id, kind, len(task.Option))
	}
	fmt.Printf("\n%d tasks, %d options.\n", len(cat.TaskIDs()), len(cat.OptionIDs()))
	return nil
}

func show(dir, taskID, optionID string) error {
	cat, err := loadAll(dir, true)
	if err != nil {
		return err
	}

	var v interface{}
	switch {
	case taskID != "":
		task, ok := cat.Task(taskID)
		if !ok {
			return fmt.Errorf("task %s not found", taskID)
		}
		v = task
	case optionID != "":
		def, ok := cat.Options().Lookup(optionID)
		if !ok {
			return fmt.Errorf("option %s not found", optionID)
		}
		v = def
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func help() {
	fmt.Println(`
Usage: catalog-validator <command> [flags]

Commands:
  validate Validate catalog files (schema + option shapes + references)
  list     List every task the merged catalogs define
  show     Print one task or option definition as JSON
  help     Show this help message

Examples:
  catalog-validator validate -dir ./catalogs
  catalog-validator validate -path ./catalogs/acme.json
  catalog-validator list -dir ./catalogs
  catalog-validator show -task sleep

Use 'catalog-validator <command> -h' for more information about a command.`)
}
