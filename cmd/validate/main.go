package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.yaml|catalog.json>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &ScenarioValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// ScenarioValidator adds naming conventions on top of the schema and
// semantic checks done by the loader.
type ScenarioValidator struct {
	errors []string
}

func (v *ScenarioValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("catalog file must have a .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidScenarioFilename(nameWithoutExt) {
		return fmt.Errorf("catalog filename '%s' must be lowercase snake_case (e.g., my_story.yaml, not my-story.yaml or MyStory.yaml)", baseName)
	}

	s, err := scenario.LoadFile(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateScenario(s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ScenarioValidator) validateScenario(s *scenario.Scenario) {
	v.validateIDFormat("start_location", s.Settings.StartLocation)

	for _, a := range s.Attributes {
		v.validateIDFormat("attribute", a.Name)
	}
	for _, l := range s.Locations {
		v.validateIDFormat("location", l.Name)
	}
	for name := range s.Settings.Items {
		v.validateIDFormat("item", name)
	}

	for _, e := range s.Events {
		v.validateIDFormat("event", e.Name)
		for _, seg := range e.Segments {
			v.validateIDFormat(fmt.Sprintf("segment of event %s", e.Name), seg.Name)
			for _, opt := range seg.Options {
				for _, t := range opt.Triggers {
					v.validateTrigger(fmt.Sprintf("option %q of event %s", opt.Text, e.Name), t)
				}
			}
		}
	}

	for _, b := range s.Triggers {
		v.validateTrigger(fmt.Sprintf("binding of event %s", b.Event), b.On)
	}
}

func (v *ScenarioValidator) validateTrigger(context string, t scenario.Trigger) {
	if t.Kind == scenario.TriggerCustom && !isValidID(t.Tag) {
		v.addError(fmt.Sprintf("%s raises custom trigger '%s' - should be lowercase snake_case", context, t.Tag))
	}
}

func (v *ScenarioValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ScenarioValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidScenarioFilename(name string) bool {
	// Allow 'x.' prefix for experimental catalogs
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
