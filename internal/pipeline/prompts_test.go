package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPromptManagerDefaults(t *testing.T) {
	pm := NewPromptManager("")

	steps := []Step{StepPlanner, StepRecipe, StepProductFinder, StepBudgeting, StepFinalizer}
	for _, step := range steps {
		if pm.Get(step) == "" {
			t.Errorf("no default prompt for %s", step)
		}
	}
}

func TestPromptManagerFileOverride(t *testing.T) {
	tempDir := t.TempDir()
	custom := "You are a very particular meal planner."
	if err := os.WriteFile(filepath.Join(tempDir, "planner.md"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager(tempDir)

	if got := pm.Get(StepPlanner); got != custom {
		t.Errorf("planner prompt = %q, want file override", got)
	}
	// Steps without an override file still fall back to the default.
	if got := pm.Get(StepBudgeting); got != defaultPrompts[StepBudgeting] {
		t.Errorf("budgeting prompt = %q, want default", got)
	}
}

func TestPromptManagerIgnoresEmptyFile(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "finalizer.md"), []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager(tempDir)
	if got := pm.Get(StepFinalizer); got != defaultPrompts[StepFinalizer] {
		t.Errorf("blank override file must fall back to default, got %q", got)
	}
}
