// ABOUTME: Integration tests for the study CLI.
// ABOUTME: Builds the binary and runs import, record and report commands end to end.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	studyBinary := filepath.Join(projectRoot, "study")

	buildCmd := exec.Command("go", "build", "-o", studyBinary, "./cmd/study")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}
	defer os.Remove(studyBinary)

	tmpDir := t.TempDir()
	workbook := writeWorkbook(t, filepath.Join(tmpDir, "plano.xlsx"))

	run := func(args ...string) (string, error) {
		fullArgs := append([]string{"--config", filepath.Join(tmpDir, "config.json")}, args...)
		cmd := exec.Command(studyBinary, fullArgs...)
		cmd.Env = append(os.Environ(),
			"STUDY_DATA_DIR="+tmpDir,
			"STUDY_TIMEZONE=UTC",
			"STUDY_LOG_MODE=prod",
			"NO_COLOR=1",
		)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	output, err := run("import", workbook)
	if err != nil {
		t.Fatalf("Failed to import: %v\n%s", err, output)
	}
	if !strings.Contains(output, "2 tasks added") {
		t.Errorf("Expected '2 tasks added' in output, got: %s", output)
	}

	// Re-import skips what is already there
	output, err = run("import", workbook)
	if err != nil {
		t.Fatalf("Failed to re-import: %v\n%s", err, output)
	}
	if !strings.Contains(output, "0 tasks added, 2 skipped") {
		t.Errorf("Expected re-import to skip both tasks, got: %s", output)
	}

	output, err = run("evolution")
	if err != nil {
		t.Fatalf("Failed to show evolution: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Math") || !strings.Contains(output, "History") {
		t.Errorf("Expected both disciplines in evolution, got: %s", output)
	}

	output, err = run("record", "result", "1", "19", "20")
	if err != nil {
		t.Fatalf("Failed to record result: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Recorded result") {
		t.Errorf("Expected 'Recorded result' in output, got: %s", output)
	}

	output, err = run("notifications", "--unread")
	if err != nil {
		t.Fatalf("Failed to list notifications: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Great result") {
		t.Errorf("Expected 'Great result' notification, got: %s", output)
	}

	output, err = run("export", "markdown")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Math") {
		t.Errorf("Expected 'Math' in markdown export, got: %s", output)
	}
}

func writeWorkbook(t *testing.T, path string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("CICLO"); err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	rows := [][]interface{}{
		{"DISCIPLINA", "TAREFA", "TAREFAS", "DATA", "TRILHA", "CH", "CH (EFETIVA)", "TOTAL QUESTÕES", "TOTAL ACERTOS"},
		{"Math", 1, "Fractions", "2025-06-10", "Week 1", "1:00", "1:10", 20, 14},
		{"History", 2, "Empires", "2025-06-11", "Week 1", "0:45", "0:40", 10, 6},
	}
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, 3+i)
		if err := f.SetSheetRow("CICLO", cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}
	return path
}
