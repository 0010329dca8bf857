package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
)

const weekPlan = `
start: 2024-01-01
end: 2024-01-07
work:
  start: "09:00"
  hours: 8
  name: Office
tasks:
  - {name: Gym, hours: 1, days: [mon, wed], prefer: evening}
  - {name: Marathon, hours: 30}
events:
  - {name: Dentist, date: 2024-01-03, start: "14:30", hours: 1}
`

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateTextOutput(t *testing.T) {
	out, err := execute(t, "generate", "-f", writePlan(t, weekPlan))
	require.NoError(t, err)

	assert.Contains(t, out, "2024-01-01 MONDAY")
	assert.Contains(t, out, "2024-01-07 SUNDAY")
	assert.Regexp(t, `17:00-18:00\s+Gym\s+Task`, out)
	assert.Regexp(t, `09:00-17:00\s+Office\s+FixedActivity`, out)
	assert.Regexp(t, `14:30-15:30\s+Dentist\s+Event`, out)
	assert.Contains(t, out, `warning: "Marathon" (60 slots, any day) could not be scheduled`)
}

func TestGenerateJSONOutput(t *testing.T) {
	out, err := execute(t, "generate", "-f", writePlan(t, weekPlan), "-o", "json")
	require.NoError(t, err)

	var resp dto.GeneratePlanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, dto.PersistModeNone, resp.PersistMode)
	assert.Len(t, resp.Days, 7)
	require.Len(t, resp.Placements, 2)
	assert.Equal(t, "2024-01-01", resp.Placements[0].Date)
	assert.Equal(t, "2024-01-03", resp.Placements[1].Date)
	require.Len(t, resp.Unscheduled, 1)
	assert.Equal(t, "Marathon", resp.Unscheduled[0].Name)
}

func TestGenerateFlagDefaults(t *testing.T) {
	plan := "start: 2024-01-01\nend: 2024-01-01\n"
	out, err := execute(t, "generate", "-f", writePlan(t, plan), "--work-hours", "0", "--sleep-hours", "0")
	require.NoError(t, err)

	assert.Regexp(t, `00:00-24:00\s+Free time`, out)
}

func TestGenerateErrors(t *testing.T) {
	_, err := execute(t, "generate")
	require.Error(t, err)

	_, err = execute(t, "generate", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read plan file")

	_, err = execute(t, "generate", "-f", writePlan(t, "start: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse plan file")

	_, err = execute(t, "generate", "-f", writePlan(t, "start: 2024-01-07\nend: 2024-01-01\n"))
	require.Error(t, err)

	_, err = execute(t, "generate", "-f", writePlan(t, weekPlan), "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestSlotsTable(t *testing.T) {
	out, err := execute(t, "slots")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 49)
	assert.Regexp(t, `^SLOT\s+START\s+END$`, lines[0])
	assert.Regexp(t, `^0\s+00:00\s+00:30$`, lines[1])
	assert.Regexp(t, `^47\s+23:30\s+24:00$`, lines[48])
}
