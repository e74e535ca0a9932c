package questionbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/interview-coach/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func poolIDs(qs []domain.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

const backendJSON = `{
	"domain": "backend",
	"levels": {
		"senior": [{"id": "s1", "question": "Design a queue", "weight": 2}],
		"entry": [
			{"id": "e1", "question": "What is HTTP?", "tags": ["http"], "keywords": ["request"], "followup_ids": ["e2"]},
			{"id": "e2", "question": "What is TCP?", "followup_for": ["e1"]}
		]
	}
}`

const noEntryYAML = `
domain: data
levels:
  medium:
    - id: m1
      question: Explain joins
      difficulty: 2
    - id: shared
      question: Explain indexes
  senior:
    - id: shared
      question: Explain indexes again
    - id: s1
      question: Explain partitioning
`

func TestOpen_LoadsJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	writeFile(t, dir, "data.yml", noEntryYAML)
	writeFile(t, dir, "README.md", "ignored")

	bank, err := Open(dir)
	require.NoError(t, err)

	roles := bank.Roles()
	require.Len(t, roles, 2)
	assert.Equal(t, "backend", roles[0].Role)
	assert.Equal(t, []LevelSummary{{Name: "senior", Count: 1}, {Name: "entry", Count: 2}}, roles[0].Levels)
	assert.Equal(t, "data", roles[1].Role)
	assert.Equal(t, []LevelSummary{{Name: "medium", Count: 2}, {Name: "senior", Count: 2}}, roles[1].Levels)
}

func TestLoadPool_ExactLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	bank, err := Open(dir)
	require.NoError(t, err)

	pool, err := bank.LoadPool("backend", "senior")
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, 2.0, pool[0].BaseWeight())

	pool, err = bank.LoadPool("backend", "entry")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, poolIDs(pool))
	assert.Equal(t, []string{"e2"}, pool[0].DeclaredFollowups())
	assert.Equal(t, []string{"e1"}, pool[1].DeclaredFollowups())
	assert.Equal(t, 1.0, pool[1].BaseWeight())
}

func TestLoadPool_FallsBackToDefaultLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	bank, err := Open(dir)
	require.NoError(t, err)

	pool, err := bank.LoadPool("backend", "principal")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, poolIDs(pool))
}

func TestLoadPool_FlattensInFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.yaml", noEntryYAML)
	bank, err := Open(dir)
	require.NoError(t, err)

	pool, err := bank.LoadPool("data", "entry")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "shared", "s1"}, poolIDs(pool))
	assert.Equal(t, "Explain indexes", pool[1].Prompt)
}

func TestLoadPool_CustomDefaultLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.yaml", noEntryYAML)
	bank, err := Open(dir, WithDefaultLevel("senior"))
	require.NoError(t, err)

	pool, err := bank.LoadPool("data", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "s1"}, poolIDs(pool))
}

func TestLoadPool_UnknownRole(t *testing.T) {
	bank, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = bank.LoadPool("astronaut", "entry")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestLoadPool_ReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	bank, err := Open(dir)
	require.NoError(t, err)

	pool, err := bank.LoadPool("backend", "entry")
	require.NoError(t, err)
	pool[0].Tags[0] = "mutated"
	pool[0].Prompt = "mutated"

	again, err := bank.LoadPool("backend", "entry")
	require.NoError(t, err)
	assert.Equal(t, "http", again[0].Tags[0])
	assert.Equal(t, "What is HTTP?", again[0].Prompt)
}

func TestOpen_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"missing levels", "a.json", `{"domain": "x"}`},
		{"question without id", "a.json", `{"levels": {"entry": [{"question": "q"}]}}`},
		{"empty prompt", "a.yaml", "levels:\n  entry:\n    - id: q1\n      question: \"\"\n"},
		{"negative weight", "a.json", `{"levels": {"entry": [{"id": "q1", "question": "q", "weight": -1}]}}`},
		{"tags not a list", "a.json", `{"levels": {"entry": [{"id": "q1", "question": "q", "tags": "x"}]}}`},
		{"duplicate id in level", "a.json", `{"levels": {"entry": [{"id": "q1", "question": "q"}, {"id": "q1", "question": "r"}]}}`},
		{"malformed json", "a.json", `{"levels": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)
			_, err := Open(dir)
			assert.Error(t, err)
		})
	}
}

func TestOpen_DuplicateRoleAcrossFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	writeFile(t, dir, "backend.yaml", noEntryYAML)

	_, err := Open(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestOpen_MissingDir(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", backendJSON)
	bank, err := Open(dir)
	require.NoError(t, err)

	writeFile(t, dir, "broken.json", `{"levels": {}}`)
	require.Error(t, bank.Reload())

	_, err = bank.LoadPool("backend", "entry")
	assert.NoError(t, err)
	assert.Len(t, bank.Roles(), 1)
}

func TestLint_ShippedBank(t *testing.T) {
	roles, err := Lint(filepath.Join("..", "..", "data", "questions"))
	require.NoError(t, err)
	require.NotEmpty(t, roles)
	for _, r := range roles {
		assert.NotEmpty(t, r.Levels, r.Role)
	}
}
