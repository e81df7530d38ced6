package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/shapes_hierarchy.yaml")
	require.NoError(t, err)

	assert.Equal(t, "shapes_hierarchy", scenario.Name)
	assert.Equal(t, "shapes-session", scenario.SessionID)
	assert.Equal(t, filepath.Join("../../testdata/scenarios", "../catalogs/shapes"), scenario.Catalog)
	assert.Len(t, scenario.Steps, 7)
	assert.Len(t, scenario.Assertions, 4)
	assert.Equal(t, "true", scenario.Steps[0].Expect)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: based
description: catalog resolved against an explicit base
catalog: testdata/catalogs/shapes
steps:
  - query: test SUPER Shape; Circle
`)
	scenario, err := LoadScenarioWithBasePath(path, "../..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("../..", "testdata/catalogs/shapes"), scenario.Catalog)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled steps key
step:
  - query: test INT int32
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "no name",
			body: "description: d\nsteps:\n  - query: test INT int32\n",
			want: "name is required",
		},
		{
			name: "no description",
			body: "name: n\nsteps:\n  - query: test INT int32\n",
			want: "description is required",
		},
		{
			name: "no steps",
			body: "name: n\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "bad pointer size",
			body: "name: n\ndescription: d\npointer_size: 2\nsteps:\n  - query: test INT int32\n",
			want: "pointer_size must be 4 or 8",
		},
		{
			name: "missing catalog",
			body: "name: n\ndescription: d\ncatalog: nowhere\nsteps:\n  - query: test INT int32\n",
			want: "catalog not found",
		},
		{
			name: "empty query",
			body: "name: n\ndescription: d\nsteps:\n  - expect: \"true\"\n",
			want: "steps[0]: query is required",
		},
		{
			name: "bad query",
			body: "name: n\ndescription: d\nsteps:\n  - query: test NOPE int32\n",
			want: "steps[0]",
		},
		{
			name: "double expectation",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32 => true\n    expect: \"true\"\n",
			want: "both inline and in expect",
		},
		{
			name: "assertion without type",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - count: 1\n",
			want: "type is required",
		},
		{
			name: "unknown assertion",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - type: trace_magic\n",
			want: "unknown assertion type",
		},
		{
			name: "trace_contains without query",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - type: trace_contains\n",
			want: "query is required for trace_contains",
		},
		{
			name: "trace_order without queries",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - type: trace_order\n",
			want: "queries list is required",
		},
		{
			name: "trace_count without outcome",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - type: trace_count\n    count: 1\n",
			want: "outcome is required for trace_count",
		},
		{
			name: "negative stored_count",
			body: "name: n\ndescription: d\nsteps:\n  - query: test INT int32\nassertions:\n  - type: stored_count\n    count: -1\n",
			want: "count must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStep_Statement(t *testing.T) {
	st, err := Step{Query: "size int64", Expect: "8"}.Statement()
	require.NoError(t, err)
	require.NotNil(t, st.Expect)
	assert.Equal(t, "8", st.Expect.String())

	st, err = Step{Query: "size int64"}.Statement()
	require.NoError(t, err)
	assert.Nil(t, st.Expect)

	_, err = Step{Query: "size int64", Expect: "error()"}.Statement()
	assert.Error(t, err)
}
