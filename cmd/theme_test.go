package cmd

import (
	"testing"

	"github.com/iksnae/mirova/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeCommand(t *testing.T) {
	setupCommandTest(t)

	steps := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"theme"}, want: "dark\n"},
		{args: []string{"theme", "light"}},
		{args: []string{"theme"}, want: "light\n"},
		{args: []string{"theme", "toggle"}},
		{args: []string{"theme"}, want: "dark\n"},
		{args: []string{"theme", "sepia"}, wantErr: true},
		{args: []string{"theme"}, want: "dark\n"},
	}

	for _, step := range steps {
		out, err := runCommand(t, step.args...)
		if step.wantErr {
			assert.Error(t, err, "%v", step.args)
			continue
		}
		require.NoError(t, err, "%v", step.args)
		if step.want != "" {
			assert.Equal(t, step.want, out, "%v", step.args)
		}
	}
}

func TestThemeCommand_StoredTheme(t *testing.T) {
	paths := setupCommandTest(t)
	testutil.CreateSQLiteFixture(t, paths.Database)

	out, err := runCommand(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)
}
