package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specsDir(name string) string {
	dir, _ := filepath.Abs(filepath.Join("../../testdata/specs", name))
	return dir
}

func loadCode(t *testing.T, dir string) string {
	t.Helper()
	_, err := LoadSpec(dir)
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
	return le.Code
}

func TestLoadSpec_FS(t *testing.T) {
	res, err := LoadSpec(specsDir("fs"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.FileCount)
	assert.True(t, res.Spec.HasModel)
	assert.Len(t, res.Spec.Sigs, 4)

	var defs, trans []string
	for _, p := range res.Spec.Definitions {
		defs = append(defs, p.Name)
	}
	for _, p := range res.Spec.Transitions {
		trans = append(trans, p.Label())
	}
	assert.Equal(t, []string{"defs/unchanged", "defs/keep_rest", "defs/maybe_grow"}, defs)
	assert.Equal(t, []string{"write", "chmod", "truncate", "crash_recover"}, trans)
}

func TestLoadSpec_Errors(t *testing.T) {
	empty := t.TempDir()
	file := filepath.Join(t.TempDir(), "spec.cue")
	require.NoError(t, os.WriteFile(file, []byte("x: 1\n"), 0644))

	badSyntax := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badSyntax, "spec.cue"), []byte("package bad\n\nx: {\n"), 0644))

	badExpr := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badExpr, "spec.cue"), []byte(
		"package bad\n\ndefinitions: {}\ntransitions: preds: p: body: {op: \"~~\", left: {var: \"a\"}, right: {var: \"b\"}}\n"), 0644))

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"not found", filepath.Join(empty, "missing"), ErrCodeNotFound},
		{"not a directory", file, ErrCodeNotFound},
		{"no files", empty, ErrCodeNoFiles},
		{"syntax error", badSyntax, ErrCodeLoadFailed},
		{"missing unit", specsDir("incomplete"), ErrCodeMissingUnit},
		{"bad expression", badExpr, ErrCodeInvalidExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loadCode(t, tt.dir))
		})
	}
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"definitions", ErrCodeMissingUnit},
		{"transitions", ErrCodeMissingUnit},
		{"cue", ErrCodeBuildFailed},
		{"transitions.preds.write.body.and[0]", ErrCodeInvalidExpr},
		{"definitions.preds.unchanged.params[0].names", ErrCodeInvalidExpr},
		{"definitions.sigs.Inode", ErrCodeGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field), tt.field)
	}
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles(specsDir("fs"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
