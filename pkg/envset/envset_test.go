package envset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
)

// writeFile 写入测试用 env 文件
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// TestLayeredPrecedence 测试三层合并的覆盖顺序
func TestLayeredPrecedence(t *testing.T) {
	dir := t.TempDir()
	defaultEnv := filepath.Join(dir, "default.env")
	targetEnv := filepath.Join(dir, "staging.env")
	functionsEnv := filepath.Join(dir, "functions.env")

	writeFile(t, defaultEnv, "A=1\n")
	writeFile(t, targetEnv, "export A=2\nB=3\n")
	writeFile(t, functionsEnv, "greet() {\n  echo hi\n}\nC=4\n")

	set, err := envset.Layered(
		[]string{"A=0", "HOME=/home/test"},
		envset.Layers{Default: defaultEnv, Target: targetEnv, Functions: functionsEnv},
	)
	require.NoError(t, err)

	assert.Equal(t, "2", set.Get("A"), "target layer should override default and snapshot")
	assert.Equal(t, "3", set.Get("B"))
	assert.Equal(t, "4", set.Get("C"), "functions layer assignments should be applied")
	assert.Equal(t, "/home/test", set.Get("HOME"), "snapshot vars should survive")
}

// TestLayeredMissingTarget 测试显式指定的 target 文件缺失
func TestLayeredMissingTarget(t *testing.T) {
	dir := t.TempDir()

	_, err := envset.Layered(nil, envset.Layers{
		Target: filepath.Join(dir, "missing.env"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, envset.ErrEnvFileNotFound)
}

// TestLayeredOptionalMissing 测试可选层缺失时静默跳过
func TestLayeredOptionalMissing(t *testing.T) {
	dir := t.TempDir()

	set, err := envset.Layered([]string{"X=1"}, envset.Layers{
		Default:   filepath.Join(dir, "default.env"),
		Functions: filepath.Join(dir, "functions.env"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", set.Get("X"))
}

// TestLayeredQuotedValues 测试引号值的解析
func TestLayeredQuotedValues(t *testing.T) {
	dir := t.TempDir()
	targetEnv := filepath.Join(dir, "app.env")
	writeFile(t, targetEnv, "NAME=\"World\"\nGREETING='hello there'\n")

	set, err := envset.Layered(nil, envset.Layers{Target: targetEnv})
	require.NoError(t, err)

	assert.Equal(t, "World", set.Get("NAME"))
	assert.Equal(t, "hello there", set.Get("GREETING"))
}

func TestDeriveBase64(t *testing.T) {
	tests := []struct {
		name    string
		set     envset.Set
		derived string
		want    string
		absent  bool
	}{
		{
			name:    "single line value",
			set:     envset.Set{"FOO": "bar"},
			derived: "FOO_BASE64",
			want:    "YmFy",
		},
		{
			name:    "already derived name is skipped",
			set:     envset.Set{"FOO_BASE64": "YmFy"},
			derived: "FOO_BASE64_BASE64",
			absent:  true,
		},
		{
			name:    "multi line value is skipped",
			set:     envset.Set{"CERT": "line1\nline2"},
			derived: "CERT_BASE64",
			absent:  true,
		},
		{
			name:    "empty value still derives",
			set:     envset.Set{"EMPTY": ""},
			derived: "EMPTY_BASE64",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set.DeriveBase64()
			got, ok := tt.set.Lookup(tt.derived)
			if tt.absent {
				assert.False(t, ok, "%s should not be derived", tt.derived)
				return
			}
			require.True(t, ok, "%s should be derived", tt.derived)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDeriveBase64Once 测试派生不会级联
func TestDeriveBase64Once(t *testing.T) {
	set := envset.Set{"FOO": "bar"}
	set.DeriveBase64()
	set.DeriveBase64()

	assert.Equal(t, "YmFy", set.Get("FOO_BASE64"))
	_, ok := set.Lookup("FOO_BASE64_BASE64")
	assert.False(t, ok, "derived vars must never be re-derived")
}

// TestEnviron 测试序列化顺序确定性
func TestEnviron(t *testing.T) {
	set := envset.Set{"B": "2", "A": "1", "C": "3"}
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, set.Environ())
}
