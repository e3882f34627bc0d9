package subst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
	"github.com/lwmacct/260827-go-app-envrun/pkg/subst"
)

func TestExpand(t *testing.T) {
	vars := envset.Set{"A": "10", "REGION": "us-east"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "braced form is substituted",
			input: "total: ${A}",
			want:  "total: 10",
		},
		{
			name:  "bare dollar is preserved",
			input: "price: $5, total: ${A}",
			want:  "price: $5, total: 10",
		},
		{
			name:  "unbraced name is not substituted",
			input: "region: $REGION",
			want:  "region: $REGION",
		},
		{
			name:  "undefined var becomes empty",
			input: "value: ${MISSING}",
			want:  "value: ",
		},
		{
			name:  "no placeholders",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "adjacent placeholders",
			input: "${A}${REGION}",
			want:  "10us-east",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := subst.Expand(tt.input, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestExpandTokens 测试命令行 token 的逐个替换
func TestExpandTokens(t *testing.T) {
	vars := envset.Set{"REGION": "us-east"}

	got, err := subst.ExpandTokens([]string{"deploy", "--region=${REGION}"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy", "--region=us-east"}, got)
}

// TestExpandFile 测试文件内容替换与 DOLLAR 绑定
func TestExpandFile(t *testing.T) {
	vars := envset.Set{"N": "3"}

	got, err := subst.ExpandFile([]byte("cost ${DOLLAR}5 for ${N} items, raw $7\n"), vars)
	require.NoError(t, err)
	assert.Equal(t, "cost $5 for 3 items, raw $7\n", string(got))
}

// TestExpandFileDollarOverride 测试集合中的 DOLLAR 优先于内置绑定
func TestExpandFileDollarOverride(t *testing.T) {
	vars := envset.Set{"DOLLAR": "USD"}

	got, err := subst.ExpandFile([]byte("${DOLLAR}"), vars)
	require.NoError(t, err)
	assert.Equal(t, "USD", string(got))
}
