// Package subst 提供 ${VAR} 占位符替换。
//
// 仅替换花括号形式 ${VAR}；裸 $ 原样保留，文件内容中常见的
// 货币金额、shell 脚本等不会被误替换。未定义变量替换为空字符串，
// 这是与 envsubst 一致的已知尖锐边界，调用方不应依赖未定义变量报错。
package subst

import (
	"fmt"

	"github.com/drone/envsubst"

	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
)

// Expand 替换 s 中的全部 ${NAME} 占位符。
// ${ 语法错误 (如未闭合的花括号) 会返回解析错误。
func Expand(s string, vars envset.Set) (string, error) {
	out, err := envsubst.Eval(s, vars.Get)
	if err != nil {
		return "", fmt.Errorf("expand placeholders: %w", err)
	}

	return out, nil
}

// ExpandTokens 逐个替换命令行 token，返回新的 token 列表。
func ExpandTokens(tokens []string, vars envset.Set) ([]string, error) {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		expanded, err := Expand(token, vars)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", token, err)
		}
		out[i] = expanded
	}

	return out, nil
}

// ExpandFile 替换文件内容。额外绑定 DOLLAR="$"，
// 文件可用 ${DOLLAR} 表达字面美元符号；集合中已有 DOLLAR 时以集合为准。
func ExpandFile(content []byte, vars envset.Set) ([]byte, error) {
	mapping := func(name string) string {
		if name == "DOLLAR" {
			if _, ok := vars.Lookup("DOLLAR"); !ok {
				return "$"
			}
		}

		return vars.Get(name)
	}

	out, err := envsubst.Eval(string(content), mapping)
	if err != nil {
		return nil, fmt.Errorf("expand placeholders: %w", err)
	}

	return []byte(out), nil
}
