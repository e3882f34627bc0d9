package runner

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffCommand 为 kubectl apply / helm 命令派生仅用于展示的 diff 变体。
//
//	kubectl apply -f x.yml  →  kubectl diff -f x.yml
//	helm upgrade app chart  →  helm diff upgrade app chart
//
// 其余命令没有 diff 变体，返回 false。
func DiffCommand(tokens []string) ([]string, bool) {
	if len(tokens) >= 2 && tokens[0] == "kubectl" && tokens[1] == "apply" {
		out := append([]string(nil), tokens...)
		out[1] = "diff"

		return out, true
	}

	if len(tokens) >= 1 && tokens[0] == "helm" {
		out := make([]string, 0, len(tokens)+1)
		out = append(out, tokens[0], "diff")
		out = append(out, tokens[1:]...)

		return out, true
	}

	return nil, false
}

// EchoDiff 输出单个文件替换前后的行差异，供确认前检查。
func EchoDiff(w io.Writer, path string, before, after []byte) {
	if bytes.Equal(before, after) {
		fmt.Fprintf(w, "%s: unchanged\n", path)

		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(string(before), string(after), false))

	var b strings.Builder
	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			prefix = " "
		}
		for _, line := range lines {
			b.WriteString(prefix + line + "\n")
		}
	}

	fmt.Fprintf(w, "%s:\n%s", path, b.String())
}
