// Package argscan 从已完成替换的命令行 token 中识别候选文件。
package argscan

import (
	"os"
	"strings"
)

// Candidates 返回 token 列表中指向现存普通文件的路径，按出现顺序去重。
//
// 普通 token 直接按文件路径检查；以 - 开头的 flag token 对每个 = 位置
// 取其后的完整剩余后缀作为候选，--a=b=c/path 会同时尝试 b=c/path 与
// c/path。只保留磁盘上实际存在的文件。
func Candidates(tokens []string) []string {
	seen := make(map[string]bool)
	var paths []string

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}

	for _, token := range tokens {
		if !strings.HasPrefix(token, "-") {
			add(token)
			continue
		}
		for i := range len(token) {
			if token[i] == '=' {
				add(token[i+1:])
			}
		}
	}

	return paths
}
