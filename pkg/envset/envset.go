// Author: lwmacct (https://github.com/lwmacct)
// Package envset 提供分层环境变量集合。
//
// 变量来源优先级 (从低到高)：
//  1. 进程环境快照
//  2. default 层 - 默认 env 文件 (可选)
//  3. target 层 - 命令行指定的 env 文件 (指定后必须存在)
//  4. functions 层 - 仅提取 key=value 赋值行 (可选)
//
// 各层均为 dotenv 格式 (支持 export 前缀、引号值、# 注释)，
// 通过 koanf 合并，后加载的层覆盖先加载的层。
package envset

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// ErrEnvFileNotFound 显式指定的 env 文件不存在。
var ErrEnvFileNotFound = errors.New("env file not found")

// nameRe 合法变量名
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// assignRe 匹配赋值行 (可带 export 前缀)，用于过滤 functions 层中的函数体
var assignRe = regexp.MustCompile(`^\s*(?:export\s+)?[A-Za-z_][A-Za-z0-9_]*\s*=`)

// Set 合并后的变量映射。各阶段显式传递该映射，
// 除初始快照外不再读取进程环境。
type Set map[string]string

// Lookup 返回变量值及其是否存在。
func (s Set) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Get 返回变量值，未定义时返回空字符串。
func (s Set) Get(name string) string {
	return s[name]
}

// Names 返回排序后的全部变量名，保证迭代顺序可复现。
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Environ 将集合序列化为 KEY=value 切片，可直接作为子进程环境。
func (s Set) Environ() []string {
	environ := make([]string, 0, len(s))
	for _, name := range s.Names() {
		environ = append(environ, name+"="+s[name])
	}

	return environ
}

// Layers 三层 env 文件路径。
type Layers struct {
	Default   string // 可选，不存在时静默跳过
	Target    string // 非空时必须存在
	Functions string // 可选，仅提取赋值行
}

// Layered 从进程环境快照和三层 env 文件构建合并后的变量集合。
//
// Target 非空但文件不存在时返回 [ErrEnvFileNotFound]；
// Default 与 Functions 不存在时静默跳过。
func Layered(environ []string, layers Layers) (Set, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(fromEnviron(environ), "."), nil); err != nil {
		return nil, fmt.Errorf("load environment snapshot: %w", err)
	}

	if err := loadLayer(k, layers.Default, false, false); err != nil {
		return nil, err
	}
	if err := loadLayer(k, layers.Target, true, false); err != nil {
		return nil, err
	}
	if err := loadLayer(k, layers.Functions, false, true); err != nil {
		return nil, err
	}

	all := k.All()
	set := make(Set, len(all))
	for name, value := range all {
		set[name] = fmt.Sprintf("%v", value)
	}

	return set, nil
}

// loadLayer 读取单层 env 文件并合并进 k。
// required 层缺失视为错误；assignOnly 层先过滤出赋值行。
func loadLayer(k *koanf.Koanf, path string, required, assignOnly bool) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return fmt.Errorf("%w: %s", ErrEnvFileNotFound, path)
			}

			return nil
		}

		return fmt.Errorf("read env file %s: %w", path, err)
	}

	if assignOnly {
		data = assignmentLines(data)
	}

	if err := k.Load(rawbytes.Provider(data), dotenv.Parser()); err != nil {
		return fmt.Errorf("parse env file %s: %w", path, err)
	}

	return nil
}

// fromEnviron 将 KEY=value 切片转换为映射，过滤非法变量名。
func fromEnviron(environ []string) map[string]any {
	vars := make(map[string]any, len(environ))
	for _, env := range environ {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !nameRe.MatchString(parts[0]) {
			continue
		}
		vars[parts[0]] = parts[1]
	}

	return vars
}

// assignmentLines 仅保留 key=value 赋值行。
// functions 层允许包含 shell 函数定义等嵌入逻辑，
// 本实现只保留其数据契约，不执行任何代码。
func assignmentLines(data []byte) []byte {
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if assignRe.MatchString(line) {
			kept = append(kept, line)
		}
	}

	return []byte(strings.Join(kept, "\n"))
}
