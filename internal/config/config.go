// Package config 提供 envrun 的运行选项。
//
// 选项加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - .envrun.yaml / .envrun.json (按 DefaultPaths 顺序搜索)
//  3. 环境变量 - DEFAULT_ENV_PATH、AUTO_APPROVE 等，布尔项取值 yes 生效
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config 运行选项
type Config struct {
	DefaultEnvPath   string `koanf:"default_env_path" desc:"default 层 env 文件路径"`
	FunctionsEnvPath string `koanf:"functions_env_path" desc:"functions 层 env 文件路径"`
	AutoApprove      bool   `koanf:"auto_approve" desc:"跳过执行前确认"`
	Silent           bool   `koanf:"silent" desc:"抑制日志与文件内容回显"`
	PrintK8sCluster  bool   `koanf:"print_k8s_cluster" desc:"信息区展示当前 kubectl 上下文"`
	SubMode          bool   `koanf:"sub_mode" desc:"仅替换并打印结果，不执行命令"`
}

// DefaultConfig 返回默认选项
func DefaultConfig() Config {
	return Config{
		DefaultEnvPath:   "default.env",
		FunctionsEnvPath: "functions.env",
	}
}

// DefaultPaths 返回配置文件搜索路径
func DefaultPaths() []string {
	paths := []string{
		".envrun.yaml",
		".envrun.json",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".envrun.yaml"))
	}

	return paths
}

// envBindings 环境变量与配置键的对应关系
var envBindings = map[string]string{
	"DEFAULT_ENV_PATH":   "default_env_path",
	"FUNCTIONS_ENV_PATH": "functions_env_path",
	"AUTO_APPROVE":       "auto_approve",
	"SILENT":             "silent",
	"PRINT_K8S_CLUSTER":  "print_k8s_cluster",
	"SUB_MODE":           "sub_mode",
}

// boolKeys 布尔选项键
var boolKeys = map[string]bool{
	"auto_approve":      true,
	"silent":            true,
	"print_k8s_cluster": true,
	"sub_mode":          true,
}

// Load 加载选项，按优先级合并：
// 1. 默认值 (最低优先级)
// 2. 配置文件 (按 configPaths 顺序搜索，找到第一个即停止)
// 3. 环境变量 (最高优先级)
func Load(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	for _, path := range configPaths {
		if err := k.Load(file.Provider(path), parserForPath(path)); err == nil {
			slog.Debug("Loaded config from file", "path", path)
			break
		}
	}

	if err := k.Load(confmap.Provider(envOverrides(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// envOverrides 读取进程环境中已设置的选项
func envOverrides() map[string]any {
	overrides := make(map[string]any)
	for env, key := range envBindings {
		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if boolKeys[key] {
			overrides[key] = enabled(value)
		} else {
			overrides[key] = value
		}
	}

	return overrides
}

// enabled 布尔选项的取值约定：yes 生效
func enabled(value string) bool {
	return value == "yes"
}

// parserForPath 按扩展名选择解析器
func parserForPath(path string) koanf.Parser {
	if strings.HasSuffix(path, ".json") {
		return json.Parser()
	}

	return yaml.Parser()
}
