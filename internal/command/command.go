// Package command 提供 envrun 的命令行入口。
package command

import (
	"context"
	"os"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260827-go-app-envrun/internal/config"
)

// Command envrun 根命令。
//
// 参数形式: envrun <env-file|""|help|version> <command> [args...]
// 第一个参数为 target 层 env 文件路径，空字符串表示跳过该层；
// 其余参数构成要执行的命令。被包装命令的 flag 不属于本工具，
// 因此关闭 flag 解析，参数原样传入。
var Command = &cli.Command{
	Name:            "envrun",
	Usage:           "替换配置文件与命令行中的 ${VAR} 占位符后执行命令",
	ArgsUsage:       `<env-file|""|help|version> <command> [args...]`,
	SkipFlagParsing: true,
	Commands:        []*cli.Command{version.Command},
	Action:          action,
}

func action(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	if len(args) > 0 && args[0] == "version" {
		return version.Command.Run(ctx, []string{"version"})
	}
	if len(args) < 2 || args[0] == "help" {
		return cli.ShowAppHelp(cmd)
	}

	cfg, err := config.Load(config.DefaultPaths())
	if err != nil {
		return err
	}

	app := &App{
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
	}

	return app.Main(ctx, args[0], args[1:])
}
