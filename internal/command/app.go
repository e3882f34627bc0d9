package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260827-go-app-envrun/internal/config"
	"github.com/lwmacct/260827-go-app-envrun/pkg/argscan"
	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
	"github.com/lwmacct/260827-go-app-envrun/pkg/filetx"
	"github.com/lwmacct/260827-go-app-envrun/pkg/runner"
	"github.com/lwmacct/260827-go-app-envrun/pkg/subst"
)

// App 将各阶段串成单次执行流水线：
// 分层合并 → base64 派生 → 命令行替换 → 候选文件识别 →
// 备份/替换 → diff 预览/确认/执行 → 恢复。
type App struct {
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Exit   func(int) // 测试可替换
}

// Main 执行完整流水线。envFile 为 target 层路径，空字符串表示跳过；
// command 为要执行的命令及其参数。
//
// 子进程的非零退出码通过 cli.Exit 透传为本工具的退出码；
// 其余致命错误按普通 error 返回，由入口统一以退出码 1 处理。
func (a *App) Main(ctx context.Context, envFile string, command []string) error {
	cfg := *a.Config
	if cfg.SubMode {
		// 模板模式：仅替换并打印，不提示也不执行
		cfg.AutoApprove = true
		cfg.Silent = true
	}

	echo := io.Writer(a.Stderr)
	if cfg.Silent {
		echo = io.Discard
	}

	vars, err := envset.Layered(os.Environ(), envset.Layers{
		Default:   cfg.DefaultEnvPath,
		Target:    envFile,
		Functions: cfg.FunctionsEnvPath,
	})
	if err != nil {
		return err
	}
	vars.DeriveBase64()

	tokens, err := subst.ExpandTokens(command, vars)
	if err != nil {
		return err
	}

	if !cfg.SubMode {
		// 文件被改动前确认目标命令存在
		if err := runner.CheckDependency(tokens[0]); err != nil {
			return err
		}
	}

	paths := argscan.Candidates(tokens)
	tx, err := filetx.Begin(paths)
	if err != nil {
		return err
	}

	// 备份到恢复之间收到中断/终止信号时：先恢复再以成功状态退出，
	// 语义是"用户选择取消"而非系统故障
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, os.Interrupt, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigc; !ok {
			return
		}
		if rerr := tx.Restore(); rerr != nil {
			slog.Error("restore after signal failed", "error", rerr)
		}
		fmt.Fprintln(a.Stderr, "command aborted")
		a.Exit(0)
	}()
	defer func() {
		signal.Stop(sigc)
		close(sigc)
		if rerr := tx.Restore(); rerr != nil {
			slog.Error("restore failed", "error", rerr)
		}
	}()

	for _, path := range paths {
		before, after, serr := tx.Substitute(path, vars)
		if serr != nil {
			return serr
		}
		if cfg.SubMode {
			fmt.Fprintf(a.Stdout, "%s", after)
		} else {
			runner.EchoDiff(echo, path, before, after)
		}
	}

	if cfg.SubMode {
		return nil
	}

	r := &runner.Runner{
		Env:          vars,
		Stdin:        a.Stdin,
		Out:          echo,
		AutoApprove:  cfg.AutoApprove,
		Silent:       cfg.Silent,
		PrintCluster: cfg.PrintK8sCluster,
		EnvFile:      envFile,
	}
	code, err := r.Run(ctx, tokens)
	if err != nil {
		return err
	}
	if code != 0 {
		return cli.Exit("", code)
	}

	return nil
}
