// Package runner 负责 diff 预览、执行前确认与最终命令执行。
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
)

// ErrMissingDependency 所需的外部程序不存在。
var ErrMissingDependency = errors.New("required command not found")

// Runner 执行已完成替换的命令。
type Runner struct {
	Env          envset.Set // 子进程环境
	Stdin        io.Reader  // 确认输入，默认 os.Stdin
	Out          io.Writer  // 信息输出，SILENT 时为 io.Discard
	AutoApprove  bool       // 跳过执行前确认
	Silent       bool       // 抑制 diff 预览等展示性输出
	PrintCluster bool       // 信息区展示当前 kubectl 上下文
	EnvFile      string     // 信息区展示用
}

// CheckDependency 确认命令对应的可执行文件在 PATH 中存在。
// 在任何文件被改动之前调用。
func CheckDependency(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDependency, name)
	}

	return nil
}

// Run 依次执行 diff 预览、确认提示与最终命令，返回子进程退出码。
// 最终命令继承标准流并使用合并后的变量集合作为环境。
func (r *Runner) Run(ctx context.Context, tokens []string) (int, error) {
	r.preview(ctx, tokens)

	if !r.AutoApprove {
		if err := r.confirm(ctx, tokens); err != nil {
			return 0, err
		}
	}

	cmd := r.command(ctx, tokens)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return 1, fmt.Errorf("run %s: %w", tokens[0], err)
	}

	return 0, nil
}

// preview 执行仅用于展示的 diff 变体，其退出状态总是被丢弃。
// kubectl diff 对存在差异的资源以非零退出是预期行为。
func (r *Runner) preview(ctx context.Context, tokens []string) {
	if r.Silent {
		return
	}
	diffTokens, ok := DiffCommand(tokens)
	if !ok {
		return
	}

	fmt.Fprintf(r.Out, "diff preview: %s\n", strings.Join(diffTokens, " "))
	if err := r.command(ctx, diffTokens).Run(); err != nil {
		slog.Debug("diff preview exited non-zero", "error", err)
	}
}

// confirm 展示命令与环境信息并等待一行输入。
// 任何输入 (含直接回车) 均视为继续，取消通过中断信号完成。
func (r *Runner) confirm(ctx context.Context, tokens []string) error {
	fmt.Fprintln(r.Out)
	fmt.Fprintf(r.Out, "command: %s\n", strings.Join(tokens, " "))
	if r.EnvFile != "" {
		fmt.Fprintf(r.Out, "env file: %s\n", r.EnvFile)
	}
	if r.PrintCluster {
		if cluster, err := currentContext(ctx); err == nil {
			fmt.Fprintf(r.Out, "cluster: %s\n", cluster)
		} else {
			slog.Warn("failed to read current kubectl context", "error", err)
		}
	}
	fmt.Fprint(r.Out, "press Enter to run, Ctrl+C to abort: ")

	if _, err := bufio.NewReader(r.stdin()).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("read confirmation: %w", err)
	}

	return nil
}

// command 构造继承标准流的子进程。
func (r *Runner) command(ctx context.Context, tokens []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = r.Env.Environ()

	return cmd
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}

	return os.Stdin
}

// currentContext 读取当前 kubectl 上下文名称。
func currentContext(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "kubectl", "config", "current-context").Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}
