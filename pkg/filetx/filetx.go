// Package filetx 管理候选文件的备份/替换/恢复事务。
//
// 事务从 Begin 备份开始持有，到 Restore 恢复结束。对每个成功备份的
// 文件，Restore 必须且只会生效一次；正常返回、错误传播和信号中止
// 共用同一个恢复入口，重复调用是无害的。
package filetx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lwmacct/260827-go-app-envrun/pkg/envset"
	"github.com/lwmacct/260827-go-app-envrun/pkg/subst"
)

// backupPrefix 备份文件名前缀，同目录隐藏文件
const backupPrefix = ".tmp."

// Tx 一次打开的文件事务。
type Tx struct {
	mu      sync.Mutex
	entries []entry
	done    bool
}

type entry struct {
	path   string
	backup string
}

// BackupPath 返回 path 对应的同目录隐藏备份路径。
func BackupPath(path string) string {
	dir, name := filepath.Split(path)

	return filepath.Join(dir, backupPrefix+name)
}

// Begin 将每个路径重命名为同目录备份并打开事务。
// 任一重命名失败时，已备份的文件会先被恢复再返回错误。
func Begin(paths []string) (*Tx, error) {
	tx := &Tx{}
	for _, path := range paths {
		backup := BackupPath(path)
		if err := os.Rename(path, backup); err != nil {
			if rerr := tx.Restore(); rerr != nil {
				return nil, fmt.Errorf("backup %s: %w (rollback: %v)", path, err, rerr)
			}

			return nil, fmt.Errorf("backup %s: %w", path, err)
		}
		tx.entries = append(tx.entries, entry{path: path, backup: backup})
	}

	return tx, nil
}

// Substitute 读取 path 对应备份的内容，完成占位符替换后写回原路径。
// 返回替换前后的内容，供调用方输出差异或回显。
func (tx *Tx) Substitute(path string, vars envset.Set) (before, after []byte, err error) {
	backup := BackupPath(path)

	before, err = os.ReadFile(backup)
	if err != nil {
		return nil, nil, fmt.Errorf("read backup of %s: %w", path, err)
	}

	after, err = subst.ExpandFile(before, vars)
	if err != nil {
		return nil, nil, fmt.Errorf("substitute %s: %w", path, err)
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(backup); statErr == nil {
		mode = info.Mode()
	}
	if werr := os.WriteFile(path, after, mode); werr != nil {
		return nil, nil, fmt.Errorf("write %s: %w", path, werr)
	}

	return before, after, nil
}

// Restore 将全部备份按逆序重命名回原路径。
// 幂等：第二次调用为空操作；备份已不存在且原文件在位时视为无事可做。
func (tx *Tx) Restore() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return nil
	}
	tx.done = true

	var failures []string
	for i := len(tx.entries) - 1; i >= 0; i-- {
		e := tx.entries[i]
		if err := os.Rename(e.backup, e.path); err != nil {
			if os.IsNotExist(err) {
				if _, statErr := os.Stat(e.path); statErr == nil {
					continue
				}
			}
			failures = append(failures, fmt.Sprintf("%s: %v", e.path, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("restore failed: %s", strings.Join(failures, "; "))
	}

	return nil
}
