package envset

import (
	"encoding/base64"
	"strings"
)

// DeriveBase64 为符合条件的条目生成 <name>_BASE64 派生变量。
//
// 条件：变量名匹配 ^[a-zA-Z0-9_]+$、值为单行、且名称不以 _BASE64 结尾。
// 派生值为去除换行后的 base64 编码。派生在分层合并完成后执行一次，
// 全部原始条目扫描结束后才写入，派生键与既有同名键冲突时派生值胜出。
// 该步骤不会失败，不合条件的条目直接跳过。
func (s Set) DeriveBase64() {
	derived := make(map[string]string)
	for _, name := range s.Names() {
		value := s[name]
		if !nameRe.MatchString(name) {
			continue
		}
		if strings.HasSuffix(name, "_BASE64") {
			continue
		}
		if strings.Contains(value, "\n") {
			continue
		}

		encoded := base64.StdEncoding.EncodeToString([]byte(value))
		derived[name+"_BASE64"] = encoded
	}

	for name, value := range derived {
		s[name] = value
	}
}
