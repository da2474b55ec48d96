package alipay

import (
	"sort"
	"strings"
)

// BuildSignContent 构造待签名的规范化字符串。
// 规则：剔除空键、空值与 sign 本身，按键名字节序升序排列，
// 以 key=value 形式用 & 连接。值保持原样，不做 URL 编码，
// 编码属于传输层的职责。同一参数集合无论传入顺序如何，输出字节一致。
func BuildSignContent(params map[string]string) string {
	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(params))
	for key, value := range params {
		key = strings.TrimSpace(key)
		if key == "" || key == "sign" {
			continue
		}
		if value == "" {
			continue
		}
		pairs = append(pairs, pair{key: key, value: value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+p.value)
	}
	return strings.Join(parts, "&")
}
