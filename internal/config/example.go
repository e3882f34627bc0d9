package config

import (
	"bytes"
	"reflect"
	"strconv"

	yamlv3 "go.yaml.in/yaml/v3"
)

// ExampleYAML 将选项结构体序列化为带注释的 YAML 示例。
//
// 通过 desc tag 自动生成行尾注释，适用于生成 .envrun.example.yaml。
func ExampleYAML(cfg Config) []byte {
	node := &yamlv3.Node{Kind: yamlv3.MappingNode}
	node.HeadComment = "envrun 配置示例, 复制为 .envrun.yaml 并按需修改"

	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" {
			continue
		}

		keyNode := &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key}
		valNode := scalarNode(val.Field(i))
		valNode.LineComment = field.Tag.Get("desc")
		node.Content = append(node.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	_ = enc.Encode(node)
	_ = enc.Close()

	return buf.Bytes()
}

// scalarNode 将选项值转换为 yamlv3.Node，选项结构体只含字符串和布尔字段。
func scalarNode(val reflect.Value) *yamlv3.Node {
	if val.Kind() == reflect.Bool {
		return &yamlv3.Node{
			Kind:  yamlv3.ScalarNode,
			Value: strconv.FormatBool(val.Bool()),
		}
	}

	return &yamlv3.Node{
		Kind:  yamlv3.ScalarNode,
		Value: val.String(),
		Style: yamlv3.DoubleQuotedStyle,
	}
}
