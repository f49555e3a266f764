package output

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

// toYAML converts a JSON document to YAML keeping object key order.
func toYAML(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid JSON")
	}

	node, err := yamlNode(gjson.ParseBytes(raw))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)

	if err = enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode node: %w", err)
	}
	if err = enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

func yamlNode(v gjson.Result) (*yaml.Node, error) {
	switch {
	case v.IsObject():
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

		var err error
		v.ForEach(func(key, value gjson.Result) bool {
			var child *yaml.Node
			if child, err = yamlNode(value); err != nil {
				return false
			}

			node.Content = append(node.Content, scalar("!!str", key.String()), child)
			return true
		})

		return node, err
	case v.IsArray():
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

		var err error
		v.ForEach(func(_, value gjson.Result) bool {
			var child *yaml.Node
			if child, err = yamlNode(value); err != nil {
				return false
			}

			node.Content = append(node.Content, child)
			return true
		})

		return node, err
	}

	switch v.Type {
	case gjson.String:
		return scalar("!!str", v.String()), nil
	case gjson.Number:
		if v.Num == float64(v.Int()) {
			return scalar("!!int", strconv.FormatInt(v.Int(), 10)), nil
		}
		return scalar("!!float", v.Raw), nil
	case gjson.True, gjson.False:
		return scalar("!!bool", v.Raw), nil
	case gjson.Null:
		return scalar("!!null", "null"), nil
	default:
		return nil, fmt.Errorf("unsupported JSON value (type = %s)", v.Type)
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
