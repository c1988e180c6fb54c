package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/devreg/devreg/internal/record"
	"gopkg.in/yaml.v3"
)

// printRecord writes one document. Text and json both use relaxed Extended JSON.
func printRecord(w io.Writer, format string, doc record.Document) error {
	b, err := record.MarshalExtJSON(doc)
	if err != nil {
		return err
	}
	if format == "yaml" {
		return writeYAML(w, b)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printRecords writes one document per line in text mode, an array otherwise.
func printRecords(w io.Writer, format string, docs []record.Document) error {
	if format == "text" {
		for _, d := range docs {
			if err := printRecord(w, format, d); err != nil {
				return err
			}
		}
		return nil
	}
	b, err := record.MarshalExtJSONArray(docs)
	if err != nil {
		return err
	}
	if format == "yaml" {
		return writeYAML(w, b)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printValue writes v as json or yaml, or text in text mode.
func printValue(w io.Writer, format string, v interface{}, text interface{}) error {
	switch format {
	case "json":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return writeYAML(w, b)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// writeYAML re-encodes a JSON document as block-style YAML, keeping key order.
func writeYAML(w io.Writer, jsonDoc []byte) error {
	var n yaml.Node
	if err := yaml.Unmarshal(jsonDoc, &n); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	unflow(&n)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&n); err != nil {
		return err
	}
	return enc.Close()
}

// unflow drops the flow style JSON input parses with.
func unflow(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		unflow(c)
	}
}
