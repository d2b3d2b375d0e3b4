package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// emit writes v to stdout as indented JSON or YAML. YAML is rendered from
// the JSON form so both formats share field names, key order and key encodings.
func emit(cmd *cobra.Command, format string, v any) error {
	bz, err := render(format, v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(bz)
	return err
}

func render(format string, v any) ([]byte, error) {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	switch format {
	case "", "json":
		return append(bz, '\n'), nil
	case "yaml":
		var generic yaml.MapSlice
		if err := yaml.Unmarshal(bz, &generic); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported output %q (json|yaml)", format)
	}
}
