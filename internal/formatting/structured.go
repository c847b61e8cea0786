package formatting

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func writeJSON(w io.Writer, v interface{}) error {
	_, err := fmt.Fprintln(w, PrettyJSON(v))
	return err
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	return enc.Close()
}
