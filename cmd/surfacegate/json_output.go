package main

import (
	"encoding/json"
	"fmt"
	"io"
)

func printJSON(out io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(out, string(encoded))
	return nil
}
