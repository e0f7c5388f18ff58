package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/blood-insights/internal/core/render"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// emit writes v as JSON or YAML, or calls text for the human format.
func (c *cli) emit(v any, text func(w io.Writer)) error {
	switch c.format {
	case formatJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return writeYAML(c.out, v)
	default:
		text(c.out)
		return nil
	}
}

// writeYAML goes through JSON so field names match the json tags.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}

func blockStyle(node *yaml.Node) {
	node.Style &^= yaml.FlowStyle
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		node.Style &^= yaml.DoubleQuotedStyle
	}
	for _, child := range node.Content {
		blockStyle(child)
	}
}

func printView(w io.Writer, view render.View) {
	fmt.Fprintf(w, "%s  score %.0f/100\n", view.Gauge.Label, view.Gauge.Score)
	if strings.TrimSpace(view.Summary) != "" {
		fmt.Fprintf(w, "\n%s\n", view.Summary)
	}

	if len(view.Chart) > 0 {
		fmt.Fprintln(w, "\nParameters")
		for _, entry := range view.Chart {
			ref := fmt.Sprintf("%g", entry.Reference)
			if entry.Synthetic {
				ref += "*"
			}
			fmt.Fprintf(w, "  %-24s %10g  ref %-10s %s\n", entry.Parameter, entry.Value, ref, entry.Status)
		}
	}

	if len(view.DiseaseCards) > 0 {
		fmt.Fprintln(w, "\nDisease risks")
		for _, card := range view.DiseaseCards {
			fmt.Fprintf(w, "  [%s] %s: %s (severity %.0f)\n", card.Icon, card.Disease, card.RiskLevel, card.Severity)
			if card.Explanation != "" {
				fmt.Fprintf(w, "      %s\n", card.Explanation)
			}
		}
	}

	if len(view.RecommendationGroups) > 0 {
		fmt.Fprintln(w, "\nRecommendations")
		for _, group := range view.RecommendationGroups {
			fmt.Fprintf(w, "  %s\n", strings.ToUpper(string(group.Category)))
			for _, item := range group.Items {
				fmt.Fprintf(w, "    - (%s) %s\n", item.Priority, item.Action)
			}
		}
	}
}
