package cli

import (
	"fmt"
	"strings"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// TreeFormatter renders the demand tree of a solve
type TreeFormatter struct {
	useColors bool
	useEmojis bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// FormatTree renders a requirement tree with visual indicators
func (f *TreeFormatter) FormatTree(root *planning.Requirement) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *planning.Requirement, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	recipeText := ""
	if node.RecipeID != "" && node.RecipeID != node.Resource.ID {
		recipeText = fmt.Sprintf(" via %s", node.RecipeID)
	}

	amountText := ""
	if node.Method != planning.RequirementRoot {
		amountText = fmt.Sprintf(" %s/min", formatRate(node.Amount))
	}

	builder.WriteString(fmt.Sprintf("%s%s %s%s [%s%s%s]%s\n",
		linePrefix,
		f.getMethodIcon(node.Method),
		node.Name,
		amountText,
		f.getMethodColor(node.Method),
		node.Method,
		f.colorReset(),
		recipeText,
	))

	if len(node.Children) > 0 {
		var childPrefix string
		if isRoot {
			childPrefix = ""
		} else if isLast {
			childPrefix = prefix + "    "
		} else {
			childPrefix = prefix + "│   "
		}

		for i, child := range node.Children {
			f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
		}
	}
}

// getMethodIcon returns a visual indicator for how a node is satisfied
func (f *TreeFormatter) getMethodIcon(method planning.RequirementMethod) string {
	if !f.useEmojis {
		switch method {
		case planning.RequirementCraft, planning.RequirementSolved:
			return "[+]"
		case planning.RequirementUnresolved:
			return "[?]"
		case planning.RequirementCycle:
			return "[~]"
		case planning.RequirementRoot:
			return "[*]"
		default:
			return "[ ]"
		}
	}

	switch method {
	case planning.RequirementCraft:
		return "🔧"
	case planning.RequirementSolved:
		return "🧮"
	case planning.RequirementUnresolved:
		return "❓"
	case planning.RequirementCycle:
		return "🔁"
	case planning.RequirementRoot:
		return "📦"
	default:
		return "⛏"
	}
}

// getMethodColor returns ANSI color code for a method
func (f *TreeFormatter) getMethodColor(method planning.RequirementMethod) string {
	if !f.useColors {
		return ""
	}

	switch method {
	case planning.RequirementCraft, planning.RequirementSolved:
		return "\033[32m" // Green
	case planning.RequirementUnresolved:
		return "\033[31m" // Red
	case planning.RequirementCycle:
		return "\033[33m" // Yellow
	default:
		return ""
	}
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a compact summary of the tree
func (f *TreeFormatter) FormatTreeSummary(root *planning.Requirement) string {
	if root == nil {
		return "No demand tree"
	}

	counts := root.CountByMethod()
	return fmt.Sprintf(
		"Tree: %d nodes (%d CRAFT, %d SOLVED, %d RAW, %d UNRESOLVED, %d CYCLE), depth=%d, raw resources=%d",
		root.CountNodes(),
		counts[planning.RequirementCraft],
		counts[planning.RequirementSolved],
		counts[planning.RequirementRaw],
		counts[planning.RequirementUnresolved],
		counts[planning.RequirementCycle],
		root.TotalDepth(),
		len(root.RawResources()),
	)
}

// FormatCompactTree renders the tree on a single line in breadth-first order
func (f *TreeFormatter) FormatCompactTree(root *planning.Requirement) string {
	if root == nil {
		return "(empty)"
	}

	nodes := root.FlattenToList()
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.Method == planning.RequirementRoot {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%c:%s]", node.Method[0], node.Name))
	}
	return strings.Join(parts, " → ")
}
