// Package charts prepares query results for the dashboard charts: sunburst
// nodes, contingency bubbles, heatmap grids and dropdown options. It never
// renders figures itself.
package charts

import (
	"fmt"
	"nerisdash/pkg/format"
	"sort"
	"strings"
)

const (
	// Separator joins the tiers of a hierarchical type path.
	Separator = "||"
	// RootID is the ID of the optional root node.
	RootID = "all"
	// NotReported sorts last in category lists.
	NotReported = "NOT_REPORTED"
)

// SplitHierarchyPath splits "a||b||c" into its tiers.
func SplitHierarchyPath(path string) []string {
	return strings.Split(path, Separator)
}

// PathCount is the number of rows with a given hierarchical path.
type PathCount struct {
	Path  string `db:"path" json:"path"`
	Count int64  `db:"count" json:"count"`
}

// Node is one sunburst node. IDs are full paths so that they are unique and
// usable as prefix filters.
type Node struct {
	ID              string `json:"ids"`
	Label           string `json:"labels"`
	Parent          string `json:"parents"`
	Value           int64  `json:"values"`
	CumulativeCount int64  `json:"cumulative_count"`
	LabelWithCount  string `json:"labels_with_counts"`
	HoverText       string `json:"hover_text"`
}

// BuildTieredTypeNodes builds the sunburst nodes of counts. A non-empty
// rootLabel adds a root node with ID RootID holding the total. Leaf values
// carry the count of their exact path; cumulative counts include descendants.
func BuildTieredTypeNodes(counts []PathCount, rootLabel string) []Node {
	merged := map[string]int64{}
	for _, c := range counts {
		merged[c.Path] += c.Count
	}
	paths := make([]PathCount, 0, len(merged))
	var total int64
	for p, n := range merged {
		paths = append(paths, PathCount{Path: p, Count: n})
		total += n
	}
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Count != paths[j].Count {
			return paths[i].Count > paths[j].Count
		}

		return paths[i].Path < paths[j].Path
	})

	var nodes []*Node
	index := map[string]*Node{}
	if rootLabel != "" {
		root := &Node{ID: RootID, Label: rootLabel, CumulativeCount: total}
		nodes = append(nodes, root)
	}

	for _, pc := range paths {
		tiers := SplitHierarchyPath(pc.Path)
		for i, tier := range tiers {
			id := strings.Join(tiers[:i+1], Separator)
			node, ok := index[id]
			if !ok {
				parent := strings.Join(tiers[:i], Separator)
				if i == 0 && rootLabel != "" {
					parent = RootID
				}
				node = &Node{ID: id, Label: format.EnumText(tier), Parent: parent}
				index[id] = node
				nodes = append(nodes, node)
			}
			node.CumulativeCount += pc.Count
			if i == len(tiers)-1 {
				node.Value += pc.Count
			}
		}
	}

	return formatLabels(nodes)
}

func formatLabels(nodes []*Node) []Node {
	var total int64
	if len(nodes) > 0 && nodes[0].ID == RootID && nodes[0].Parent == "" {
		total = nodes[0].CumulativeCount
	} else {
		for _, n := range nodes {
			if n.Parent == "" {
				total += n.CumulativeCount
			}
		}
	}

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		count := format.Int(n.CumulativeCount)
		if total > 0 {
			count = fmt.Sprintf("%s (%s)", count, format.Percent(float64(n.CumulativeCount)/float64(total)*100))
		}

		n.LabelWithCount = n.Label
		if n.CumulativeCount > 0 {
			n.LabelWithCount = n.Label + "<br>" + count
		}

		n.HoverText = n.Label + ": " + count
		if n.Parent != "" {
			n.HoverText += "<br>Parent: " + n.Parent
		}
		out = append(out, *n)
	}

	return out
}

// SortNotReportedLast sorts values with NotReported placed last.
func SortNotReportedLast(values []string) []string {
	out := append([]string(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i] == NotReported, out[j] == NotReported
		if a != b {
			return b
		}

		return out[i] < out[j]
	})

	return out
}

// TruncatePath keeps the first maxTiers tiers of path. maxTiers <= 0 keeps
// the whole path.
func TruncatePath(path string, maxTiers int) string {
	if maxTiers <= 0 {
		return path
	}
	tiers := SplitHierarchyPath(path)
	if len(tiers) <= maxTiers {
		return path
	}

	return strings.Join(tiers[:maxTiers], Separator)
}
