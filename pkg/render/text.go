package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/thoughttree/pkg/tree"
)

// Default wrap limits, in characters.
const (
	DefaultPrimaryWidth   = 28
	DefaultSecondaryWidth = 34
	DefaultMaxLines       = 3
)

// EmptyThought is shown in place of an empty thought.
const EmptyThought = "—"

// TextConfig sets the wrap limits for the two text blocks of a box.
type TextConfig struct {
	PrimaryWidth   int `json:"primary_width" toml:"primary_width"`
	SecondaryWidth int `json:"secondary_width" toml:"secondary_width"`
	MaxLines       int `json:"max_lines" toml:"max_lines"`
}

// DefaultTextConfig returns 28/34 character lines, three lines per block.
func DefaultTextConfig() TextConfig {
	return TextConfig{
		PrimaryWidth:   DefaultPrimaryWidth,
		SecondaryWidth: DefaultSecondaryWidth,
		MaxLines:       DefaultMaxLines,
	}
}

// WrapText greedily packs the words of s into lines of at most limit
// characters and keeps the first maxLines of them. A single word longer than
// limit gets a line of its own. Characters are counted as runes.
func WrapText(s string, limit, maxLines int) []string {
	words := strings.Fields(s)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		switch {
		case curLen == 0:
			cur.WriteString(w)
			curLen = wl
		case curLen+1+wl <= limit:
			cur.WriteByte(' ')
			cur.WriteString(w)
			curLen += 1 + wl
		default:
			lines = append(lines, cur.String())
			if len(lines) == maxLines {
				return lines
			}
			cur.Reset()
			cur.WriteString(w)
			curLen = wl
		}
	}
	return append(lines, cur.String())
}

// ScoreSuffix returns " (P%)" for a finite score in [0,1], else "".
func ScoreSuffix(n *tree.Node) string {
	if !n.HasScore() {
		return ""
	}
	p := int(math.Floor(*n.Score * 100))
	return " (" + strconv.Itoa(p) + "%)"
}

// PrimaryText is the thought, or "—" when empty, plus the score suffix.
func PrimaryText(n *tree.Node) string {
	thought := EmptyThought
	if n != nil && n.Thought != "" {
		thought = n.Thought
	}
	return thought + ScoreSuffix(n)
}

// SecondaryText is the reason, possibly empty.
func SecondaryText(n *tree.Node) string {
	if n == nil {
		return ""
	}
	return n.Reason
}

// Tooltip is the unwrapped text of a box: primary text, then the reason on
// its own line when present.
func Tooltip(n *tree.Node) string {
	if r := SecondaryText(n); r != "" {
		return PrimaryText(n) + "\n" + r
	}
	return PrimaryText(n)
}
