package render

// Category names the semantic role of a rendered fragment.
type Category int

const (
	CategoryNull Category = iota
	CategoryNumber
	CategoryBoolean
	CategoryString
	CategoryKey
	CategoryBracket
	CategoryComma
	CategoryColon
	// CategoryHighlight wraps pattern matches on nodes other than the current path.
	CategoryHighlight
	// CategoryHighlightCurrent wraps pattern matches on the current path.
	CategoryHighlightCurrent
)

// Categories lists every Category in declaration order.
var Categories = []Category{
	CategoryNull,
	CategoryNumber,
	CategoryBoolean,
	CategoryString,
	CategoryKey,
	CategoryBracket,
	CategoryComma,
	CategoryColon,
	CategoryHighlight,
	CategoryHighlightCurrent,
}

func (c Category) String() string {
	switch c {
	case CategoryNull:
		return "null"
	case CategoryNumber:
		return "number"
	case CategoryBoolean:
		return "boolean"
	case CategoryString:
		return "string"
	case CategoryKey:
		return "key"
	case CategoryBracket:
		return "bracket"
	case CategoryComma:
		return "comma"
	case CategoryColon:
		return "colon"
	case CategoryHighlight:
		return "highlight"
	case CategoryHighlightCurrent:
		return "highlight_current"
	default:
		return "unknown"
	}
}

// StyleFunc decorates a single-line fragment for display. It must not add or
// remove line breaks.
type StyleFunc func(string) string

// Styles supplies the decoration for each Category and the indentation unit
// used for every nesting level.
type Styles interface {
	Style(c Category) StyleFunc
	Indent() string
}

// DefaultIndent is the indentation unit used when a Styles leaves it empty.
const DefaultIndent = "  "

// PlainStyles renders every category undecorated.
type PlainStyles struct {
	Space string
}

func identity(s string) string { return s }

// Style returns the identity decoration.
func (PlainStyles) Style(Category) StyleFunc { return identity }

// Indent returns Space, or DefaultIndent when Space is empty.
func (s PlainStyles) Indent() string {
	if s.Space == "" {
		return DefaultIndent
	}
	return s.Space
}
