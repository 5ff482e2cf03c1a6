package xmldiff

// Config carries every tunable of a diff run. Construct via Option
// functions passed to New, mirroring the teacher's Config/DiffOption
// pattern (deepdiff.Config).
type Config struct {
	// F is the similarity acceptance threshold the matcher requires of
	// leaf_ratio * child_ratio before recording a match (spec.md §4.3).
	F float64
	// T is reserved for root-similarity decisions (spec.md §4.3).
	T float64
	// UniqueAttrs lists qualified attribute names treated as identity
	// keys by LeafRatio, checked in order (spec.md §4.2). Defaults to
	// the XML "id" attribute in the XML namespace's absence of one, as
	// spec.md §4.2 specifies.
	UniqueAttrs []QName
	// TextTags are block-like tags whose inline content is treated as a
	// single text run by the placeholder substitution pass.
	TextTags []QName
	// FormattingTags are inline tags whose open/close boundaries
	// participate in character-level text diff via placeholders.
	FormattingTags []QName
	// MoveDeltas enables move detection in the edit script, matching
	// the teacher's Config.MoveDeltas name. Defaults to true: spec.md's
	// scenarios all expect a reparented or reordered matched node to
	// surface as a single MoveNode. Disabling it falls back to
	// describing a reparented node as delete+insert, and drops
	// same-parent realignment moves entirely (score-1 matches keep
	// their original relative order in the rendered output).
	MoveDeltas bool
	// Whitespace selects how whitespace is normalized before diffing.
	Whitespace WhitespaceMode
}

// WhitespaceMode selects a whitespace-normalization policy, matching the
// CLI surface spec.md §4/§6 documents.
type WhitespaceMode uint8

const (
	// WhitespaceNone preserves all whitespace verbatim.
	WhitespaceNone WhitespaceMode = iota
	// WhitespaceTags drops ignorable whitespace text nodes that sit
	// only between element tags.
	WhitespaceTags
	// WhitespaceText collapses whitespace runs inside TextTags elements
	// only.
	WhitespaceText
	// WhitespaceBoth applies both TAGS and TEXT normalization.
	WhitespaceBoth
)

// Option adjusts a Config. Zero or more Options can be passed to New.
type Option func(cfg *Config)

// defaultUniqueAttrs is the XML "id" attribute, spec.md §4.2's default.
func defaultUniqueAttrs() []QName {
	return []QName{{Space: xmlNamespaceURI, Local: "id"}}
}

// defaultConfig returns the configuration New starts from before
// applying Options.
func defaultConfig() Config {
	return Config{
		F:           0.5,
		T:           0.5,
		UniqueAttrs: defaultUniqueAttrs(),
		MoveDeltas:  true,
	}
}

// WithThreshold sets the similarity acceptance threshold F.
func WithThreshold(f float64) Option {
	return func(cfg *Config) { cfg.F = f }
}

// WithRootThreshold sets the reserved root-similarity threshold T.
func WithRootThreshold(t float64) Option {
	return func(cfg *Config) { cfg.T = t }
}

// WithUniqueAttrs overrides the identity-key attribute list.
func WithUniqueAttrs(attrs ...QName) Option {
	return func(cfg *Config) { cfg.UniqueAttrs = attrs }
}

// WithTextTags sets the block-like tags whose inline content gets
// placeholder substitution.
func WithTextTags(tags ...QName) Option {
	return func(cfg *Config) { cfg.TextTags = tags }
}

// WithFormattingTags sets the inline tags whose boundaries participate
// in text diff via placeholders.
func WithFormattingTags(tags ...QName) Option {
	return func(cfg *Config) { cfg.FormattingTags = tags }
}

// WithMoves enables move detection in the edit script.
func WithMoves(enabled bool) Option {
	return func(cfg *Config) { cfg.MoveDeltas = enabled }
}

// WithWhitespace sets the whitespace-normalization policy.
func WithWhitespace(mode WhitespaceMode) Option {
	return func(cfg *Config) { cfg.Whitespace = mode }
}
