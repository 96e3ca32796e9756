package doc

// SpanKind is a semantic inline span.
type SpanKind int

const (
	SpanNone SpanKind = iota
	SpanEmphasis
	SpanStrong
	SpanStrike
	SpanCode
	SpanLink
	SpanImageLink
)

func (k SpanKind) String() string {
	switch k {
	case SpanEmphasis:
		return "emphasis"
	case SpanStrong:
		return "strong"
	case SpanStrike:
		return "strike"
	case SpanCode:
		return "code"
	case SpanLink:
		return "link"
	case SpanImageLink:
		return "image-link"
	default:
		return "none"
	}
}

// Span is one open inline span. Target is set for links.
type Span struct {
	Kind   SpanKind
	Target string
}

// Emphasis, Strong, Strike and Code are the attribute-only spans.
var (
	Emphasis = Span{Kind: SpanEmphasis}
	Strong   = Span{Kind: SpanStrong}
	Strike   = Span{Kind: SpanStrike}
	Code     = Span{Kind: SpanCode}
)

// Link returns a link span pointing at target.
func Link(target string) Span {
	return Span{Kind: SpanLink, Target: target}
}

// ImageHandle is an opaque key into the table of decoded images.
type ImageHandle string

// ImageRef references a decoded image and its intrinsic pixel size.
type ImageRef struct {
	Handle ImageHandle
	Width  int
	Height int
	Alt    string
}

// Run is a contiguous span of text, a single image, or a hard line break.
// Spans lists the open spans from outermost to innermost.
type Run struct {
	Text  string
	Spans []Span
	Image *ImageRef
	Break bool
}

// Text builds a text run.
func Text(s string, spans ...Span) Run {
	return Run{Text: s, Spans: spans}
}

// Image builds an inline image run.
func Image(ref ImageRef, spans ...Span) Run {
	r := ref
	return Run{Image: &r, Spans: spans}
}

// LineBreak builds a hard line break.
func LineBreak() Run {
	return Run{Break: true}
}

// IsImage reports whether the run is an image reference.
func (r Run) IsImage() bool {
	return r.Image != nil
}

// LinkTarget returns the innermost link target, or "".
func (r Run) LinkTarget() string {
	for i := len(r.Spans) - 1; i >= 0; i-- {
		if r.Spans[i].Kind == SpanLink && r.Spans[i].Target != "" {
			return r.Spans[i].Target
		}
	}
	return ""
}

// Within returns a copy of runs with span pushed outside the existing spans.
func Within(span Span, runs ...Run) []Run {
	out := make([]Run, len(runs))
	for i, r := range runs {
		spans := make([]Span, 0, len(r.Spans)+1)
		spans = append(spans, span)
		spans = append(spans, r.Spans...)
		r.Spans = spans
		out[i] = r
	}
	return out
}
