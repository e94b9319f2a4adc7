// Package parser turns freeform text or markdown into a slide outline without
// any model call. It is the deterministic fallback and always produces a
// usable outline, no matter how messy the input.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"

	"deckgen-backend/internal/outline"
)

// Options bounds the outline the parser builds.
type Options struct {
	MaxBulletsPerSlide int
	MaxBulletChars     int
	MaxSlideChars      int
	MinSlides          int
	MaxSlides          int
	WordsPerSlideLow   int
	WordsPerSlideHigh  int
}

func DefaultOptions() Options {
	return Options{
		MaxBulletsPerSlide: 7,
		MaxBulletChars:     160,
		MaxSlideChars:      800,
		MinSlides:          3,
		MaxSlides:          40,
		WordsPerSlideLow:   60,
		WordsPerSlideHigh:  110,
	}
}

const (
	titleTruncate  = 80
	notesBodyLimit = 380
	notesLimit     = 400
	guidanceInDeck = 60

	disclaimerText = "Informational only; not legal/medical advice."
	fallbackTitle  = "Generated Presentation"
)

type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// section is a heading plus the raw bullet candidates collected under it.
type section struct {
	title   string
	bullets []string
}

// Parse builds an outline from raw text or markdown. Headings become slide
// titles; lists, paragraphs, quotes and tables become bullets. When the input
// has no useful structure it falls back to archetype sections or word-count
// chunking over sentences. Parse never fails.
func (p *Parser) Parse(text, guidance string, includeNotes bool) *outline.Outline {
	raw := strings.TrimSpace(text)
	bias := guidanceLayoutBias(guidance)

	secs := p.markdownSections([]byte(raw), guidance)
	slides := p.sectionsToSlides(secs, bias)

	if !hasRealTitles(slides) {
		plain := collapseWS(stripMarkup(raw))
		sentences := splitSentences(plain)
		if arch := detectArchetype(guidance); arch != nil {
			slides = p.archetypeSlides(sentences, arch, bias)
		} else if len(slides) == 0 {
			slides = p.chunkSlides(sentences, plain, bias)
		}
	}

	slides = p.cleanupSlides(slides, includeNotes)
	slides = p.applyDisclaimer(slides, raw, includeNotes)

	o := &outline.Outline{
		Slides:              slides,
		EstimatedSlideCount: len(slides),
	}
	o = outline.NormalizeCount(o, 0, p.opts.MinSlides, p.opts.MaxSlides)
	if includeNotes {
		for i := range o.Slides {
			s := &o.Slides[i]
			if s.Notes == "" && len(s.Bullets) > 0 {
				s.Notes = p.generateNotes(s.Bullets)
			}
		}
	}
	o.Title = deckTitle(o.Slides, guidance)
	return o
}

// ── Markdown walk ─────────────────────────────────────────────

func (p *Parser) markdownSections(src []byte, guidance string) []section {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var secs []section
	var cur section
	structured := false
	flush := func() {
		if cur.title != "" || len(cur.bullets) > 0 {
			secs = append(secs, cur)
		}
		cur = section{}
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *gast.Heading:
			flush()
			cur.title = truncateRunes(collapseWS(inlineText(n, src)), titleTruncate)
			structured = true
		case *gast.List:
			cur.bullets = append(cur.bullets, listBullets(n, src, 1)...)
			structured = true
		case *gast.Blockquote:
			if q := collapseWS(inlineText(n, src)); q != "" {
				cur.bullets = append(cur.bullets, "Quote: "+q)
			}
			structured = true
		case *extast.Table:
			cur.bullets = append(cur.bullets, tableBullets(n, src, guidanceBulletTarget(guidance)+2)...)
			structured = true
		case *gast.FencedCodeBlock:
			lang := strings.TrimSpace(string(n.Language(src)))
			if lang == "" {
				lang = "code"
			}
			cur.bullets = append(cur.bullets, codeBullet(lang, n.Lines().Len()))
			structured = true
		case *gast.CodeBlock:
			cur.bullets = append(cur.bullets, codeBullet("code", n.Lines().Len()))
			structured = true
		case *gast.Paragraph:
			if t := collapseWS(inlineText(n, src)); t != "" {
				cur.bullets = append(cur.bullets, t)
			}
		}
	}
	flush()
	// Bare prose with no markdown structure goes to the sentence fallbacks
	// instead of becoming one oversized slide.
	if !structured {
		return nil
	}
	return secs
}

func codeBullet(lang string, lines int) string {
	return fmt.Sprintf("Code: %s block (~%d lines) – summary unavailable", lang, lines)
}

func listBullets(list *gast.List, src []byte, depth int) []string {
	var out []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if _, ok := child.(*gast.List); ok {
				continue
			}
			if t := collapseWS(inlineText(child, src)); t != "" {
				parts = append(parts, t)
			}
		}
		if txt := strings.Join(parts, " "); txt != "" {
			if depth >= 2 {
				txt = outline.SubBulletPrefix + txt
			}
			out = append(out, txt)
		}
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*gast.List); ok {
				out = append(out, listBullets(nested, src, depth+1)...)
			}
		}
	}
	return out
}

func tableBullets(tbl *extast.Table, src []byte, maxRows int) []string {
	var out []string
	for row := tbl.FirstChild(); row != nil && len(out) < maxRows; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if t := collapseWS(inlineText(cell, src)); t != "" {
				cells = append(cells, t)
			}
		}
		if len(cells) > 0 {
			out = append(out, strings.Join(cells, " "))
		}
	}
	return out
}

// inlineText flattens a node's inline content. Images and raw HTML are
// dropped; link labels are kept while autolink URLs stay in place so the
// redaction pass can replace them.
func inlineText(n gast.Node, src []byte) string {
	var b strings.Builder
	var walk func(gast.Node)
	walk = func(node gast.Node) {
		switch t := node.(type) {
		case *gast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
			return
		case *gast.String:
			b.Write(t.Value)
			return
		case *gast.AutoLink:
			b.Write(t.URL(src))
			return
		case *gast.Image, *gast.RawHTML, *gast.HTMLBlock:
			return
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
			if c.Type() == gast.TypeBlock {
				b.WriteByte(' ')
			}
		}
	}
	walk(n)
	return b.String()
}

// ── Section finalization ──────────────────────────────────────

func (p *Parser) sectionsToSlides(secs []section, bias string) []outline.Slide {
	var slides []outline.Slide
	for _, sec := range secs {
		title := sec.title
		if title == "" {
			title = "Overview"
		}
		bullets := dedupKeepOrder(p.cleanBullets(sec.bullets))
		slides = append(slides, p.splitByBudget(title, bullets, bias)...)
	}
	return slides
}

func (p *Parser) cleanBullets(raw []string) []string {
	var out []string
	for _, b := range raw {
		if c := p.cleanBullet(b); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// cleanBullet scrubs and clamps one bullet, preserving the sub-bullet prefix
// which collapseWS would otherwise eat.
func (p *Parser) cleanBullet(b string) string {
	prefix := ""
	if strings.HasPrefix(b, outline.SubBulletPrefix) {
		prefix = outline.SubBulletPrefix
		b = strings.TrimPrefix(b, outline.SubBulletPrefix)
	}
	b = scrubSensitive(collapseWS(stripMarkup(b)))
	if b == "" {
		return ""
	}
	return prefix + truncateRunes(b, p.opts.MaxBulletChars)
}

// splitByBudget breaks a bullet list into slides so no slide exceeds the
// per-slide character budget or the bullet cap. Later parts get a
// continuation title.
func (p *Parser) splitByBudget(title string, bullets []string, bias string) []outline.Slide {
	layout := outline.LayoutAuto
	if bias != "" {
		layout = bias
	}

	var groups [][]string
	var cur []string
	size := 0
	for _, b := range bullets {
		bl := len([]rune(b))
		if len(cur) > 0 && (size+bl > p.opts.MaxSlideChars || len(cur) >= p.opts.MaxBulletsPerSlide) {
			groups = append(groups, cur)
			cur, size = nil, 0
		}
		cur = append(cur, b)
		size += bl
	}
	if len(cur) > 0 || len(groups) == 0 {
		groups = append(groups, cur)
	}

	slides := make([]outline.Slide, 0, len(groups))
	for i, g := range groups {
		t := title
		if i > 0 {
			t = title + " (cont.)"
		}
		if g == nil {
			g = []string{}
		}
		slides = append(slides, outline.Slide{Title: t, Bullets: g, Layout: layout})
	}
	return slides
}

func hasRealTitles(slides []outline.Slide) bool {
	for _, s := range slides {
		if s.Title != "" && s.Title != "Overview" && s.Title != "Slide" {
			return true
		}
	}
	return false
}

// ── Fallback paths ────────────────────────────────────────────

// archetypeSlides buckets every sentence into the archetype's sections; dense
// sections spill into continuation slides rather than dropping sentences.
func (p *Parser) archetypeSlides(sentences []string, arch *archetype, bias string) []outline.Slide {
	buckets := make([][]string, len(arch.sections))
	for _, s := range sentences {
		idx := bucketSentence(s, arch.sections)
		b := scrubSensitive(truncateRunes(s, p.opts.MaxBulletChars))
		buckets[idx] = append(buckets[idx], b)
	}

	var slides []outline.Slide
	for i, sec := range arch.sections {
		if len(buckets[i]) == 0 {
			continue
		}
		slides = append(slides, p.splitByBudget(sec, dedupKeepOrder(buckets[i]), bias)...)
	}
	return slides
}

// chunkSlides groups sentences into slides sized by word count, aiming for
// the configured words-per-slide band.
func (p *Parser) chunkSlides(sentences []string, plain, bias string) []outline.Slide {
	if len(sentences) == 0 {
		if plain == "" {
			return nil
		}
		sentences = []string{plain}
	}

	var slides []outline.Slide
	var chunk []string
	words := 0
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		title := fmt.Sprintf("Section %d", len(slides)+1)
		slides = append(slides, p.splitByBudget(title, dedupKeepOrder(chunk), bias)...)
		chunk, words = nil, 0
	}
	for _, s := range sentences {
		w := wordCount(s)
		if len(chunk) > 0 && (words >= p.opts.WordsPerSlideLow && words+w > p.opts.WordsPerSlideHigh) {
			flush()
		}
		chunk = append(chunk, scrubSensitive(truncateRunes(s, p.opts.MaxBulletChars)))
		words += w
	}
	flush()
	return slides
}

// ── Cleanup and framing ───────────────────────────────────────

func (p *Parser) cleanupSlides(slides []outline.Slide, includeNotes bool) []outline.Slide {
	out := make([]outline.Slide, 0, len(slides))
	for _, s := range slides {
		title := truncateRunes(collapseWS(s.Title), titleTruncate)
		if title == "" {
			title = "Slide"
		}
		bullets := dedupKeepOrder(s.Bullets)
		if title == "Slide" && len(bullets) == 0 {
			continue
		}

		layout := outline.CanonicalLayout(s.Layout)
		notes := s.Notes
		if includeNotes && notes == "" && len(bullets) > 0 {
			notes = p.generateNotes(bullets)
		}
		if notes != "" && layout == outline.LayoutAuto {
			layout = outline.LayoutContentWithCaption
		}
		if len(bullets) > p.opts.MaxBulletsPerSlide {
			layout = outline.LayoutTwoContent
			bullets = bullets[:p.opts.MaxBulletsPerSlide]
		}
		if bullets == nil {
			bullets = []string{}
		}
		out = append(out, outline.Slide{
			Title:   title,
			Bullets: bullets,
			Layout:  layout,
			Notes:   truncateRunes(notes, notesLimit),
		})
	}
	return out
}

// applyDisclaimer adds the standing disclaimer when the source text looks like
// legal or medical content. It goes into the first slide's notes when notes
// are on, otherwise onto the last slide as a bullet.
func (p *Parser) applyDisclaimer(slides []outline.Slide, raw string, includeNotes bool) []outline.Slide {
	if len(slides) == 0 || (!likelyLegal(raw) && !likelyMedical(raw)) {
		return slides
	}
	if includeNotes {
		first := &slides[0]
		first.Notes = truncateRunes(strings.TrimSpace(first.Notes+" "+disclaimerText), notesLimit)
		return slides
	}
	last := &slides[len(slides)-1]
	for _, b := range last.Bullets {
		if b == disclaimerText {
			return slides
		}
	}
	if len(last.Bullets) >= p.opts.MaxBulletsPerSlide {
		last.Bullets = last.Bullets[:p.opts.MaxBulletsPerSlide-1]
	}
	last.Bullets = append(last.Bullets, disclaimerText)
	return slides
}

func (p *Parser) generateNotes(bullets []string) string {
	parts := make([]string, 0, len(bullets))
	for _, b := range bullets {
		parts = append(parts, strings.TrimSpace(strings.TrimPrefix(b, outline.SubBulletPrefix)))
	}
	return truncateRunes("Key points: "+strings.Join(parts, "; "), notesBodyLimit)
}

var genericTitleRe = regexp.MustCompile(`^(Slide|Section)( \d+)?$`)

func deckTitle(slides []outline.Slide, guidance string) string {
	for _, s := range slides {
		if s.Title == "" || s.Title == "Overview" || genericTitleRe.MatchString(s.Title) {
			continue
		}
		return s.Title
	}
	if g := collapseWS(guidance); g != "" {
		return fallbackTitle + " — " + truncateRunes(g, guidanceInDeck)
	}
	return fallbackTitle
}

// ── Guidance hints ────────────────────────────────────────────

var (
	visualHints    = []string{"visual", "image", "picture", "photo", "diagram", "design-heavy", "poster"}
	executiveHints = []string{"executive", "summary", "overview", "brief"}
	technicalHints = []string{"technical", "deep dive", "architecture", "detail", "thorough"}
)

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// guidanceLayoutBias picks a layout for auto slides from the caller's
// guidance. Empty means no preference.
func guidanceLayoutBias(guidance string) string {
	g := strings.ToLower(guidance)
	switch {
	case containsAny(g, visualHints):
		return outline.LayoutPictureWithCaption
	case containsAny(g, executiveHints):
		return outline.LayoutContentWithCaption
	case containsAny(g, technicalHints):
		return outline.LayoutTwoContent
	default:
		return ""
	}
}

// guidanceBulletTarget is the bullet density the guidance implies: terse for
// executive summaries, dense for technical audiences.
func guidanceBulletTarget(guidance string) int {
	g := strings.ToLower(guidance)
	switch {
	case containsAny(g, executiveHints):
		return 3
	case containsAny(g, technicalHints):
		return 6
	default:
		return 5
	}
}

func dedupKeepOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
