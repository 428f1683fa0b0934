package discord

import "maps"

// DefaultBaseURL is the Discord REST API root used by NewClient.
const DefaultBaseURL = "https://discord.com/api/v10"

// Component type markers understood by the Components V2 renderer.
const (
	TypeSection     = 9
	TypeTextDisplay = 10
	TypeContainer   = 17
)

// FlagIsComponentsV2 marks a message body as using structural components
// instead of the legacy content/embeds fields. It must be set whenever
// components are present.
const FlagIsComponentsV2 = 1 << 15

// TextDisplay is a leaf component rendering a markdown string.
type TextDisplay struct {
	Type    int    `json:"type"`
	Content string `json:"content"`
}

// Container frames its child text displays as one visual block.
type Container struct {
	Type       int           `json:"type"`
	Components []TextDisplay `json:"components"`
}

// Overrides are extra top-level message fields (allowed_mentions, nonce,
// attachments, ...) merged over a built document. Caller keys win.
type Overrides map[string]any

// Document is a message create body. It is built fresh per call and
// carries no resources.
type Document map[string]any

// Build returns a document holding a single container with one text
// display for content, with overrides merged on top.
func Build(content string, overrides Overrides) Document {
	return BuildMany([]string{content}, overrides)
}

// BuildMany returns a document holding a single container with one text
// display per entry of contents, in order. An empty slice yields an empty
// container; whether Discord accepts it is up to Discord.
func BuildMany(contents []string, overrides Overrides) Document {
	children := make([]TextDisplay, 0, len(contents))
	for _, c := range contents {
		children = append(children, TextDisplay{Type: TypeTextDisplay, Content: c})
	}

	doc := Document{
		"flags": FlagIsComponentsV2,
		"components": []Container{
			{Type: TypeContainer, Components: children},
		},
	}

	// Shallow merge: an override for "components" or "flags" replaces the
	// built value outright.
	maps.Copy(doc, overrides)
	return doc
}

// Container returns the built container of d. It reports false when the
// components key was overridden with something other than builder output.
func (d Document) Container() (Container, bool) {
	cs, ok := d["components"].([]Container)
	if !ok || len(cs) != 1 {
		return Container{}, false
	}
	return cs[0], true
}

// Texts returns the text display contents of the built container in order.
func (d Document) Texts() []string {
	c, ok := d.Container()
	if !ok {
		return nil
	}
	out := make([]string, len(c.Components))
	for i, td := range c.Components {
		out[i] = td.Content
	}
	return out
}
