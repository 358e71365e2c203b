package page

import "fmt"

// Keys returned by Page.Unpack.
const (
	KeyContent     = "content"
	KeyEmbeds      = "embeds"
	KeyAttachments = "attachments"
)

// Field is a named section inside an Embed.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Embed is a rich content block. The presentation layer decides how it looks.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Attachment is a file shipped along with a page.
type Attachment struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// ConflictingFieldError is returned by New when both the singular and the
// plural form of one field were supplied.
type ConflictingFieldError struct {
	Singular string
	Plural   string
}

func (e *ConflictingFieldError) Error() string {
	return fmt.Sprintf("cannot set both `%s` and `%s`", e.Singular, e.Plural)
}

// Page is one rendered paging step. Fields that were never set stay unset,
// which is different from being set to an empty value.
type Page struct {
	content     string
	embeds      []Embed
	attachments []Attachment

	hasContent     bool
	hasEmbeds      bool
	hasAttachments bool
}

type builder struct {
	page        Page
	embed       bool
	embeds      bool
	attachment  bool
	attachments bool
}

// Option sets one field of a Page.
type Option func(*builder)

// WithContent sets the text content.
func WithContent(s string) Option {
	return func(b *builder) {
		b.page.content = s
		b.page.hasContent = true
	}
}

// WithEmbed sets a single embed.
func WithEmbed(e Embed) Option {
	return func(b *builder) {
		b.embed = true
		b.page.embeds = []Embed{e}
		b.page.hasEmbeds = true
	}
}

// WithEmbeds sets the embed list; an empty call sets it to empty.
func WithEmbeds(es ...Embed) Option {
	return func(b *builder) {
		b.embeds = true
		b.page.embeds = append([]Embed(nil), es...)
		b.page.hasEmbeds = true
	}
}

// WithAttachment sets a single attachment.
func WithAttachment(a Attachment) Option {
	return func(b *builder) {
		b.attachment = true
		b.page.attachments = []Attachment{a}
		b.page.hasAttachments = true
	}
}

// WithAttachments sets the attachment list.
func WithAttachments(as ...Attachment) Option {
	return func(b *builder) {
		b.attachments = true
		b.page.attachments = append([]Attachment(nil), as...)
		b.page.hasAttachments = true
	}
}

// New builds a Page. Supplying both WithEmbed and WithEmbeds (or both
// WithAttachment and WithAttachments) is a programming error.
func New(opts ...Option) (Page, error) {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}
	if b.embed && b.embeds {
		return Page{}, &ConflictingFieldError{Singular: "embed", Plural: "embeds"}
	}
	if b.attachment && b.attachments {
		return Page{}, &ConflictingFieldError{Singular: "attachment", Plural: "attachments"}
	}
	return b.page, nil
}

// Must is like New but panics on error.
func Must(opts ...Option) Page {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Page) Content() (string, bool) { return p.content, p.hasContent }

func (p Page) Embeds() ([]Embed, bool) {
	if !p.hasEmbeds {
		return nil, false
	}
	return append([]Embed(nil), p.embeds...), true
}

func (p Page) Attachments() ([]Attachment, bool) {
	if !p.hasAttachments {
		return nil, false
	}
	return append([]Attachment(nil), p.attachments...), true
}

// HasText reports whether the page sets any textual field.
func (p Page) HasText() bool { return p.hasContent || p.hasEmbeds }

// Unpack returns only the fields that were explicitly set, so a partial
// update built from it leaves everything else untouched.
func (p Page) Unpack() map[string]any {
	out := make(map[string]any, 3)
	if c, ok := p.Content(); ok {
		out[KeyContent] = c
	}
	if es, ok := p.Embeds(); ok {
		out[KeyEmbeds] = es
	}
	if as, ok := p.Attachments(); ok {
		out[KeyAttachments] = as
	}
	return out
}
