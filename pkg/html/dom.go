package html

// Document is the part of a page the viewport host needs: its scripts in
// document order and the inline style of the root element.
type Document struct {
	Title     string
	RootStyle string   // style attribute of <html>
	Scripts   []string // JavaScript from <script> tags
	// Metas holds <meta name=... content=...> pairs, e.g. "viewport".
	Metas map[string]string
}

func NewDocument() *Document {
	return &Document{
		Scripts: make([]string, 0),
		Metas:   make(map[string]string),
	}
}

// Meta returns the content of a named meta tag.
func (d *Document) Meta(name string) (string, bool) {
	v, ok := d.Metas[name]
	return v, ok
}
