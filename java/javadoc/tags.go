package javadoc

// Tag is one entry of a tag map.
type Tag struct {
	Name string
	Text string
}

// Tags is an ordered tag map. The first entry is always the description
// under CommentKey; block tags follow in order of first occurrence.
type Tags []Tag

func (t *Tags) add(name, text string) {
	for i := range *t {
		if (*t)[i].Name == name {
			(*t)[i].Text += "\n" + text
			return
		}
	}
	*t = append(*t, Tag{Name: name, Text: text})
}

// Get returns the text recorded for name and whether the tag was present.
func (t Tags) Get(name string) (string, bool) {
	for _, tag := range t {
		if tag.Name == name {
			return tag.Text, true
		}
	}
	return "", false
}

func (t Tags) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

func (t Tags) Comment() string {
	text, _ := t.Get(CommentKey)
	return text
}

func (t Tags) Names() []string {
	names := make([]string, len(t))
	for i, tag := range t {
		names[i] = tag.Name
	}
	return names
}

func (t Tags) Len() int { return len(t) }
