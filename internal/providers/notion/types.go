package notion

import "strings"

type queryRequest struct {
	Filter   filter     `json:"filter"`
	Sorts    []sortSpec `json:"sorts,omitempty"`
	PageSize int        `json:"page_size,omitempty"`
}

type filter struct {
	And      []filter       `json:"and,omitempty"`
	Property string         `json:"property,omitempty"`
	RichText *textCondition `json:"rich_text,omitempty"`
}

type textCondition struct {
	Contains string `json:"contains,omitempty"`
	Equals   string `json:"equals,omitempty"`
}

type sortSpec struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

type page struct {
	ID         string         `json:"id"`
	Properties pageProperties `json:"properties"`
}

type pageProperties struct {
	Idea     textProperty `json:"Idea"`
	Feedback textProperty `json:"Feedback"`
}

// textProperty decodes both title and rich_text shaped properties.
type textProperty struct {
	Title    []textObject `json:"title"`
	RichText []textObject `json:"rich_text"`
}

func (p textProperty) text() string {
	segments := p.Title
	if len(segments) == 0 {
		segments = p.RichText
	}
	var b strings.Builder
	for _, seg := range segments {
		if seg.PlainText != "" {
			b.WriteString(seg.PlainText)
			continue
		}
		b.WriteString(seg.Text.Content)
	}
	return b.String()
}

type textObject struct {
	Text      textContent `json:"text"`
	PlainText string      `json:"plain_text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type createPageRequest struct {
	Parent     parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type titleValue struct {
	Title []textObject `json:"title"`
}

type richTextValue struct {
	RichText []textObject `json:"rich_text"`
}

type selectValue struct {
	Select selectOption `json:"select"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Date dateOption `json:"date"`
}

type dateOption struct {
	Start string `json:"start"`
}
