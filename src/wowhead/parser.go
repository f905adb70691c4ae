package wowhead

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ItemXML is the subset of an item=N&xml document the planner uses
type ItemXML struct {
	ItemID    int
	Name      string
	DisplayID int
	SlotID    int
	Error     string
}

// ParseItemXML extracts the display id and inventory slot from an item XML document.
// Missing elements or attributes leave the field at 0.
func ParseItemXML(content []byte) (ItemXML, error) {
	// the HTML parser is lenient with the CDATA tooltips, it lowercases names
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return ItemXML{}, fmt.Errorf("failed to parse item XML: %w", err)
	}

	result := ItemXML{
		Error: strings.TrimSpace(doc.Find("wowhead > error").First().Text()),
	}

	item := doc.Find("wowhead > item").First()
	result.ItemID = intAttr(item, "id")
	result.Name = cdataText(item.ChildrenFiltered("name").First())
	result.DisplayID = intAttr(doc.Find("icon[displayid]").First(), "displayid")
	result.SlotID = intAttr(doc.Find("inventoryslot[id]").First(), "id")

	return result, nil
}

func intAttr(s *goquery.Selection, name string) int {
	val, exists := s.Attr(name)
	if !exists {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// cdataText returns the text of an element whose content may be a CDATA
// section. Outside foreign content the HTML tokenizer reads CDATA as a comment.
func cdataText(s *goquery.Selection) string {
	if text := strings.TrimSpace(s.Text()); text != "" {
		return text
	}
	if len(s.Nodes) == 0 {
		return ""
	}
	for child := s.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.CommentNode && strings.HasPrefix(child.Data, "[CDATA[") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(child.Data, "[CDATA["), "]]"))
		}
	}
	return ""
}
