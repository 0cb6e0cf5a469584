package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/feature-pipeline/internal/registry"
)

// FeatureViewToNotionProperties converts a registry feature view to Notion
// properties for the catalog database. The view name is the page title and
// the dedup key for the sync.
func FeatureViewToNotionProperties(view registry.FeatureView, exportedAt time.Time) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: view.Name,
					},
				},
			},
		},
		"Feature Count": notionapi.NumberProperty{
			Number: float64(len(view.Fields)),
		},
		"TTL Days": notionapi.NumberProperty{
			Number: view.TTL.Hours() / 24,
		},
		"Exported At": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(exportedAt)
					return &d
				}(),
			},
		},
	}

	if view.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: view.Description,
					},
				},
			},
		}
	}

	if view.Source != "" {
		props["Source"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: view.Source,
			},
		}
	}

	if len(view.Entities) > 0 {
		props["Entities"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: strings.Join(view.Entities, ", "),
					},
				},
			},
		}
	}

	// Notion rich text is capped at 2000 characters, so the field list is
	// truncated rather than split across blocks.
	fields := formatFields(view.Fields)
	props["Fields"] = notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{
					Content: fields,
				},
			},
		},
	}

	return props
}

func formatFields(fields []registry.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Name, f.Dtype))
	}
	s := strings.Join(parts, ", ")
	const maxLen = 2000
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// extractViewName reads the title property from a catalog page. Returns
// an empty string when the page has no usable title.
func extractViewName(page notionapi.Page) string {
	prop, ok := page.Properties["Name"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, rt := range title.Title {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
