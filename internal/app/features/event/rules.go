// internal/app/features/event/rules.go
package event

import (
	"net/url"
	"path"
	"strings"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/htmlsanitize"
	"github.com/dalemusser/osprey/internal/domain/models"
)

// Media item types.
const (
	TypeText    = "text"
	TypeVideo   = "video"
	TypeImage   = "image"
	TypeUnknown = "unknown"
)

// inferType derives an item's type: text when Text is set, otherwise from
// the URL's extension.
func inferType(it models.EventContentItem) (string, error) {
	if strings.TrimSpace(it.Text) != "" {
		return TypeText, nil
	}
	if strings.TrimSpace(it.URL) == "" {
		return "", apierr.New(apierr.BadInput, "either Text or Url must be provided for the content item")
	}
	p := it.URL
	if u, err := url.Parse(it.URL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp4", ".mov", ".avi":
		return TypeVideo, nil
	case ".jpg", ".jpeg", ".png", ".gif":
		return TypeImage, nil
	}
	return TypeUnknown, nil
}

func validateItem(it models.EventContentItem) error {
	switch {
	case it.Type == "":
		return apierr.New(apierr.BadInput, "content type is required")
	case it.Type != TypeText && strings.TrimSpace(it.URL) == "":
		return apierr.New(apierr.BadInput, "URL is required for non-text content")
	case it.Type == TypeText && strings.TrimSpace(it.Text) == "":
		return apierr.New(apierr.BadInput, "Text is required for text content")
	}
	return nil
}

// prepareItem fills in a missing type, validates the item and strips
// markup from its text.
func prepareItem(it *models.EventContentItem) error {
	if it.Type == "" {
		t, err := inferType(*it)
		if err != nil {
			return err
		}
		it.Type = t
	}
	if err := validateItem(*it); err != nil {
		return err
	}
	it.Text = htmlsanitize.PlainText(it.Text)
	it.Description = htmlsanitize.PlainText(it.Description)
	return nil
}

// prepare cleans an event's free text and every media item.
func prepare(e *models.Event) error {
	e.Title = htmlsanitize.PlainText(strings.TrimSpace(e.Title))
	e.Location = strings.TrimSpace(e.Location)
	e.Description = htmlsanitize.PlainText(e.Description)
	if e.MaxCapacity < 0 {
		return apierr.New(apierr.BadInput, "max capacity cannot be negative")
	}
	if !e.StartDate.IsZero() && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return apierr.New(apierr.BadInput, "end date is before start date")
	}
	if e.Contents == nil {
		e.Contents = []models.EventContentItem{}
	}
	for i := range e.Contents {
		if err := prepareItem(&e.Contents[i]); err != nil {
			return err
		}
	}
	return nil
}
