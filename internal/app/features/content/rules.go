// internal/app/features/content/rules.go
package content

import (
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/htmlsanitize"
	"github.com/dalemusser/osprey/internal/app/system/inputval"
	"github.com/dalemusser/osprey/internal/domain/models"
)

// TypeText needs no URL.
const TypeText = "text"

// Extensions lists the accepted URL file extensions per content type.
var Extensions = map[string][]string{
	"video":    {".mp4", ".mov", ".avi"},
	"reel":     {".mp4", ".mov"},
	"image":    {".jpg", ".jpeg", ".png", ".gif"},
	"document": {".pdf", ".docx", ".txt"},
	TypeText:   nil,
}

// validate checks a post before it is stored and strips markup from its
// text. A post is either a single link (Title, TypeOfContent, URL) or a
// titled list of items.
func validate(c *models.Content) error {
	c.Title = htmlsanitize.PlainText(strings.TrimSpace(c.Title))

	if len(c.Items) == 0 {
		if c.Title == "" || strings.TrimSpace(c.TypeOfContent) == "" || strings.TrimSpace(c.URL) == "" {
			return apierr.New(apierr.BadInput, "Title, TypeOfContent and Url are required for single content.")
		}
		if !inputval.IsValidHTTPURL(c.URL) {
			return apierr.New(apierr.BadInput, "invalid URL format")
		}
		t, err := checkType(c.TypeOfContent, c.URL)
		if err != nil {
			return err
		}
		c.TypeOfContent = t
		return nil
	}

	if c.Title == "" {
		return apierr.New(apierr.BadInput, "Title is required for mixed content.")
	}
	for i := range c.Items {
		it := &c.Items[i]
		t := strings.ToLower(strings.TrimSpace(it.TypeOfContent))
		if t == "" || (t != TypeText && strings.TrimSpace(it.URL) == "") {
			return apierr.New(apierr.BadInput, "TypeOfContent and Url are required for each content item.")
		}
		if t != TypeText && !inputval.IsValidHTTPURL(it.URL) {
			return apierr.Newf(apierr.BadInput, "invalid URL format for item: %s", it.URL)
		}
		t, err := checkType(t, it.URL)
		if err != nil {
			return err
		}
		it.TypeOfContent = t
		it.Text = htmlsanitize.PlainText(it.Text)
	}
	return nil
}

// checkType returns the lowercased type once the URL's extension is one
// the type allows.
func checkType(typ, rawURL string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(typ))
	exts, ok := Extensions[t]
	if !ok {
		return "", apierr.Newf(apierr.BadInput, "unsupported content type: %s", t)
	}
	if t == TypeText {
		return t, nil
	}
	if !slices.Contains(exts, urlExt(rawURL)) {
		return "", apierr.Newf(apierr.BadInput, "invalid file extension for %s. Allowed extensions are: %s", t, strings.Join(exts, ", "))
	}
	return t, nil
}

// urlExt is the lowercased extension of the URL's path, ignoring any query.
func urlExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}
