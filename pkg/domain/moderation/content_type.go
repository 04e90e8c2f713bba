package moderation

import "fmt"

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeText || t == ContentTypeImage
}

func (t ContentType) String() string {
	return string(t)
}

// ParseContentType maps the request discriminator onto a ContentType.
func ParseContentType(raw string) (ContentType, error) {
	t := ContentType(raw)
	if !t.Valid() {
		return "", NewValidationError(fmt.Sprintf(`Invalid content type. Must be either "%s" or "%s"`, ContentTypeText, ContentTypeImage))
	}
	return t, nil
}
