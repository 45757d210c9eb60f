package mime

import "strings"

// ContentType is a pair of Category and subtype, e.g. image/ and png.
type ContentType struct {
	Category Category
	Subtype  string
}

// String renders the MIME itself, without parameters.
func (c ContentType) String() string {
	return string(c.Category) + c.Subtype
}

// Header renders the value of the Content-Type header.
func (c ContentType) Header() string {
	return c.String() + "; charset=" + UTF8
}

// Classify derives the content type from the resource path alone. Paths under one of the
// classified prefixes take their subtype from the extension, falling back to html if there
// is none. All the others are considered html.
func Classify(path string) ContentType {
	subtype := HTML

	if hasClassifiedPrefix(path) {
		if dot := strings.LastIndexByte(path, '.'); dot != -1 && dot+1 < len(path) {
			subtype = path[dot+1:]
		}
	}

	return ContentType{
		Category: category(subtype),
		Subtype:  subtype,
	}
}

func category(subtype string) Category {
	if c, found := categories[subtype]; found {
		return c
	}

	return Text
}

func hasClassifiedPrefix(path string) bool {
	for _, prefix := range classifiedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
