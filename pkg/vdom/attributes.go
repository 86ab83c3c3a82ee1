package vdom

import (
	"sort"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Style is an inline style as a property map. Diff compares style maps
// property by property.
type Style map[string]string

// String renders the style sorted by property name.
func (s Style) String() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s[k])
		b.WriteByte(';')
	}
	return b.String()
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute from a CSS string.
func StyleAttr(style string) Attr { return attr("style", style) }

// Styles sets the style attribute from a property map.
func Styles(s Style) Attr { return attr("style", s) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets aria-label.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Links

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Forms

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value DOM property.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled DOM property.
func Disabled() Attr { return attr("disabled", true) }

// Checked sets the checked DOM property.
func Checked() Attr { return attr("checked", true) }

// CheckedIf sets the checked DOM property to b.
func CheckedIf(b bool) Attr { return attr("checked", b) }

// Selected sets the selected DOM property.
func Selected() Attr { return attr("selected", true) }

// For sets the for attribute.
func For(id string) Attr { return attr("for", id) }

// Media

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{} // Empty attr, will be ignored
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Classes merges multiple class values.
// Accepts string, []string, []any and map[string]bool; see ClassString.
func Classes(classes ...any) Attr {
	return attr("class", ClassString(classes))
}

// ClassString normalizes a class value to a class list string.
//
// Strings are kept as is, slices contribute their non-empty string
// elements (false, nil and "" are filtered), and map[string]bool contributes
// its truthy keys in sorted order.
func ClassString(v any) string {
	var result []string
	collectClasses(v, &result)
	return strings.Join(result, " ")
}

func collectClasses(v any, out *[]string) {
	switch c := v.(type) {
	case nil:
	case string:
		if c = strings.TrimSpace(c); c != "" {
			*out = append(*out, c)
		}
	case []string:
		for _, s := range c {
			collectClasses(s, out)
		}
	case []any:
		for _, item := range c {
			collectClasses(item, out)
		}
	case map[string]bool:
		keys := make([]string, 0, len(c))
		for class, include := range c {
			if include && class != "" {
				keys = append(keys, class)
			}
		}
		sort.Strings(keys)
		*out = append(*out, keys...)
	}
}
