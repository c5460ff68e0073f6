// Package sanitizer turns rendered HTML emails into text using bluemonday.
//
//	text := sanitizer.PlainText(html) // multipart/alternative body
//	line := sanitizer.StripHTML(title) // single line, no markup
package sanitizer
