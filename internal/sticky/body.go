package sticky

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codex-k8s/prcomment/internal/githubapi"
)

// Marker returns the hidden HTML comment that identifies the sticky comment for header.
func Marker(header string) string {
	return fmt.Sprintf("<!-- Sticky Pull Request Comment%s -->", header)
}

// WithMarker appends the header marker to body on its own line.
func WithMarker(body, header string) string {
	return body + "\n" + Marker(header)
}

// WithoutMarker removes the marker line added by WithMarker.
func WithoutMarker(body, header string) string {
	return strings.Replace(body, "\n"+Marker(header), "", 1)
}

var openDetails = regexp.MustCompile(`(<details.*?)\s*\bopen\b(.*>)`)

// PreviousBody returns the body to carry over when appending. It is empty
// unless appendBody is set; with hideDetails every expanded <details> block is
// collapsed.
func PreviousBody(previous *githubapi.IssueComment, appendBody, hideDetails bool) string {
	if previous == nil || !appendBody {
		return ""
	}
	if !hideDetails {
		return previous.Body
	}
	return openDetails.ReplaceAllString(previous.Body, "$1$2")
}

// composeBody builds the marked body, prefixing previousBody when appending.
func composeBody(body, previousBody, header string) string {
	if previousBody == "" {
		return WithMarker(body, header)
	}
	return WithMarker(WithoutMarker(previousBody, header)+"\n"+body, header)
}
