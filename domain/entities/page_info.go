package entities

// PageSnapshot is what the runner observed on the current page, used to
// explain failed assertions
type PageSnapshot struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	TextContent string `json:"text_content"` // visible text, truncated
	Pages       int    `json:"pages"`        // open pages in the session
}
