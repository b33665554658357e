package agent

// Message types the daemon sends into a watch page's execution context.
// The content script answers each with a single response; there is no
// streaming. The only defined failure at this boundary is the absence of
// a media element, reported as ok:false.
const (
	TypeGetVideoState = "GET_VIDEO_STATE"
	TypeSeekTo        = "SEEK_TO"
)

// Message is the request envelope. Time is only meaningful for SEEK_TO.
type Message struct {
	Type string  `json:"type"`
	Time float64 `json:"time,omitempty"`
}

// StateResponse answers GET_VIDEO_STATE.
type StateResponse struct {
	OK          bool    `json:"ok"`
	CurrentTime float64 `json:"currentTime,omitempty"`
	Title       string  `json:"title,omitempty"`
}

// AckResponse answers SEEK_TO.
type AckResponse struct {
	OK bool `json:"ok"`
}
