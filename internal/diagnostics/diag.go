package diagnostics

import "fmt"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes streamed on /diag.
const (
	FocusTransition = "FOCUS.TRANSITION"
	FocusComplete   = "FOCUS.COMPLETE"
	TextureFailed   = "TEXTURE.FAILED"
	FeedConnected   = "FEED.CONNECTED"
	FeedLost        = "FEED.LOST"
	FeedUploading   = "FEED.UPLOADING"
	DriverFallback  = "DRIVER.FALLBACK"
	DriverWrite     = "DRIVER.WRITE"
	ControlUnknown  = "CONTROL.UNKNOWN"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func Transition(from, to string, photo int) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     FocusTransition,
		Summary:  fmt.Sprintf("focus %s -> %s", from, to),
		Evidence: map[string]any{"from": from, "to": to, "photo": photo},
	}
}

func Texture(url string, err error) Diagnostic {
	return Diagnostic{
		Severity:       Warn,
		Code:           TextureFailed,
		Summary:        "Photo failed to load; showing placeholder",
		Detail:         err.Error(),
		LikelyCauses:   []string{"photo server unreachable", "file removed", "unsupported image format"},
		SuggestedFixes: []string{"check feed.url", "re-upload the photo as jpeg or png"},
		Evidence:       map[string]any{"url": url},
	}
}

func Feed(connected bool) Diagnostic {
	if connected {
		return Diagnostic{Severity: Info, Code: FeedConnected, Summary: "Photo feed connected"}
	}
	return Diagnostic{
		Severity:       Warn,
		Code:           FeedLost,
		Summary:        "Photo feed disconnected; retrying",
		SuggestedFixes: []string{"check the photo server is running", "check feed.url"},
	}
}

func Fallback(from, to string, err error) Diagnostic {
	return Diagnostic{
		Severity:     Warn,
		Code:         DriverFallback,
		Summary:      fmt.Sprintf("%s driver unavailable; using %s", from, to),
		Detail:       err.Error(),
		LikelyCauses: []string{"SPI not enabled", "not running on the target board", "insufficient permissions on /dev/spidev*"},
	}
}
