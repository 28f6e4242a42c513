package realtime

type SSEEvent string

const (
	SSEEventArtifactState SSEEvent = "ArtifactStateChanged"
	SSEEventFileUploaded  SSEEvent = "LectureFileUploaded"
	SSEEventFileDeleted   SSEEvent = "LectureFileDeleted"
	SSEEventPlanChanged   SSEEvent = "PlanChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel carries everything addressed to one user.
func UserChannel(userID string) string { return "user:" + userID }

// LectureChannel carries one user's artifact state for one lecture.
func LectureChannel(userID, lectureID string) string {
	return "user:" + userID + ":lecture:" + lectureID
}
