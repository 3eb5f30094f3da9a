package teams

type page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

type onlineMeeting struct {
	ID         string `json:"id"`
	JoinWebURL string `json:"joinWebUrl"`
	ChatInfo   struct {
		ThreadID string `json:"threadId"`
	} `json:"chatInfo"`
}

type attendanceReport struct {
	ID                    string `json:"id"`
	MeetingStartDateTime  string `json:"meetingStartDateTime"`
	TotalParticipantCount int    `json:"totalParticipantCount"`
}

type attendanceRecord struct {
	ID                       string     `json:"id"`
	EmailAddress             string     `json:"emailAddress"`
	TotalAttendanceInSeconds int        `json:"totalAttendanceInSeconds"`
	Role                     string     `json:"role"`
	Identity                 identity   `json:"identity"`
	AttendanceIntervals      []interval `json:"attendanceIntervals"`
}

type identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type interval struct {
	JoinDateTime      string `json:"joinDateTime"`
	LeaveDateTime     string `json:"leaveDateTime"`
	DurationInSeconds int    `json:"durationInSeconds"`
}

type recording struct {
	ID                  string `json:"id"`
	CreatedDateTime     string `json:"createdDateTime"`
	EndDateTime         string `json:"endDateTime"`
	RecordingContentURL string `json:"recordingContentUrl"`
}

type chatMessage struct {
	ID              string `json:"id"`
	MessageType     string `json:"messageType"`
	CreatedDateTime string `json:"createdDateTime"`
	From            *struct {
		User *identity `json:"user"`
	} `json:"from"`
	Body struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	ContentURL  string `json:"contentUrl"`
	Name        string `json:"name"`
}
