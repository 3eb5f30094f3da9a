package zoom

type participantsResponse struct {
	NextPageToken string        `json:"next_page_token"`
	Participants  []participant `json:"participants"`
}

type participant struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	UserEmail string `json:"user_email"`
	JoinTime  string `json:"join_time"`
	LeaveTime string `json:"leave_time"`
	Duration  int    `json:"duration"`
	Device    string `json:"device"`
}

type recordingsResponse struct {
	UUID           string          `json:"uuid"`
	StartTime      string          `json:"start_time"`
	RecordingFiles []recordingFile `json:"recording_files"`
}

type recordingFile struct {
	ID             string `json:"id"`
	RecordingType  string `json:"recording_type"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
	PlayURL        string `json:"play_url"`
	DownloadURL    string `json:"download_url"`
	Status         string `json:"status"`
	RecordingStart string `json:"recording_start"`
	RecordingEnd   string `json:"recording_end"`
}

type filesResponse struct {
	InMeetingFiles []meetingFile `json:"in_meeting_files"`
}

type meetingFile struct {
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	FileSize    int64  `json:"file_size"`
}
