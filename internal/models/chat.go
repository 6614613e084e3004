package models

type ChatMessage struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        *Role  `json:"role"`
	ProfileSlug string `json:"profileSlug"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
}
