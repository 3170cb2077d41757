package resumes

import "time"

// Resume is an uploaded resume and its extracted text. Records are immutable.
type Resume struct {
	ID             string    `db:"id"`
	FileName       string    `db:"file_name"`
	MimeType       string    `db:"mime_type"`
	SizeBytes      int64     `db:"size_bytes"`
	StorageKey     string    `db:"storage_key"`
	Text           string    `db:"text_content"`
	ContentHash    string    `db:"content_hash"`
	CharacterCount int       `db:"character_count"`
	WordCount      int       `db:"word_count"`
	UploadedAt     time.Time `db:"uploaded_at"`
}

// Stats summarizes stored resumes.
type Stats struct {
	Total            int     `db:"total" json:"totalResumes"`
	AverageWordCount float64 `db:"average_word_count" json:"averageWordCount"`
}
