package domain

import "time"

// File is the metadata record for a proof document stored in S3.
type File struct {
	FileID           string    `json:"id" dynamodbav:"file_id"`
	Object           string    `json:"-" dynamodbav:"object"` // S3 key
	Name             string    `json:"name" dynamodbav:"name"`
	Type             string    `json:"type" dynamodbav:"type"`
	Size             int64     `json:"size" dynamodbav:"size"`
	Hash             string    `json:"hash" dynamodbav:"hash"`
	URL              string    `json:"url" dynamodbav:"url"`
	UploadedByUserID string    `json:"uploaded_by" dynamodbav:"uploaded_by_user_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}
