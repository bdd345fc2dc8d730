package models

import "time"

// Letter represents a tracked piece of correspondence
type Letter struct {
	ID                string    `json:"id"`
	LetterNumber      string    `json:"letterNumber"`
	SenderName        string    `json:"senderName"`
	Subject           string    `json:"subject"`
	DateSent          time.Time `json:"dateSent"`
	ExpectedReplyDate time.Time `json:"expectedReplyDate"` // Calendar date at UTC midnight
	SectionNumber     string    `json:"sectionNumber"`
	Received          bool      `json:"received"`
}

// NewLetter is the input for creating a letter. Dates are ISO strings
// ("2006-01-02" or RFC 3339).
type NewLetter struct {
	LetterNumber      string `json:"letterNumber" form:"letterNumber"`
	SenderName        string `json:"senderName" form:"senderName"`
	Subject           string `json:"subject" form:"subject"`
	DateSent          string `json:"dateSent" form:"dateSent"`
	ExpectedReplyDate string `json:"expectedReplyDate" form:"expectedReplyDate"`
	SectionNumber     string `json:"sectionNumber" form:"sectionNumber"`
}
