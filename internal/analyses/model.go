package analyses

import (
	"sort"
	"time"
)

// Type is the kind of assessment a record holds.
type Type string

const (
	TypeSkin Type = "skin"
	TypeHair Type = "hair"
)

const (
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Collection is the Firestore collection records live in.
const Collection = "skinAnalyses"

// Analysis is one stored skin or hair assessment.
type Analysis struct {
	ID           string      `firestore:"-" json:"id"`
	UserID       string      `firestore:"userId" json:"userId"`
	AnalysisType Type        `firestore:"analysisType" json:"analysisType"`
	UserDetails  UserDetails `firestore:"userDetails" json:"userDetails"`
	ImageData    ImageData   `firestore:"imageData" json:"imageData"`
	AIAnalysis   AIAnalysis  `firestore:"aiAnalysis" json:"aiAnalysis"`
	Metadata     Metadata    `firestore:"metadata" json:"metadata"`
	Feedback     string      `firestore:"feedback,omitempty" json:"feedback,omitempty"`
}

// UserDetails holds what the user told us about themselves.
type UserDetails struct {
	Age      int    `firestore:"age" json:"age"`
	Gender   string `firestore:"gender" json:"gender"`
	SkinType string `firestore:"skinType,omitempty" json:"skinType,omitempty"`
	HairType string `firestore:"hairType,omitempty" json:"hairType,omitempty"`
}

// ImageData points at the hosted photo.
type ImageData struct {
	OriginalFileName   string `firestore:"originalFileName" json:"originalFileName"`
	CloudinaryURL      string `firestore:"cloudinaryUrl" json:"cloudinaryUrl"`
	CloudinaryPublicID string `firestore:"cloudinaryPublicId" json:"cloudinaryPublicId"`
}

// AIAnalysis is the model exchange.
type AIAnalysis struct {
	Prompt       string `firestore:"prompt" json:"prompt"`
	Response     string `firestore:"response" json:"response"`
	AnalysisDate string `firestore:"analysisDate" json:"analysisDate"`
	ModelUsed    string `firestore:"modelUsed" json:"modelUsed"`
}

// Metadata carries RFC 3339 timestamps and the record status.
type Metadata struct {
	CreatedAt string `firestore:"createdAt" json:"createdAt"`
	UpdatedAt string `firestore:"updatedAt" json:"updatedAt"`
	Status    string `firestore:"status" json:"status"`
}

// CreatedTime parses metadata.createdAt. Missing or malformed values give the zero time.
func (a Analysis) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, a.Metadata.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Status    *string
	Feedback  *string
	Response  *string
	UpdatedAt string
}

// Apply merges p into a.
func (p Patch) Apply(a Analysis) Analysis {
	if p.Status != nil {
		a.Metadata.Status = *p.Status
	}
	if p.Feedback != nil {
		a.Feedback = *p.Feedback
	}
	if p.Response != nil {
		a.AIAnalysis.Response = *p.Response
	}
	a.Metadata.UpdatedAt = p.UpdatedAt
	return a
}

// SortNewestFirst orders records by createdAt descending.
func SortNewestFirst(list []Analysis) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedTime().After(list[j].CreatedTime())
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
